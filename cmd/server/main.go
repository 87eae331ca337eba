// Command server runs the messagely API.
//
// Configuration is layered: built-in defaults, then a YAML config file
// (-config flag, MESSAGELY_CONFIG env, ./config.yaml, or
// /etc/messagely/config.yaml), then MESSAGELY_* environment overrides.
// See pkg/config for the full set of options.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/messagely/messagely/pkg/auth"
	"github.com/messagely/messagely/pkg/auth/token"
	"github.com/messagely/messagely/pkg/config"
	"github.com/messagely/messagely/pkg/debug"
	"github.com/messagely/messagely/pkg/messages"
	"github.com/messagely/messagely/pkg/storage"
	"github.com/messagely/messagely/pkg/storage/memory"
	"github.com/messagely/messagely/pkg/storage/postgres"
	"github.com/messagely/messagely/pkg/transport"
	"github.com/messagely/messagely/pkg/users"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Observability.Debug, cfg.Observability.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	tokens := token.NewService([]byte(cfg.Auth.SecretKey), cfg.Auth.TokenMaxAge)
	chain := &auth.AuthChain{Authenticators: []auth.Authenticator{
		token.NewAuthenticator(tokens),
	}}

	handler := transport.NewHandler(
		users.NewService(store),
		messages.NewService(store, store),
		tokens,
	)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.HealthCheck(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	srv := transport.NewServer(mux,
		[]transport.Middleware{auth.Middleware(chain)},
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithReadTimeout(cfg.Server.ReadTimeout),
		transport.WithWriteTimeout(cfg.Server.WriteTimeout),
		transport.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	)

	slog.Info("server configured",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"token_max_age", cfg.Auth.TokenMaxAge,
	)
	return srv.ListenAndServe()
}

// openStore creates the configured storage backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		store, err := postgres.New(context.Background(), postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		slog.Info("storage ready", "type", "postgres")
		return store, nil
	default:
		slog.Info("storage ready", "type", "memory")
		return memory.New(), nil
	}
}
