package auth

import (
	"log/slog"
	"net/http"

	"github.com/messagely/messagely/pkg/observability"
)

// Middleware creates HTTP middleware from an AuthChain. It runs the
// chain and, on a Yes vote, attaches the identity to the request context.
// A No vote (credentials present but invalid) is logged and the request
// continues anonymously; the guards downstream decide whether anonymity
// is acceptable. This keeps unauthenticated routes working without a
// bypass list.
func Middleware(chain *AuthChain) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := chain.Authenticate(r.Context(), r)

			switch result.Decision {
			case Yes:
				if result.Identity == nil || result.Identity.Username == "" {
					slog.Error("authenticator returned identity with empty username")
					observability.AuthAttemptsTotal.WithLabelValues("rejected").Inc()
					next.ServeHTTP(w, r)
					return
				}
				slog.Debug("authentication succeeded",
					"username", result.Identity.Username,
					"path", r.URL.Path,
				)
				observability.AuthAttemptsTotal.WithLabelValues("accepted").Inc()
				ctx := SetIdentity(r.Context(), result.Identity)
				next.ServeHTTP(w, r.WithContext(ctx))

			case No:
				slog.Warn("token rejected",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				observability.AuthAttemptsTotal.WithLabelValues("rejected").Inc()
				next.ServeHTTP(w, r)

			default:
				observability.AuthAttemptsTotal.WithLabelValues("anonymous").Inc()
				next.ServeHTTP(w, r)
			}
		})
	}
}
