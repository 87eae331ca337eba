// Package users implements account registration, credential
// verification, and user lookups over a storage.UserStore.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/messagely/pkg/api"
	"github.com/messagely/messagely/pkg/auth"
	"github.com/messagely/messagely/pkg/observability"
	"github.com/messagely/messagely/pkg/storage"
)

// ErrInvalidCredentials is returned by Authenticate for both an unknown
// username and a wrong password. The two cases are merged so login
// responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service handles account registration and credential verification.
type Service struct {
	store      storage.UserStore
	cost       int
	validation api.ValidationConfig
	now        func() time.Time
}

// NewService creates a user service backed by the given store.
func NewService(store storage.UserStore) *Service {
	return &Service{
		store:      store,
		cost:       bcrypt.DefaultCost,
		validation: api.DefaultValidationConfig(),
		now:        time.Now,
	}
}

// Register validates the request, hashes the password, and creates the
// account. The stored record never contains the plaintext password.
// Returns storage.ErrDuplicate when the username is taken.
func (s *Service) Register(ctx context.Context, req *api.RegisterRequest) (*api.User, error) {
	if err := api.ValidateRegister(req, s.validation); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now()
	user := &api.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		JoinAt:       now,
		LastLoginAt:  now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user registered", "username", user.Username)
	return user, nil
}

// Authenticate verifies a username/password pair and stamps the login
// time on success. It returns ErrInvalidCredentials for unknown users
// and wrong passwords alike; callers must not distinguish them.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*auth.Identity, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			observability.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		observability.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := s.store.UpdateLastLogin(ctx, username, s.now()); err != nil {
		// Login succeeded; the stamp is bookkeeping.
		slog.Warn("updating last login failed", "username", username, "error", err)
	}

	observability.LoginsTotal.WithLabelValues("success").Inc()
	slog.Info("user logged in", "username", username)
	return &auth.Identity{Username: username}, nil
}

// Get returns a single user. Returns storage.ErrNotFound when the
// username is unknown.
func (s *Service) Get(ctx context.Context, username string) (*api.User, error) {
	return s.store.GetUser(ctx, username)
}

// List returns all users ordered by username.
func (s *Service) List(ctx context.Context) ([]*api.User, error) {
	return s.store.ListUsers(ctx)
}
