// Package messages implements message creation, retrieval, listings,
// and read receipts over a storage.MessageStore.
package messages

import (
	"context"
	"log/slog"
	"time"

	"github.com/messagely/messagely/pkg/api"
	"github.com/messagely/messagely/pkg/observability"
	"github.com/messagely/messagely/pkg/storage"
)

// Service handles message operations. Authorization happens in the
// transport layer before any of these methods run; the service trusts
// the sender username it is handed.
type Service struct {
	messages   storage.MessageStore
	users      storage.UserStore
	validation api.ValidationConfig
	now        func() time.Time
}

// NewService creates a message service backed by the given stores.
func NewService(messages storage.MessageStore, users storage.UserStore) *Service {
	return &Service{
		messages:   messages,
		users:      users,
		validation: api.DefaultValidationConfig(),
		now:        time.Now,
	}
}

// Create validates the request, checks that the recipient exists, and
// stores the message with the current send time. Returns
// storage.ErrNotFound when the recipient is unknown.
func (s *Service) Create(ctx context.Context, fromUsername string, req *api.CreateMessageRequest) (*api.Message, error) {
	if err := api.ValidateCreateMessage(req, s.validation); err != nil {
		return nil, err
	}

	// Resolve the recipient up front so an unknown username surfaces as
	// not-found rather than a storage constraint failure.
	if _, err := s.users.GetUser(ctx, req.ToUsername); err != nil {
		return nil, err
	}

	created, err := s.messages.CreateMessage(ctx, &api.Message{
		FromUsername: fromUsername,
		ToUsername:   req.ToUsername,
		Body:         req.Body,
		SentAt:       s.now(),
	})
	if err != nil {
		return nil, err
	}

	observability.MessagesCreatedTotal.Inc()
	slog.Info("message created",
		"id", created.ID,
		"from", created.FromUsername,
		"to", created.ToUsername,
	)
	return created, nil
}

// Get returns a single message. Returns storage.ErrNotFound when the ID
// is unknown.
func (s *Service) Get(ctx context.Context, id int64) (*api.Message, error) {
	return s.messages.GetMessage(ctx, id)
}

// MarkRead stamps the message read at the current time. Marking an
// already-read message keeps the original timestamp.
func (s *Service) MarkRead(ctx context.Context, id int64) (*api.Message, error) {
	return s.messages.MarkRead(ctx, id, s.now())
}

// SentTo returns the messages addressed to a user, ordered by ID.
func (s *Service) SentTo(ctx context.Context, username string) ([]*api.Message, error) {
	return s.messages.MessagesTo(ctx, username)
}

// SentBy returns the messages sent by a user, ordered by ID.
func (s *Service) SentBy(ctx context.Context, username string) ([]*api.Message, error) {
	return s.messages.MessagesFrom(ctx, username)
}
