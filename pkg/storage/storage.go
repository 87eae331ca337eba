package storage

import (
	"context"
	"time"

	"github.com/messagely/messagely/pkg/api"
)

// UserStore persists credential records. Username is the unique key.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrDuplicate if the username
	// is already taken.
	CreateUser(ctx context.Context, u *api.User) error

	// GetUser returns the user with the given username, including the
	// password hash. Returns ErrNotFound if no such user exists.
	GetUser(ctx context.Context, username string) (*api.User, error)

	// ListUsers returns all users ordered by username.
	ListUsers(ctx context.Context) ([]*api.User, error)

	// UpdateLastLogin sets the user's last-login timestamp. Returns
	// ErrNotFound if no such user exists.
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
}

// MessageStore persists message records. IDs are assigned by the store
// and increase monotonically.
type MessageStore interface {
	// CreateMessage inserts a new message and returns it with its
	// assigned ID. The caller sets SentAt; ReadAt starts nil.
	CreateMessage(ctx context.Context, m *api.Message) (*api.Message, error)

	// GetMessage returns the message with the given ID. Returns
	// ErrNotFound if no such message exists.
	GetMessage(ctx context.Context, id int64) (*api.Message, error)

	// MessagesTo returns all messages addressed to the given username,
	// ordered by ID.
	MessagesTo(ctx context.Context, username string) ([]*api.Message, error)

	// MessagesFrom returns all messages sent by the given username,
	// ordered by ID.
	MessagesFrom(ctx context.Context, username string) ([]*api.Message, error)

	// MarkRead sets the message's read timestamp if it is not already
	// set, atomically, and returns the resulting message. A second call
	// leaves the original timestamp untouched. Returns ErrNotFound if no
	// such message exists.
	MarkRead(ctx context.Context, id int64, at time.Time) (*api.Message, error)
}

// Store combines the user and message stores. Both concrete
// implementations satisfy it from a single value.
type Store interface {
	UserStore
	MessageStore

	// HealthCheck reports whether the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
