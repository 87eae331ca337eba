// Package memory provides an in-memory implementation of storage.Store
// for testing and lightweight deployments. Data is lost when the process
// restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/messagely/messagely/pkg/api"
	"github.com/messagely/messagely/pkg/storage"
)

// Store is an in-memory storage.Store guarded by a single RWMutex.
// Message IDs are assigned from a monotonically increasing counter.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*api.User
	messages map[int64]*api.Message
	nextID   int64
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:    make(map[string]*api.User),
		messages: make(map[int64]*api.Message),
		nextID:   1,
	}
}

// CreateUser inserts a new user. Returns storage.ErrDuplicate if the
// username is already taken.
func (s *Store) CreateUser(_ context.Context, u *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.Username]; exists {
		return storage.ErrDuplicate
	}

	cp := *u
	s.users[u.Username] = &cp
	return nil
}

// GetUser returns a copy of the user with the given username.
func (s *Store) GetUser(_ context.Context, username string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := *u
	return &cp, nil
}

// ListUsers returns copies of all users ordered by username.
func (s *Store) ListUsers(_ context.Context) ([]*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// UpdateLastLogin sets the user's last-login timestamp.
func (s *Store) UpdateLastLogin(_ context.Context, username string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return storage.ErrNotFound
	}
	u.LastLoginAt = at
	return nil
}

// CreateMessage inserts a new message and assigns the next ID.
func (s *Store) CreateMessage(_ context.Context, m *api.Message) (*api.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *m
	cp.ID = s.nextID
	s.nextID++
	s.messages[cp.ID] = &cp

	out := cp
	return &out, nil
}

// GetMessage returns a copy of the message with the given ID.
func (s *Store) GetMessage(_ context.Context, id int64) (*api.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyMessage(m), nil
}

// MessagesTo returns all messages addressed to the username, ordered by ID.
func (s *Store) MessagesTo(_ context.Context, username string) ([]*api.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(m *api.Message) bool { return m.ToUsername == username }), nil
}

// MessagesFrom returns all messages sent by the username, ordered by ID.
func (s *Store) MessagesFrom(_ context.Context, username string) ([]*api.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(m *api.Message) bool { return m.FromUsername == username }), nil
}

// MarkRead sets the read timestamp once. Later calls return the message
// unchanged, preserving the original timestamp.
func (s *Store) MarkRead(_ context.Context, id int64, at time.Time) (*api.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if m.ReadAt == nil {
		t := at
		m.ReadAt = &t
	}
	return copyMessage(m), nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// collect returns copies of all messages matching the predicate, ordered
// by ID. Must be called with s.mu held.
func (s *Store) collect(match func(*api.Message) bool) []*api.Message {
	var out []*api.Message
	for _, m := range s.messages {
		if match(m) {
			out = append(out, copyMessage(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// copyMessage returns a deep copy so callers cannot mutate stored state.
func copyMessage(m *api.Message) *api.Message {
	cp := *m
	if m.ReadAt != nil {
		t := *m.ReadAt
		cp.ReadAt = &t
	}
	return &cp
}
