package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/messagely/pkg/api"
	"github.com/messagely/messagely/pkg/storage"
	"github.com/messagely/messagely/pkg/storage/memory"
)

func validRegister() *api.RegisterRequest {
	return &api.RegisterRequest{
		Username:  "alice",
		Password:  "secret123",
		FirstName: "Alice",
		LastName:  "Anderson",
		Phone:     "+14155550001",
	}
}

func newTestService(store storage.UserStore) *Service {
	s := NewService(store)
	s.cost = bcrypt.MinCost // keep hashing fast in tests
	return s
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	store := memory.New()
	svc := newTestService(store)

	user, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "secret123")
	assert.False(t, user.JoinAt.IsZero())

	// The stored hash must verify against the original password.
	stored, err := store.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(memory.New())

	req := validRegister()
	req.Password = ""

	_, err := svc.Register(context.Background(), req)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrorTypeInvalidRequest, apiErr.Type)
	assert.Equal(t, "password", apiErr.Param)
}

// The default username length limit must be enforced on the register
// path, not just by the validator in isolation.
func TestRegisterUsernameTooLong(t *testing.T) {
	store := memory.New()
	svc := newTestService(store)

	req := validRegister()
	req.Username = strings.Repeat("a", svc.validation.MaxUsernameLength+1)

	_, err := svc.Register(context.Background(), req)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrorTypeInvalidRequest, apiErr.Type)
	assert.Equal(t, "username", apiErr.Param)

	// Nothing was created.
	users, err := store.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(memory.New())

	_, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegister())
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestAuthenticateSuccess(t *testing.T) {
	store := memory.New()
	svc := newTestService(store)

	registered, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	svc.now = func() time.Time { return registered.JoinAt.Add(time.Hour) }

	id, err := svc.Authenticate(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)

	// Login stamps last_login_at.
	stored, err := store.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, stored.LastLoginAt.After(registered.JoinAt))
}

// Unknown username and wrong password produce the same error, so a
// caller cannot tell which part of the credential was wrong.
func TestAuthenticateUniformFailure(t *testing.T) {
	svc := newTestService(memory.New())

	_, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, unknownErr := svc.Authenticate(context.Background(), "ghost", "secret123")
	_, wrongErr := svc.Authenticate(context.Background(), "alice", "wrong-password")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAuthenticateFailureDoesNotStampLogin(t *testing.T) {
	store := memory.New()
	svc := newTestService(store)

	registered, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	svc.now = func() time.Time { return registered.JoinAt.Add(time.Hour) }

	_, err = svc.Authenticate(context.Background(), "alice", "wrong-password")
	require.Error(t, err)

	stored, err := store.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, registered.LastLoginAt, stored.LastLoginAt)
}

func TestGetUnknownUser(t *testing.T) {
	svc := newTestService(memory.New())

	_, err := svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListOrdered(t *testing.T) {
	svc := newTestService(memory.New())

	for _, username := range []string{"carol", "alice", "bob"} {
		req := validRegister()
		req.Username = username
		_, err := svc.Register(context.Background(), req)
		require.NoError(t, err)
	}

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)

	var got []string
	for _, u := range users {
		got = append(got, u.Username)
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, got)
}

func TestAuthenticateStoreError(t *testing.T) {
	svc := newTestService(failingUserStore{})

	_, err := svc.Authenticate(context.Background(), "alice", "secret123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

type failingUserStore struct{}

var errStore = errors.New("store unavailable")

func (failingUserStore) CreateUser(context.Context, *api.User) error { return errStore }
func (failingUserStore) GetUser(context.Context, string) (*api.User, error) {
	return nil, errStore
}
func (failingUserStore) ListUsers(context.Context) ([]*api.User, error) { return nil, errStore }
func (failingUserStore) UpdateLastLogin(context.Context, string, time.Time) error {
	return errStore
}
