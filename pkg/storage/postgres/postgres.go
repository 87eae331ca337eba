// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling and maps unique and foreign key
// violations onto the storage sentinel errors.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/messagely/messagely/pkg/api"
	"github.com/messagely/messagely/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateUser inserts a new credential record.
func (s *Store) CreateUser(ctx context.Context, u *api.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (username, password_hash, first_name, last_name, phone, join_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.JoinAt, u.LastLoginAt)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given username, including the
// password hash.
func (s *Store) GetUser(ctx context.Context, username string) (*api.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT username, password_hash, first_name, last_name, phone, join_at, last_login_at
		FROM users WHERE username = $1
	`, username)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]*api.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT username, password_hash, first_name, last_name, phone, join_at, last_login_at
		FROM users ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var out []*api.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateLastLogin sets the user's last-login timestamp.
func (s *Store) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login_at = $2 WHERE username = $1`, username, at)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateMessage inserts a new message. IDs come from a BIGSERIAL column,
// so they increase monotonically. A foreign key violation on either
// username maps to storage.ErrNotFound.
func (s *Store) CreateMessage(ctx context.Context, m *api.Message) (*api.Message, error) {
	cp := *m
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, m.FromUsername, m.ToUsername, m.Body, m.SentAt).Scan(&cp.ID)

	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("inserting message: %w", err)
	}
	return &cp, nil
}

// GetMessage returns the message with the given ID.
func (s *Store) GetMessage(ctx context.Context, id int64) (*api.Message, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, from_username, to_username, body, sent_at, read_at
		FROM messages WHERE id = $1
	`, id)

	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying message: %w", err)
	}
	return m, nil
}

// MessagesTo returns all messages addressed to the username, ordered by ID.
func (s *Store) MessagesTo(ctx context.Context, username string) ([]*api.Message, error) {
	return s.queryMessages(ctx, `
		SELECT id, from_username, to_username, body, sent_at, read_at
		FROM messages WHERE to_username = $1 ORDER BY id
	`, username)
}

// MessagesFrom returns all messages sent by the username, ordered by ID.
func (s *Store) MessagesFrom(ctx context.Context, username string) ([]*api.Message, error) {
	return s.queryMessages(ctx, `
		SELECT id, from_username, to_username, body, sent_at, read_at
		FROM messages WHERE from_username = $1 ORDER BY id
	`, username)
}

// MarkRead sets read_at once. The WHERE clause makes the first write win;
// concurrent and repeated calls observe the original timestamp.
func (s *Store) MarkRead(ctx context.Context, id int64, at time.Time) (*api.Message, error) {
	_, err := s.pool.Exec(ctx,
		`UPDATE messages SET read_at = $2 WHERE id = $1 AND read_at IS NULL`, id, at)
	if err != nil {
		return nil, fmt.Errorf("marking message read: %w", err)
	}
	return s.GetMessage(ctx, id)
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) queryMessages(ctx context.Context, sql string, args ...any) ([]*api.Message, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var out []*api.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (*api.User, error) {
	var u api.User
	err := row.Scan(&u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.JoinAt, &u.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanMessage(row pgx.Row) (*api.Message, error) {
	var m api.Message
	err := row.Scan(&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// isUniqueViolation checks for a PostgreSQL unique violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation checks for a PostgreSQL foreign key violation (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
