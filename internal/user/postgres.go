package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/loginsvc/internal/pg"
)

// PostgresStorage implements Storage over a pgx connection pool.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a Postgres-backed credential store.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const userColumns = `id, user_id, name, email, password_hash, created_at`

func (s *PostgresStorage) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.queryOne(ctx, query, email)
}

func (s *PostgresStorage) FindByUserID(ctx context.Context, userID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return s.queryOne(ctx, query, userID)
}

// UpdateName writes the new name and returns the committed row in one round
// trip, so the caller observes exactly what was persisted.
func (s *PostgresStorage) UpdateName(ctx context.Context, userID, name string) (*User, error) {
	query := `UPDATE users SET name = $2 WHERE user_id = $1 RETURNING ` + userColumns
	return s.queryOne(ctx, query, userID, name)
}

func (s *PostgresStorage) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	query := `
		INSERT INTO users (id, user_id, name, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		u.ID, u.UserID, u.Name, u.Email, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *PostgresStorage) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Compile-time interface assertion
var _ Storage = (*PostgresStorage)(nil)
