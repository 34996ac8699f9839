package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXPool is the subset of pgxpool.Pool used here; it matches pgxmock.
type PGXPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserRepository stores users in the relational database.
type PostgresUserRepository struct {
	pool PGXPool
}

// NewPostgresUserRepository initializes a repo backed by pgxpool.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	if pool == nil {
		panic("auth: pgx pool required")
	}
	return &PostgresUserRepository{pool: pool}
}

// NewPostgresUserRepositoryWithPool accepts any PGXPool, used by tests.
func NewPostgresUserRepositoryWithPool(pool PGXPool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create inserts a new user row. Duplicate emails surface as ErrEmailTaken.
func (r *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, email, name, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID, NormalizeEmail(user.Email), user.Name, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("auth: insert user: %w", err)
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, role, created_at, last_logged_in
		FROM users
		WHERE email = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, NormalizeEmail(email)).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Role,
		&user.CreatedAt, &user.LastLoggedIn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: select user: %w", err)
	}
	return &user, nil
}

// TouchLastLogin records the last login instant.
func (r *PostgresUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_logged_in = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("auth: touch last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
