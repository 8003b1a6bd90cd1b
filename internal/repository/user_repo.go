package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-finance-tracker/internal/model"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, password_hash, login_attempts, locked_until,
	        last_login_at, last_login_ip, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.LoginAttempts, &u.LockedUntil,
		&u.LastLoginAt, &u.LastLoginIP, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

// Create inserts the user and returns the generated id. A duplicate
// username surfaces as model.ErrUniqueViolation.
func (r *UserRepository) Create(ctx context.Context, username string, passwordHash string) (int64, error) {
	var id int64
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $3) RETURNING id`,
		username, passwordHash, now).Scan(&id)
	if err != nil {
		return 0, normalize("create user", err)
	}
	return id, nil
}

// IncrementFailedAttempts bumps the counter with a relative update and
// returns the new value. Concurrent failures may still interleave; a
// slightly delayed lock is acceptable, a bypassed one is not.
func (r *UserRepository) IncrementFailedAttempts(ctx context.Context, userID int64) (int, error) {
	var attempts int
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET login_attempts = login_attempts + 1, updated_at = $2
		 WHERE id = $1 RETURNING login_attempts`,
		userID, time.Now().UTC()).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("increment failed attempts: %w", err)
	}
	return attempts, nil
}

func (r *UserRepository) LockAccount(ctx context.Context, userID int64, until time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET locked_until = $2, updated_at = $3 WHERE id = $1`,
		userID, until, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	return nil
}

// ClearLockout resets the failure counter and lifts any lock without
// touching the last-login audit fields. Used by the lazy-expiry path.
func (r *UserRepository) ClearLockout(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET login_attempts = 0, locked_until = NULL, updated_at = $2
		 WHERE id = $1`,
		userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

// RecordLoginSuccess resets the lockout state and stamps the audit
// fields in a single statement.
func (r *UserRepository) RecordLoginSuccess(ctx context.Context, userID int64, ip string) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET login_attempts = 0, locked_until = NULL,
		        last_login_at = $2, last_login_ip = $3, updated_at = $2
		 WHERE id = $1`,
		userID, now, ip)
	if err != nil {
		return fmt.Errorf("record login success: %w", err)
	}
	return nil
}
