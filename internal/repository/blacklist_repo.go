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

// BlacklistRepository stores revoked-token hashes until the tokens
// would have expired on their own. The hash is the primary key, so a
// duplicate revocation of the same token upserts rather than piling up
// rows.
type BlacklistRepository struct {
	pool *pgxpool.Pool
}

func NewBlacklistRepository(pool *pgxpool.Pool) *BlacklistRepository {
	return &BlacklistRepository{pool: pool}
}

func (r *BlacklistRepository) Upsert(ctx context.Context, row model.RevokedToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO revoked_tokens (token_hash, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (token_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		row.TokenHash, row.UserID, row.ExpiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert revoked token: %w", err)
	}
	return nil
}

// Exists reports whether a non-expired revocation row exists for the
// hash. Expired rows are ignored even before the sweep removes them.
func (r *BlacklistRepository) Exists(ctx context.Context, tokenHash string) (bool, error) {
	var found int
	err := r.pool.QueryRow(ctx,
		`SELECT 1 FROM revoked_tokens WHERE token_hash = $1 AND expires_at > now()`,
		tokenHash).Scan(&found)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return true, nil
}

func (r *BlacklistRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired revoked tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
