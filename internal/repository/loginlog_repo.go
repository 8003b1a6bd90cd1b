package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-finance-tracker/internal/model"
)

// LoginLogRepository is the append-only audit trail of login and
// registration attempts. There is no update or delete path.
type LoginLogRepository struct {
	pool *pgxpool.Pool
}

func NewLoginLogRepository(pool *pgxpool.Pool) *LoginLogRepository {
	return &LoginLogRepository{pool: pool}
}

func (r *LoginLogRepository) Append(ctx context.Context, entry model.LoginLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO login_logs
		 (user_id, username, client_ip, user_agent, success, failure_reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.UserID, entry.Username, entry.ClientIP, entry.UserAgent,
		entry.Success, entry.FailureReason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append login log: %w", err)
	}
	return nil
}
