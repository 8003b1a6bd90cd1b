package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"go-finance-tracker/internal/model"
)

// Postgres SQLSTATE codes the service layer cares about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// normalize folds driver-specific constraint failures into the closed
// set of model errors so callers never string-match pgconn codes.
func normalize(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, model.ErrUniqueViolation)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, model.ErrForeignKeyViolation)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
