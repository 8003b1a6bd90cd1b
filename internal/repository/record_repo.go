package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-finance-tracker/internal/model"
)

type RecordRepository struct {
	pool *pgxpool.Pool
}

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// Create inserts a record and returns the generated id. A missing user
// row surfaces as model.ErrForeignKeyViolation.
func (r *RecordRepository) Create(ctx context.Context, rec model.Record) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO records (user_id, type, amount, category, note, record_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		rec.UserID, rec.Type, rec.Amount, rec.Category, rec.Note, rec.RecordDate,
		time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, normalize("create record", err)
	}
	return id, nil
}

// buildFilter turns the filter into a WHERE clause and its args.
// UserID is always present; records are strictly per-user.
func buildFilter(f model.RecordFilter) (string, []any) {
	where := []string{"user_id = $1"}
	args := []any{f.UserID}

	if f.StartDate != "" {
		args = append(args, f.StartDate)
		where = append(where, fmt.Sprintf("record_date >= $%d", len(args)))
	}
	if f.EndDate != "" {
		args = append(args, f.EndDate)
		where = append(where, fmt.Sprintf("record_date <= $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	return "WHERE " + strings.Join(where, " AND "), args
}

func (r *RecordRepository) List(ctx context.Context, f model.RecordFilter, limit int, offset int) ([]model.Record, int, error) {
	whereClause, args := buildFilter(f)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM records %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	dataQuery := fmt.Sprintf(
		`SELECT id, type, amount, category, note, to_char(record_date, 'YYYY-MM-DD'), created_at
		 FROM records %s
		 ORDER BY record_date DESC, id DESC
		 LIMIT $%d OFFSET $%d`, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Amount, &rec.Category,
			&rec.Note, &rec.RecordDate, &rec.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan record: %w", err)
		}
		rec.UserID = f.UserID
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

// Delete removes a record owned by userID. Zero rows affected means
// the record does not exist or belongs to someone else.
func (r *RecordRepository) Delete(ctx context.Context, id int64, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRecordNotFound
	}
	return nil
}

// Categories returns the distinct non-blank categories of the user's
// records, sorted ascending.
func (r *RecordRepository) Categories(ctx context.Context, userID int64, recordType string) ([]string, error) {
	query := `SELECT DISTINCT category FROM records WHERE user_id = $1`
	args := []any{userID}
	if recordType != "" {
		query += ` AND type = $2`
		args = append(args, recordType)
	}
	query += ` ORDER BY category ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if trimmed := strings.TrimSpace(category); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}

	return categories, rows.Err()
}

// Summarize sums amounts grouped by record type over the filter range.
func (r *RecordRepository) Summarize(ctx context.Context, f model.RecordFilter) (model.Summary, error) {
	whereClause, args := buildFilter(f)

	query := fmt.Sprintf(
		`SELECT type, COALESCE(SUM(amount), 0) FROM records %s GROUP BY type`, whereClause)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return model.Summary{}, fmt.Errorf("summarize records: %w", err)
	}
	defer rows.Close()

	var summary model.Summary
	for rows.Next() {
		var recordType string
		var total float64
		if err := rows.Scan(&recordType, &total); err != nil {
			return model.Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		switch recordType {
		case model.RecordTypeExpense:
			summary.Expense = total
		case model.RecordTypeDebtLend:
			summary.DebtLend = total
		case model.RecordTypeDebtFavor:
			summary.DebtFavor = total
		}
	}
	summary.Debt = summary.DebtLend + summary.DebtFavor

	return summary, rows.Err()
}
