package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go-finance-tracker/internal/model"
	"go-finance-tracker/pkg/apierror"
)

const (
	defaultCategory = "其他"
	maxCategoryLen  = 50
	maxNoteLen      = 255

	defaultPageSize = 20
	maxPageSize     = 100
)

type RecordStore interface {
	Create(ctx context.Context, rec model.Record) (int64, error)
	List(ctx context.Context, f model.RecordFilter, limit int, offset int) ([]model.Record, int, error)
	Delete(ctx context.Context, id int64, userID int64) error
	Categories(ctx context.Context, userID int64, recordType string) ([]string, error)
	Summarize(ctx context.Context, f model.RecordFilter) (model.Summary, error)
}

type RecordService struct {
	records RecordStore
}

func NewRecordService(records RecordStore) *RecordService {
	return &RecordService{records: records}
}

// ListQuery is the parsed query surface of GET /api/records.
type ListQuery struct {
	Page      int
	PageSize  int
	StartDate string
	EndDate   string
	Type      string
}

func (s *RecordService) Create(ctx context.Context, userID int64, req model.CreateRecordRequest) (int64, error) {
	if !model.ValidRecordType(req.Type) {
		return 0, apierror.BadRequest("type must be expense, debt_lend or debt_favor")
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return 0, apierror.BadRequest("amount must be a positive number")
	}

	recordDate := strings.TrimSpace(req.RecordDate)
	if recordDate == "" {
		recordDate = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", recordDate); err != nil {
		return 0, apierror.BadRequest("record_date must be YYYY-MM-DD")
	}

	category := truncateRunes(strings.TrimSpace(req.Category), maxCategoryLen)
	if category == "" {
		category = defaultCategory
	}
	note := truncateRunes(strings.TrimSpace(req.Note), maxNoteLen)

	id, err := s.records.Create(ctx, model.Record{
		UserID:     userID,
		Type:       req.Type,
		Amount:     req.Amount,
		Category:   category,
		Note:       note,
		RecordDate: recordDate,
	})
	if errors.Is(err, model.ErrForeignKeyViolation) {
		// The user row vanished between token issuance and this write.
		return 0, apierror.Unauthorized("user no longer exists, please log in again")
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *RecordService) List(ctx context.Context, userID int64, q ListQuery) ([]model.Record, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	filter, err := buildRecordFilter(userID, q.StartDate, q.EndDate, q.Type)
	if err != nil {
		return nil, 0, err
	}

	return s.records.List(ctx, filter, size, (page-1)*size)
}

func (s *RecordService) Delete(ctx context.Context, userID int64, id int64) error {
	if id < 1 {
		return apierror.BadRequest("invalid record id")
	}

	err := s.records.Delete(ctx, id, userID)
	if errors.Is(err, model.ErrRecordNotFound) {
		return apierror.NotFound("record not found or not yours")
	}
	return err
}

func (s *RecordService) Categories(ctx context.Context, userID int64, recordType string) ([]string, error) {
	// An unknown type filter is ignored rather than rejected.
	if !model.ValidRecordType(recordType) {
		recordType = ""
	}
	return s.records.Categories(ctx, userID, recordType)
}

func (s *RecordService) Summarize(ctx context.Context, userID int64, startDate string, endDate string) (model.Summary, error) {
	filter, err := buildRecordFilter(userID, startDate, endDate, "")
	if err != nil {
		return model.Summary{}, err
	}
	return s.records.Summarize(ctx, filter)
}

func buildRecordFilter(userID int64, startDate string, endDate string, recordType string) (model.RecordFilter, error) {
	f := model.RecordFilter{UserID: userID}

	if startDate = strings.TrimSpace(startDate); startDate != "" {
		if _, err := time.Parse("2006-01-02", startDate); err != nil {
			return model.RecordFilter{}, apierror.BadRequest("startDate must be YYYY-MM-DD")
		}
		f.StartDate = startDate
	}
	if endDate = strings.TrimSpace(endDate); endDate != "" {
		if _, err := time.Parse("2006-01-02", endDate); err != nil {
			return model.RecordFilter{}, apierror.BadRequest("endDate must be YYYY-MM-DD")
		}
		f.EndDate = endDate
	}
	if model.ValidRecordType(recordType) {
		f.Type = recordType
	}

	return f, nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
