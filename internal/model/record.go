package model

import "time"

const (
	RecordTypeExpense   = "expense"
	RecordTypeDebtLend  = "debt_lend"
	RecordTypeDebtFavor = "debt_favor"
)

// ValidRecordType reports whether t is one of the accepted record types.
func ValidRecordType(t string) bool {
	switch t {
	case RecordTypeExpense, RecordTypeDebtLend, RecordTypeDebtFavor:
		return true
	}
	return false
}

type Record struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	Type       string    `json:"type"`
	Amount     float64   `json:"amount"`
	Category   string    `json:"category"`
	Note       string    `json:"note"`
	RecordDate string    `json:"record_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordFilter narrows record listings and summaries. Dates are
// inclusive YYYY-MM-DD bounds; empty fields are ignored.
type RecordFilter struct {
	UserID    int64
	Type      string
	StartDate string
	EndDate   string
}

// Summary aggregates record amounts by type over a date range.
// Debt is the sum of DebtLend and DebtFavor.
type Summary struct {
	Expense   float64 `json:"expense"`
	DebtLend  float64 `json:"debt_lend"`
	DebtFavor float64 `json:"debt_favor"`
	Debt      float64 `json:"debt"`
}
