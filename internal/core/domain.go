package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	// DateLayout is the canonical second-precision encoding used in the
	// transactions file.
	DateLayout = "2006-01-02 15:04:05"

	// MonthLayout is the month-key encoding used by the summary ledger.
	// Lexicographic order equals chronological order.
	MonthLayout = "2006-01"
)

type (
	TransactionType string

	// Transaction is a single recorded income or expense event. It is
	// created once, appended to the transaction store and never mutated
	// or deleted afterwards.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Type        TransactionType `json:"transaction_type"`
		Date        string          `json:"date"`
	}

	// Balance aggregates all transactions regardless of month.
	Balance struct {
		TotalIncome  float64
		TotalExpense float64
		Balance      float64
	}

	// MonthSummary is the {income, expense, net} triple kept per month-key.
	MonthSummary struct {
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
		Net     float64 `json:"net"`
	}

	// Categories holds the distinct category names seen per transaction
	// type. Order is not meaningful.
	Categories struct {
		Income  []string
		Expense []string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrNegativeLimit    = errors.New("monthly limit cannot be negative")
)

// NewTransaction builds a transaction dated now. The ID is the timestamp
// with microsecond precision; two transactions created within the same
// microsecond would collide, which is accepted for a single-user ledger.
func NewTransaction(amount float64, category, description string, typ TransactionType, now time.Time) Transaction {
	return Transaction{
		ID:          now.Format("20060102150405") + fmt.Sprintf("%06d", now.Nanosecond()/1000),
		Amount:      amount,
		Category:    category,
		Description: description,
		Type:        typ,
		Date:        now.Format(DateLayout),
	}
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer
func (t TransactionType) String() string {
	return string(t)
}

func (t Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

// MonthKey derives the YYYY-MM bucket for the summary ledger from the
// transaction date. When the date does not match the canonical layout the
// first seven characters of the raw string are used as a best-effort key.
// That fallback is deliberate degraded behavior, not an error.
func (t Transaction) MonthKey() string {
	return MonthKeyFromDate(t.Date)
}

// MonthKeyFromDate derives a month-key from a raw date string. See
// Transaction.MonthKey.
func MonthKeyFromDate(date string) string {
	if d, err := time.Parse(DateLayout, date); err == nil {
		return d.Format(MonthLayout)
	}
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// Accumulate folds a transaction amount into the triple and recomputes
// the net. Unknown types are ignored.
func (s MonthSummary) Accumulate(t Transaction) MonthSummary {
	switch t.Type {
	case Income:
		s.Income += t.Amount
	case Expense:
		s.Expense += t.Amount
	}
	s.Net = s.Income - s.Expense
	return s
}
