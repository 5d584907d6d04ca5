package store

import (
	"fmt"
	"sort"
	"strings"

	"finbook/internal/core"
	"finbook/internal/log"
)

// SummaryLedger owns the derived month-key → {income, expense, net}
// mapping. It is updated incrementally on each recorded transaction and
// can always be rebuilt from the transaction store, which is the
// authoritative path when incremental updates were missed.
type SummaryLedger struct {
	path   string
	logger *log.Logger
	months map[string]core.MonthSummary
}

// NewSummaryLedger creates the backing file when absent and loads it.
// A load failure is recoverable: the ledger starts empty and the error
// is returned for reporting.
func NewSummaryLedger(path string, logger *log.Logger) (*SummaryLedger, error) {
	s := &SummaryLedger{
		path:   path,
		logger: logger.WithComponent(log.ComponentSummary),
		months: map[string]core.MonthSummary{},
	}
	if err := ensureFile(path, s.months); err != nil {
		return s, err
	}
	if err := s.load(); err != nil {
		s.months = map[string]core.MonthSummary{}
		s.logger.Warn("Failed to load monthly summary, starting empty",
			log.FieldFile, path, log.FieldError, err)
		return s, err
	}
	return s, nil
}

func (s *SummaryLedger) load() error {
	loaded := map[string]core.MonthSummary{}
	if err := readJSON(s.path, &loaded); err != nil {
		return err
	}
	s.months = loaded
	return nil
}

func (s *SummaryLedger) save() error {
	return writeJSON(s.path, s.months)
}

// Update folds the transaction into its month bucket and rewrites the
// file. The month-key comes from the transaction date; see
// core.MonthKeyFromDate for the parse fallback.
func (s *SummaryLedger) Update(tx core.Transaction) error {
	month := tx.MonthKey()
	s.months[month] = s.months[month].Accumulate(tx)
	if err := s.save(); err != nil {
		return fmt.Errorf("save monthly summary: %w", err)
	}
	s.logger.Debug("Monthly summary updated",
		log.FieldMonth, month,
		log.FieldType, tx.Type,
		log.FieldAmount, tx.Amount)
	return nil
}

// Get returns the triple for the month, or the zero triple when the
// month has no data. It never fails.
func (s *SummaryLedger) Get(month string) core.MonthSummary {
	return s.months[month]
}

// Months returns the month-keys with data, sorted ascending. For the
// YYYY-MM encoding that is also chronological order.
func (s *SummaryLedger) Months() []string {
	out := make([]string, 0, len(s.months))
	for m := range s.months {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// YearlySummary totals income and expense across every month of the year.
func (s *SummaryLedger) YearlySummary(year string) core.MonthSummary {
	var y core.MonthSummary
	for month, data := range s.months {
		if strings.HasPrefix(month, year) {
			y.Income += data.Income
			y.Expense += data.Expense
		}
	}
	y.Net = y.Income - y.Expense
	return y
}

// DeleteMonth removes the month's entry and persists. Removing an absent
// month is a no-op success.
func (s *SummaryLedger) DeleteMonth(month string) error {
	if _, ok := s.months[month]; !ok {
		return nil
	}
	delete(s.months, month)
	if err := s.save(); err != nil {
		return fmt.Errorf("save monthly summary: %w", err)
	}
	s.logger.Debug("Month summary deleted", log.FieldMonth, month)
	return nil
}

// Rebuild discards the mapping and recomputes it from the given
// transactions in order, persisting once at the end. This reconciles any
// drift left by missed incremental updates.
func (s *SummaryLedger) Rebuild(transactions []core.Transaction) error {
	months := map[string]core.MonthSummary{}
	for _, tx := range transactions {
		month := tx.MonthKey()
		months[month] = months[month].Accumulate(tx)
	}
	s.months = months
	if err := s.save(); err != nil {
		return fmt.Errorf("save monthly summary: %w", err)
	}
	s.logger.Info("Monthly summary rebuilt",
		log.FieldCount, len(transactions),
		"months", len(months))
	return nil
}
