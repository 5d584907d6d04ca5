package archive

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"finbook/internal/core"
	"finbook/internal/log"
)

func newTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	a, err := NewSQLiteArchive(filepath.Join(t.TempDir(), "archive.db"), logger)
	if err != nil {
		t.Fatalf("new archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func archiveTx(id string, amount float64, typ core.TransactionType, date string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Amount:      amount,
		Category:    "c",
		Description: "d",
		Type:        typ,
		Date:        date,
	}
}

func TestInsertAndCount(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	if err := a.Insert(ctx, archiveTx("1", 100, core.Income, "2024-07-01 09:00:00")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := a.Insert(ctx, archiveTx("2", 50, core.Expense, "2024-07-02 09:00:00")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := a.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

func TestInsertIsIdempotentPerID(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	tx := archiveTx("1", 100, core.Income, "2024-07-01 09:00:00")
	for i := 0; i < 3; i++ {
		if err := a.Insert(ctx, tx); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	n, err := a.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("redelivered event duplicated the row: %d", n)
	}
}

func TestMonthTotals(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	inserts := []core.Transaction{
		archiveTx("1", 1000, core.Income, "2024-07-01 09:00:00"),
		archiveTx("2", 300, core.Expense, "2024-07-05 12:30:00"),
		archiveTx("3", 200, core.Expense, "2024-08-01 12:30:00"),
	}
	for _, tx := range inserts {
		if err := a.Insert(ctx, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	july, err := a.MonthTotals(ctx, "2024-07")
	if err != nil {
		t.Fatalf("month totals: %v", err)
	}
	if july.Income != 1000 || july.Expense != 300 || july.Net != 700 {
		t.Fatalf("unexpected july totals: %+v", july)
	}

	empty, err := a.MonthTotals(ctx, "1999-01")
	if err != nil {
		t.Fatalf("month totals: %v", err)
	}
	if empty != (core.MonthSummary{}) {
		t.Fatalf("expected zero triple for empty month, got %+v", empty)
	}
}

func TestListMonthOrdersByDate(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	if err := a.Insert(ctx, archiveTx("2", 50, core.Expense, "2024-07-10 09:00:00")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := a.Insert(ctx, archiveTx("1", 100, core.Income, "2024-07-01 09:00:00")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := a.ListMonth(ctx, "2024-07")
	if err != nil {
		t.Fatalf("list month: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestMigrationsRunTwice(t *testing.T) {
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	path := filepath.Join(t.TempDir(), "archive.db")

	a, err := NewSQLiteArchive(path, logger)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	a.Close()

	// Reopening runs migrations again; ErrNoChange must be tolerated.
	b, err := NewSQLiteArchive(path, logger)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	b.Close()
}
