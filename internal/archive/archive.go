// Package archive maintains a SQLite mirror of the transaction log for
// ad-hoc SQL querying and backup. The JSON ledger files remain the
// authoritative stores; the archive is derived and may lag behind.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"finbook/internal/core"
	"finbook/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteArchive struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteArchive(dbPath string, logger *log.Logger) (*SQLiteArchive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteArchive{
		db:     db,
		logger: logger.WithComponent(log.ComponentArchive),
	}, nil
}

func (a *SQLiteArchive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Insert mirrors a recorded transaction. Event redelivery is expected
// (the consumer requeues on failure), so an already archived ID is a
// no-op rather than an error.
func (a *SQLiteArchive) Insert(ctx context.Context, tx core.Transaction) error {
	res, err := a.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount, category, description, transaction_type, date, month_key)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		tx.ID, tx.Amount, tx.Category, tx.Description, string(tx.Type), tx.Date, tx.MonthKey())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		a.logger.Debug("Transaction already archived", log.FieldTransactionID, tx.ID)
		return nil
	}

	a.logger.Debug("Transaction archived",
		log.FieldTransactionID, tx.ID,
		log.FieldMonth, tx.MonthKey())
	return nil
}

// Count returns the number of archived transactions.
func (a *SQLiteArchive) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// MonthTotals aggregates the archived transactions of one month. It
// mirrors the summary ledger's triple and is mainly useful for checking
// the mirror against the ledger files.
func (a *SQLiteArchive) MonthTotals(ctx context.Context, month string) (core.MonthSummary, error) {
	var s core.MonthSummary
	err := a.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN transaction_type = 'income' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN transaction_type = 'expense' THEN amount END), 0)
		FROM transactions
		WHERE month_key = ?`, month).Scan(&s.Income, &s.Expense)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("month totals: %w", err)
	}
	s.Net = s.Income - s.Expense
	return s, nil
}

// ListMonth returns the archived transactions of one month in date order.
func (a *SQLiteArchive) ListMonth(ctx context.Context, month string) ([]core.Transaction, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, amount, category, description, transaction_type, date
		FROM transactions
		WHERE month_key = ?
		ORDER BY date, id`, month)
	if err != nil {
		return nil, fmt.Errorf("list month: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var typ string
		if err := rows.Scan(&tx.ID, &tx.Amount, &tx.Category, &tx.Description, &typ, &tx.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
