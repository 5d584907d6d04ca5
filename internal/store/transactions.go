package store

import (
	"fmt"

	"finbook/internal/core"
	"finbook/internal/log"
)

// TransactionStore owns the durable, append-only sequence of transactions.
// Insertion order is file order. There is no delete operation.
type TransactionStore struct {
	path         string
	logger       *log.Logger
	transactions []core.Transaction
}

// NewTransactionStore creates the backing file when absent and loads it.
// A load failure is recoverable: the store starts with an empty sequence
// and the error is returned so the caller can report it and continue.
func NewTransactionStore(path string, logger *log.Logger) (*TransactionStore, error) {
	s := &TransactionStore{
		path:         path,
		logger:       logger.WithComponent(log.ComponentStore),
		transactions: []core.Transaction{},
	}
	if err := ensureFile(path, s.transactions); err != nil {
		return s, err
	}
	if err := s.load(); err != nil {
		s.transactions = []core.Transaction{}
		s.logger.Warn("Failed to load transactions, starting empty",
			log.FieldFile, path, log.FieldError, err)
		return s, err
	}
	return s, nil
}

func (s *TransactionStore) load() error {
	var loaded []core.Transaction
	if err := readJSON(s.path, &loaded); err != nil {
		return err
	}
	if loaded == nil {
		loaded = []core.Transaction{}
	}
	s.transactions = loaded
	return nil
}

// save rewrites the whole transactions file. The file stays valid JSON
// after every mutation at the cost of O(n) disk I/O per insert, which is
// acceptable for a single user's ledger.
func (s *TransactionStore) save() error {
	return writeJSON(s.path, s.transactions)
}

// Add appends the transaction and rewrites the file. When the rewrite
// fails the in-memory sequence already contains the transaction, leaving
// memory ahead of disk until the next successful save.
func (s *TransactionStore) Add(tx core.Transaction) error {
	s.transactions = append(s.transactions, tx)
	if err := s.save(); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	s.logger.Debug("Transaction saved",
		log.FieldTransactionID, tx.ID,
		log.FieldType, tx.Type,
		log.FieldAmount, tx.Amount,
		log.FieldCategory, tx.Category)
	return nil
}

// All returns the full sequence in insertion order.
func (s *TransactionStore) All() []core.Transaction {
	return append([]core.Transaction(nil), s.transactions...)
}

// ByType returns the subsequence with the given type, preserving order.
func (s *TransactionStore) ByType(typ core.TransactionType) []core.Transaction {
	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.Type == typ {
			out = append(out, tx)
		}
	}
	return out
}

// Count returns the number of stored transactions.
func (s *TransactionStore) Count() int {
	return len(s.transactions)
}

// Balance scans the sequence and totals income and expense amounts.
func (s *TransactionStore) Balance() core.Balance {
	var b core.Balance
	for _, tx := range s.transactions {
		switch tx.Type {
		case core.Income:
			b.TotalIncome += tx.Amount
		case core.Expense:
			b.TotalExpense += tx.Amount
		}
	}
	b.Balance = b.TotalIncome - b.TotalExpense
	return b
}

// Categories returns the distinct category names seen among income and
// expense transactions. First-seen order; not contractually meaningful.
func (s *TransactionStore) Categories() core.Categories {
	var c core.Categories
	seenIncome := map[string]struct{}{}
	seenExpense := map[string]struct{}{}
	for _, tx := range s.transactions {
		switch tx.Type {
		case core.Income:
			if _, ok := seenIncome[tx.Category]; !ok {
				seenIncome[tx.Category] = struct{}{}
				c.Income = append(c.Income, tx.Category)
			}
		case core.Expense:
			if _, ok := seenExpense[tx.Category]; !ok {
				seenExpense[tx.Category] = struct{}{}
				c.Expense = append(c.Expense, tx.Category)
			}
		}
	}
	return c
}
