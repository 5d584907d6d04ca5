// Package services wires the three ledger stores behind one recording
// facade with a defined write order and partial-failure behavior.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/log"
	"finbook/internal/store"
)

// ErrSummaryStale reports that a transaction reached the transaction
// store but the monthly summary update failed. The transaction is
// recorded; the summary stays behind until the next Reconcile.
var ErrSummaryStale = errors.New("monthly summary out of sync with transaction log")

// EventPublisher publishes recorded-transaction events. The AMQP client
// implements it; a nil publisher disables publishing.
type EventPublisher interface {
	PublishRecorded(ctx context.Context, msg *amqp.RecordedMessage) error
}

// LimitCheck is the outcome of comparing a month's spending against the
// configured monthly limit.
type LimitCheck struct {
	Limit    float64
	Spent    float64
	Exceeded bool
}

// Recorder sequences TransactionStore.Add before SummaryLedger.Update so
// the transaction log is always at least as fresh as the derived
// summary, and optionally publishes an event for the archive pipeline.
type Recorder struct {
	transactions *store.TransactionStore
	summary      *store.SummaryLedger
	settings     *store.SettingsStore
	events       EventPublisher
	logger       *log.Logger
}

func NewRecorder(transactions *store.TransactionStore, summary *store.SummaryLedger, settings *store.SettingsStore, events EventPublisher, logger *log.Logger) *Recorder {
	return &Recorder{
		transactions: transactions,
		summary:      summary,
		settings:     settings,
		events:       events,
		logger:       logger.WithComponent(log.ComponentRecorder),
	}
}

// Record validates and persists the transaction, then folds it into the
// monthly summary. A summary failure is returned as ErrSummaryStale: the
// transaction itself is already recorded. Event publishing is
// best-effort and never fails the record.
func (r *Recorder) Record(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if err := r.transactions.Add(tx); err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}

	if err := r.summary.Update(tx); err != nil {
		r.logger.Error("Summary update failed after transaction was recorded",
			log.FieldTransactionID, tx.ID, log.FieldError, err)
		return fmt.Errorf("%w: %v", ErrSummaryStale, err)
	}

	r.publish(ctx, tx)

	r.logger.Info("Transaction recorded",
		log.FieldTransactionID, tx.ID,
		log.FieldType, tx.Type,
		log.FieldAmount, tx.Amount,
		log.FieldCategory, tx.Category)
	return nil
}

// RecordNew builds a transaction dated now and records it.
func (r *Recorder) RecordNew(ctx context.Context, amount float64, category, description string, typ core.TransactionType) (core.Transaction, error) {
	tx := core.NewTransaction(amount, category, description, typ, time.Now())
	if err := r.Record(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (r *Recorder) publish(ctx context.Context, tx core.Transaction) {
	if r.events == nil {
		return
	}
	msg := amqp.NewRecordedMessage(tx)
	if err := r.events.PublishRecorded(ctx, msg); err != nil {
		// The ledger files are authoritative; a lost event only delays
		// the archive mirror.
		r.logger.Warn("Failed to publish recorded-transaction event",
			log.FieldEventID, msg.EventID,
			log.FieldTransactionID, tx.ID,
			log.FieldError, err)
	}
}

// CheckLimit compares the month's expense total against the configured
// monthly limit. A zero limit means no limit and never triggers.
func (r *Recorder) CheckLimit(month string) LimitCheck {
	limit := r.settings.MonthlyLimit()
	spent := r.summary.Get(month).Expense
	return LimitCheck{
		Limit:    limit,
		Spent:    spent,
		Exceeded: limit > 0 && spent > limit,
	}
}

// Reconcile rebuilds the monthly summary from the full transaction log.
// This is the recovery path for ErrSummaryStale and for any other drift.
func (r *Recorder) Reconcile() error {
	return r.summary.Rebuild(r.transactions.All())
}
