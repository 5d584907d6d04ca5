package worker

import (
	"context"
	"fmt"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/log"
)

// TransactionArchiver mirrors recorded transactions into durable storage.
type TransactionArchiver interface {
	Insert(ctx context.Context, tx core.Transaction) error
}

// SheetAppender pushes recorded transactions to an external sheet.
type SheetAppender interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) error
}

// ArchiveWorker consumes recorded-transaction events and mirrors them
// into the SQLite archive and, when configured, a Google Sheet.
type ArchiveWorker struct {
	archive TransactionArchiver
	sheet   SheetAppender // nil disables the sheet sink
	logger  *log.Logger
}

func NewArchiveWorker(archive TransactionArchiver, sheet SheetAppender, logger *log.Logger) *ArchiveWorker {
	return &ArchiveWorker{
		archive: archive,
		sheet:   sheet,
		logger:  logger.WithComponent(log.ComponentArchiver),
	}
}

// HandleRecorded processes one event. Returning an error requeues the
// event; both sinks tolerate redelivery (the archive insert is
// idempotent per transaction ID).
func (w *ArchiveWorker) HandleRecorded(ctx context.Context, msg *amqp.RecordedMessage) error {
	tx := msg.Transaction
	if err := tx.Validate(); err != nil {
		// A malformed event will never become valid; drop it loudly
		// instead of requeueing forever.
		w.logger.Error("Dropping invalid recorded-transaction event",
			log.FieldEventID, msg.EventID,
			log.FieldTransactionID, tx.ID,
			log.FieldError, err)
		return nil
	}

	if err := w.archive.Insert(ctx, tx); err != nil {
		return fmt.Errorf("archive transaction %s: %w", tx.ID, err)
	}

	if w.sheet != nil {
		if err := w.sheet.AppendTransaction(ctx, tx); err != nil {
			return fmt.Errorf("append transaction %s to sheet: %w", tx.ID, err)
		}
	}

	w.logger.Info("Transaction mirrored",
		log.FieldEventID, msg.EventID,
		log.FieldTransactionID, tx.ID,
		log.FieldType, tx.Type,
		log.FieldAmount, tx.Amount)
	return nil
}

// Backfill inserts every transaction from the authoritative log into the
// archive, skipping invalid entries. Events lost while the archiver was
// down are caught up this way; inserts are idempotent so replaying the
// whole log is safe. Returns the number of transactions offered to the
// archive.
func (w *ArchiveWorker) Backfill(ctx context.Context, txs []core.Transaction) (int, error) {
	inserted := 0
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			w.logger.Warn("Skipping invalid transaction during backfill",
				log.FieldTransactionID, tx.ID, log.FieldError, err)
			continue
		}
		if err := w.archive.Insert(ctx, tx); err != nil {
			return inserted, fmt.Errorf("backfill transaction %s: %w", tx.ID, err)
		}
		inserted++
	}
	return inserted, nil
}
