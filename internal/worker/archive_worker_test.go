package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/log"
)

type fakeArchive struct {
	inserted []core.Transaction
	err      error
}

func (f *fakeArchive) Insert(_ context.Context, tx core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, tx)
	return nil
}

type fakeSheet struct {
	appended []core.Transaction
	err      error
}

func (f *fakeSheet) AppendTransaction(_ context.Context, tx core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, tx)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func validMessage() *amqp.RecordedMessage {
	return amqp.NewRecordedMessage(core.Transaction{
		ID:          "20240701090000123456",
		Amount:      300,
		Category:    "Food",
		Description: "groceries",
		Type:        core.Expense,
		Date:        "2024-07-05 12:30:00",
	})
}

func TestHandleRecordedMirrorsToArchive(t *testing.T) {
	archive := &fakeArchive{}
	w := NewArchiveWorker(archive, nil, testLogger())

	msg := validMessage()
	if err := w.HandleRecorded(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(archive.inserted) != 1 || archive.inserted[0].ID != msg.Transaction.ID {
		t.Fatalf("transaction not archived: %+v", archive.inserted)
	}
}

func TestHandleRecordedAppendsToSheetWhenConfigured(t *testing.T) {
	archive := &fakeArchive{}
	sheet := &fakeSheet{}
	w := NewArchiveWorker(archive, sheet, testLogger())

	if err := w.HandleRecorded(context.Background(), validMessage()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sheet.appended) != 1 {
		t.Fatalf("sheet sink not used: %+v", sheet.appended)
	}
}

func TestHandleRecordedReturnsErrorForRequeue(t *testing.T) {
	archive := &fakeArchive{err: errors.New("disk full")}
	w := NewArchiveWorker(archive, nil, testLogger())

	if err := w.HandleRecorded(context.Background(), validMessage()); err == nil {
		t.Fatal("expected error so the event is requeued")
	}
}

func TestHandleRecordedSheetFailureRequeues(t *testing.T) {
	archive := &fakeArchive{}
	sheet := &fakeSheet{err: errors.New("quota exceeded")}
	w := NewArchiveWorker(archive, sheet, testLogger())

	if err := w.HandleRecorded(context.Background(), validMessage()); err == nil {
		t.Fatal("expected error so the event is requeued")
	}
	// The archive insert already happened; redelivery relies on it
	// being idempotent.
	if len(archive.inserted) != 1 {
		t.Fatalf("unexpected archive state: %+v", archive.inserted)
	}
}

func TestBackfillSkipsInvalidTransactions(t *testing.T) {
	archive := &fakeArchive{}
	w := NewArchiveWorker(archive, nil, testLogger())

	txs := []core.Transaction{
		validMessage().Transaction,
		{ID: "bad", Amount: 0, Type: core.Income},
		{
			ID:          "20240702090000000001",
			Amount:      50,
			Category:    "Transport",
			Description: "bus pass",
			Type:        core.Expense,
			Date:        "2024-07-02 09:00:00",
		},
	}
	n, err := w.Backfill(context.Background(), txs)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if n != 2 || len(archive.inserted) != 2 {
		t.Fatalf("expected 2 transactions backfilled, got n=%d inserted=%d", n, len(archive.inserted))
	}
}

func TestBackfillStopsOnArchiveError(t *testing.T) {
	archive := &fakeArchive{err: errors.New("locked")}
	w := NewArchiveWorker(archive, nil, testLogger())

	if _, err := w.Backfill(context.Background(), []core.Transaction{validMessage().Transaction}); err == nil {
		t.Fatal("expected archive error to propagate")
	}
}

func TestHandleRecordedDropsInvalidEvent(t *testing.T) {
	archive := &fakeArchive{}
	w := NewArchiveWorker(archive, nil, testLogger())

	msg := amqp.NewRecordedMessage(core.Transaction{ID: "x", Amount: -1, Type: core.Expense})
	if err := w.HandleRecorded(context.Background(), msg); err != nil {
		t.Fatalf("invalid event should be dropped, not requeued: %v", err)
	}
	if len(archive.inserted) != 0 {
		t.Fatalf("invalid transaction reached the archive: %+v", archive.inserted)
	}
}
