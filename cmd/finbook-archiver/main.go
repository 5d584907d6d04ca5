package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finbook/internal/amqp"
	"finbook/internal/archive"
	"finbook/internal/cli"
	"finbook/internal/config"
	"finbook/internal/export/sheets"
	"finbook/internal/log"
	"finbook/internal/store"
	"finbook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentArchiver)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting finbook-archiver")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required: the archiver consumes recorded-transaction events")
		os.Exit(1)
	}

	db, err := archive.NewSQLiteArchive(cfg.ArchiveDBPath, logger)
	if err != nil {
		logger.Error("Failed to initialize archive database",
			log.FieldError, err, log.FieldFile, cfg.ArchiveDBPath)
		os.Exit(1)
	}
	defer db.Close()

	// Google Sheets export is optional.
	var sheetSink worker.SheetAppender
	if cfg.SheetsEnabled() {
		sheetsClient, err := sheets.New(context.Background(), cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		sheetSink = sheetsClient
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.SheetsSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	archiveWorker := worker.NewArchiveWorker(db, sheetSink, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		_ = amqpClient.Close()
	})

	if count, err := db.Count(ctx); err == nil {
		logger.Info("Archive ready", log.FieldCount, count, log.FieldFile, cfg.ArchiveDBPath)
	}

	// Catch up on events missed while the archiver was down. The sheet
	// sink is skipped here: only the SQLite mirror is idempotent.
	backfill(ctx, cfg, db, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeRecorded(gctx, func(msg *amqp.RecordedMessage) error {
			return archiveWorker.HandleRecorded(gctx, msg)
		})
	})

	if cfg.ReconcileEvery > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.ReconcileEvery)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ticker.C:
					backfill(gctx, cfg, db, logger)
				}
			}
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Archiver stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Archiver stopped")
}

// backfill replays the authoritative transaction log into the archive.
// Failures are logged, not fatal: the consumer loop keeps the mirror
// current and the next tick retries.
func backfill(ctx context.Context, cfg *config.Config, db *archive.SQLiteArchive, logger *log.Logger) {
	txStore, err := store.NewTransactionStore(cfg.TransactionsFile, logger)
	if err != nil {
		logger.Warn("Skipping backfill, transaction log unreadable",
			log.FieldFile, cfg.TransactionsFile, log.FieldError, err)
		return
	}
	w := worker.NewArchiveWorker(db, nil, logger)
	n, err := w.Backfill(ctx, txStore.All())
	if err != nil {
		logger.Warn("Backfill incomplete", log.FieldCount, n, log.FieldError, err)
		return
	}
	logger.Info("Backfill complete", log.FieldCount, n)
}
