package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Ledger files
	DataDir          string
	TransactionsFile string
	SummaryFile      string
	SettingsFile     string

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Archive (finbook-archiver)
	ArchiveDBPath  string
	ReconcileEvery time.Duration

	// Google Sheets export (optional)
	SheetsSpreadsheetID string
	SheetsSheetName     string

	// Interactive app
	ViewLimit int // transactions shown per type in the list view
}

func Load() *Config {
	dataDir := getEnv("DATA_DIR", "./data")

	cfg := &Config{
		DataDir:          dataDir,
		TransactionsFile: getEnv("TRANSACTIONS_FILE", filepath.Join(dataDir, "transactions.json")),
		SummaryFile:      getEnv("SUMMARY_FILE", filepath.Join(dataDir, "monthly_summary.json")),
		SettingsFile:     getEnv("SETTINGS_FILE", filepath.Join(dataDir, "settings.json")),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finbook"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "recorded_transactions"),

		ArchiveDBPath:  getEnv("ARCHIVE_DB_PATH", filepath.Join(dataDir, "archive.db")),
		ReconcileEvery: getEnvDuration("RECONCILE_EVERY", 0),

		SheetsSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetsSheetName:     getEnv("GOOGLE_SHEET_NAME", "Transactions"),

		ViewLimit: getEnvInt("VIEW_LIMIT", 10),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty")
	} else if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
			errs = append(errs, fmt.Sprintf("cannot create data directory '%s': %v", c.DataDir, err))
		}
	}

	for name, path := range map[string]string{
		"transactions file": c.TransactionsFile,
		"summary file":      c.SummaryFile,
		"settings file":     c.SettingsFile,
	} {
		if path == "" {
			errs = append(errs, fmt.Sprintf("%s path cannot be empty", name))
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ArchiveDBPath == "" {
		errs = append(errs, "archive database path cannot be empty")
	} else if dir := filepath.Dir(c.ArchiveDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create archive database directory '%s': %v", dir, err))
			}
		}
	}

	if c.ReconcileEvery != 0 && c.ReconcileEvery < time.Second {
		errs = append(errs, fmt.Sprintf("invalid reconcile interval %v: must be at least 1 second", c.ReconcileEvery))
	}

	if c.SheetsSpreadsheetID != "" && c.SheetsSheetName == "" {
		errs = append(errs, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if c.ViewLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid view limit %d: must be at least 1", c.ViewLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// SheetsEnabled reports whether the archiver should export to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
