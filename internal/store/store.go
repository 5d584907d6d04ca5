// Package store implements the three file-backed stores of the ledger:
// the transaction log, the derived monthly summary and the settings.
//
// Every store owns one JSON file and keeps its in-memory state and the
// file synchronized by rewriting the whole document on each mutation.
// The stores are not safe for concurrent use: at most one writer at a
// time is an invariant the caller must uphold. With two simultaneous
// writers the last full-file rewrite wins and the other writer's data
// is silently lost.
package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// writeJSON replaces the whole file with the indented JSON encoding of v.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// readJSON decodes the whole file into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ensureFile creates the file with the given initial document when it
// does not exist yet.
func ensureFile(path string, initial any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return writeJSON(path, initial)
}
