package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"finbook/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestCloseIdempotentWithoutConnection(t *testing.T) {
	// connect closes the previous connection before every redial, so
	// Close must be safe on a client that never connected and on repeat
	// calls.
	c := &Client{url: "amqp://localhost:5672"}
	if err := c.Close(); err != nil {
		t.Fatalf("close without connection: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if c.conn != nil || c.channel != nil {
		t.Fatalf("close must clear the connection state")
	}
}

func TestNewRecordedMessage(t *testing.T) {
	tx := core.Transaction{
		ID:          "20240701090000123456",
		Amount:      1000,
		Category:    "Salary",
		Description: "July pay",
		Type:        core.Income,
		Date:        "2024-07-01 09:00:00",
	}

	msg := NewRecordedMessage(tx)

	if msg.EventID == "" {
		t.Error("NewRecordedMessage() EventID should not be empty")
	}
	if msg.Transaction != tx {
		t.Errorf("NewRecordedMessage() Transaction = %+v, want %+v", msg.Transaction, tx)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewRecordedMessage() Timestamp should not be zero")
	}
	if other := NewRecordedMessage(tx); other.EventID == msg.EventID {
		t.Error("NewRecordedMessage() should generate distinct event IDs")
	}
}

func TestRecordedMessage_JSON(t *testing.T) {
	msg := &RecordedMessage{
		EventID: "5f4c7a60-0000-0000-0000-000000000000",
		Transaction: core.Transaction{
			ID:          "20240701090000123456",
			Amount:      300.5,
			Category:    "Food",
			Description: "groceries",
			Type:        core.Expense,
			Date:        "2024-07-05 12:30:00",
		},
		Timestamp: time.Date(2024, 7, 5, 12, 30, 1, 0, time.UTC),
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := RecordedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("RecordedMessageFromJSON() error = %v", err)
	}

	if parsed.EventID != msg.EventID {
		t.Errorf("Parsed EventID = %v, want %v", parsed.EventID, msg.EventID)
	}
	if parsed.Transaction != msg.Transaction {
		t.Errorf("Parsed Transaction = %+v, want %+v", parsed.Transaction, msg.Transaction)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestRecordedMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"event_id": 12, "transaction": "nope"}`)

	if _, err := RecordedMessageFromJSON(invalidJSON); err == nil {
		t.Error("RecordedMessageFromJSON() should fail with invalid JSON")
	}
}
