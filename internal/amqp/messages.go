package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finbook/internal/core"
)

// RecordedMessage is published after a transaction has been recorded in
// the ledger. It carries the full transaction so consumers never need to
// read the ledger files.
type RecordedMessage struct {
	EventID     string           `json:"event_id"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewRecordedMessage wraps a transaction in an event envelope with a
// fresh event ID.
func NewRecordedMessage(tx core.Transaction) *RecordedMessage {
	return &RecordedMessage{
		EventID:     uuid.NewString(),
		Transaction: tx,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordedMessageFromJSON creates a message from JSON bytes
func RecordedMessageFromJSON(data []byte) (*RecordedMessage, error) {
	var msg RecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
