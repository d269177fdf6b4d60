package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	TransactionProcessed = "transaction.processed"
)

// Stream and channel names
const (
	TransactionEventsStream = "transaction.events"
	NotificationChannel     = "account.notifications"
)

// Event is the envelope written to the stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// TransactionProcessedEvent is the settlement event. It carries everything the
// settlement listener needs to apply balance effects; amounts are already in
// the settlement currency.
type TransactionProcessedEvent struct {
	AccountID            string          `json:"accountId"`
	TransactionID        string          `json:"transactionId"`
	Amount               decimal.Decimal `json:"amount"`
	TransactionType      string          `json:"transactionType"`
	DestinationAccountID *string         `json:"destinationAccountId,omitempty"`
}

// Notification is the fire-and-forget payload pushed to the notification
// channel after a settlement applies.
type Notification struct {
	AccountID     string          `json:"accountId"`
	TransactionID string          `json:"transactionId"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"newBalance"`
}
