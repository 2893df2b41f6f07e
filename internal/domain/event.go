package domain

import "time"

// EventKind names a transaction lifecycle event
type EventKind string

const (
	EventCreated EventKind = "transaction.created"
	EventDeleted EventKind = "transaction.deleted"
)

// Event is published after a successful write
type Event struct {
	Kind          EventKind    `json:"event"`
	TransactionID string       `json:"transactionId"`
	OwnerID       string       `json:"userId"`
	OccurredAt    time.Time    `json:"occurredAt"`
	Transaction   *Transaction `json:"transaction,omitempty"`
}
