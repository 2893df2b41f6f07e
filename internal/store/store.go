// Package store holds the Record Store adapters for transactions.
//
// Every adapter assigns ids on Create, returns domain.ErrNotFound from Get and
// Delete for unknown ids, and makes no promise about ListByOwner ordering.
package store

import (
	"context"
	"time"

	"finance_tracker/internal/domain"
)

// Store is the document store the transaction service depends on
type Store interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error)
	Get(ctx context.Context, id string) (domain.Transaction, error)
	Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// timestampLayout is how text based backends persist CreatedAt. It matches
// JavaScript's toISOString so existing documents keep parsing.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
