package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/logging"
	"finance_tracker/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var log = logging.Component("transaction_service")

// ListCache caches a user's sorted transaction list
type ListCache interface {
	Get(ctx context.Context, uid string) ([]domain.Transaction, bool)
	Set(ctx context.Context, uid string, txs []domain.Transaction)
	Invalidate(ctx context.Context, uid string)
}

// EventPublisher receives an event after every successful write
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// CreateInput is a create request as received from the client.
// Amount is the raw JSON text of the amount field, empty when absent.
type CreateInput struct {
	Amount      string
	Description string
	Type        string
	Category    string
}

// TransactionService implements list/create/delete scoped to the caller
type TransactionService struct {
	store  store.Store
	cache  ListCache
	events EventPublisher
	now    func() time.Time

	// generations counts invalidations per owner; a List only caches
	// what it read if no write for that owner happened in between
	genMu       sync.Mutex
	generations map[string]uint64
}

// Option configures a TransactionService
type Option func(*TransactionService)

// WithCache enables list caching
func WithCache(c ListCache) Option {
	return func(s *TransactionService) { s.cache = c }
}

// WithEvents publishes created/deleted events to p
func WithEvents(p EventPublisher) Option {
	return func(s *TransactionService) { s.events = p }
}

// WithClock overrides the creation time source
func WithClock(now func() time.Time) Option {
	return func(s *TransactionService) { s.now = now }
}

// NewTransactionService creates the service over st
func NewTransactionService(st store.Store, opts ...Option) *TransactionService {
	s := &TransactionService{
		store:  st,
		cache:  noopCache{},
		events: noopPublisher{},
		now:    time.Now,

		generations: map[string]uint64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the caller's transactions, newest first
func (s *TransactionService) List(ctx context.Context, caller domain.Identity) ([]domain.Transaction, error) {
	if cached, ok := s.cache.Get(ctx, caller.UID); ok {
		return cached, nil
	}

	gen := s.generation(caller.UID)
	txs, err := s.store.ListByOwner(ctx, caller.UID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	// Never hand out another owner's record, whatever the adapter returned
	txs = slices.DeleteFunc(txs, func(t domain.Transaction) bool { return !t.OwnedBy(caller.UID) })
	if txs == nil {
		txs = []domain.Transaction{}
	}
	SortNewestFirst(txs)

	s.cacheIfCurrent(ctx, caller.UID, gen, txs)
	return txs, nil
}

func (s *TransactionService) generation(uid string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[uid]
}

// cacheIfCurrent stores txs unless the owner's list was invalidated after gen was read
func (s *TransactionService) cacheIfCurrent(ctx context.Context, uid string, gen uint64, txs []domain.Transaction) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[uid] != gen {
		return
	}
	s.cache.Set(ctx, uid, txs)
}

// invalidate must run after the store write it covers
func (s *TransactionService) invalidate(ctx context.Context, uid string) {
	s.genMu.Lock()
	s.generations[uid]++
	s.genMu.Unlock()
	s.cache.Invalidate(ctx, uid)
}

// SortNewestFirst orders by CreatedAt descending; equal timestamps keep their order
func SortNewestFirst(txs []domain.Transaction) {
	slices.SortStableFunc(txs, func(a, b domain.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// Create validates in and stores a new transaction owned by the caller
func (s *TransactionService) Create(ctx context.Context, caller domain.Identity, in CreateInput) (domain.Transaction, error) {
	tx, err := s.build(caller, in)
	if err != nil {
		return domain.Transaction{}, err
	}

	created, err := s.store.Create(ctx, tx)
	if err != nil {
		log.WithFields(logrus.Fields{
			logging.FieldUserID: caller.UID,
			logging.FieldError:  err.Error(),
		}).Error("Failed to add transaction")
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	log.WithFields(logrus.Fields{
		logging.FieldUserID: caller.UID,
		logging.FieldTxID:   created.ID,
		"type":              created.Type,
		"amount":            created.Amount,
	}).Info("Transaction created")

	s.invalidate(ctx, caller.UID)
	s.publish(ctx, domain.Event{
		Kind:          domain.EventCreated,
		TransactionID: created.ID,
		OwnerID:       created.OwnerID,
		OccurredAt:    created.CreatedAt,
		Transaction:   &created,
	})
	return created, nil
}

func (s *TransactionService) build(caller domain.Identity, in CreateInput) (domain.Transaction, error) {
	rawAmount := strings.TrimSpace(in.Amount)
	description := strings.TrimSpace(in.Description)
	rawType := strings.TrimSpace(in.Type)

	if rawAmount == "" || description == "" || rawType == "" {
		return domain.Transaction{}, domain.NewValidationError("Missing required fields", "Amount, description, and type are required")
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return domain.Transaction{}, domain.NewValidationError("Invalid amount", "Amount must be a number")
	}
	if !amount.IsPositive() {
		return domain.Transaction{}, domain.NewValidationError("Invalid amount", "Amount must be greater than zero")
	}
	// decimal takes any exponent; the stored float must stay finite and positive
	value, _ := amount.Float64()
	if math.IsInf(value, 0) {
		return domain.Transaction{}, domain.NewValidationError("Invalid amount", "Amount is too large")
	}
	if value <= 0 {
		return domain.Transaction{}, domain.NewValidationError("Invalid amount", "Amount must be greater than zero")
	}

	typ, ok := domain.ParseTransactionType(rawType)
	if !ok {
		return domain.Transaction{}, domain.NewValidationError("Invalid type", `Type must be either "income" or "expense"`)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	return domain.Transaction{
		OwnerID:     caller.UID,
		Amount:      value,
		Description: description,
		Type:        typ,
		Category:    category,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}, nil
}

// Delete removes the transaction id if the caller owns it.
// Returns domain.ErrNotFound or domain.ErrForbidden otherwise.
func (s *TransactionService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	existing, err := s.store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	if !existing.OwnedBy(caller.UID) {
		log.WithFields(logrus.Fields{
			logging.FieldUserID: caller.UID,
			logging.FieldTxID:   id,
		}).Warn("Rejected delete of another user's transaction")
		return domain.ErrForbidden
	}

	// A concurrent delete may win between Get and Delete; the store reports it as not found
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete transaction: %w", err)
	}

	log.WithFields(logrus.Fields{
		logging.FieldUserID: caller.UID,
		logging.FieldTxID:   id,
	}).Info("Transaction deleted")

	s.invalidate(ctx, caller.UID)
	s.publish(ctx, domain.Event{
		Kind:          domain.EventDeleted,
		TransactionID: id,
		OwnerID:       caller.UID,
		OccurredAt:    s.now().UTC(),
	})
	return nil
}

// Summary aggregates the caller's transactions
func (s *TransactionService) Summary(ctx context.Context, caller domain.Identity) (domain.Summary, error) {
	txs, err := s.List(ctx, caller)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(txs), nil
}

// publish never fails the request; the write already happened
func (s *TransactionService) publish(ctx context.Context, ev domain.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		log.WithFields(logrus.Fields{
			"event":            ev.Kind,
			logging.FieldTxID:  ev.TransactionID,
			logging.FieldError: err.Error(),
		}).Warn("Failed to publish transaction event")
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]domain.Transaction, bool) { return nil, false }
func (noopCache) Set(context.Context, string, []domain.Transaction)        {}
func (noopCache) Invalidate(context.Context, string)                       {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.Event) error { return nil }
