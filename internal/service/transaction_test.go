package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Identity{UID: "alice", Email: "alice@example.com"}
	bob   = domain.Identity{UID: "bob", Email: "bob@example.com"}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type mapCache struct {
	lists       map[string][]domain.Transaction
	invalidated []string
}

func newMapCache() *mapCache { return &mapCache{lists: map[string][]domain.Transaction{}} }

func (c *mapCache) Get(_ context.Context, uid string) ([]domain.Transaction, bool) {
	txs, ok := c.lists[uid]
	return txs, ok
}

func (c *mapCache) Set(_ context.Context, uid string, txs []domain.Transaction) {
	c.lists[uid] = txs
}

func (c *mapCache) Invalidate(_ context.Context, uid string) {
	delete(c.lists, uid)
	c.invalidated = append(c.invalidated, uid)
}

// tickingClock advances one second per call
func tickingClock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func validInput() CreateInput {
	return CreateInput{Amount: "42.5", Description: "Lunch", Type: "Expense", Category: "Food"}
}

func TestCreate_SetsOwnerAndNormalizes(t *testing.T) {
	svc := NewTransactionService(store.NewMemoryStore(), WithClock(tickingClock()))

	tx, err := svc.Create(context.Background(), alice, CreateInput{
		Amount:      " 42.50 ",
		Description: "  Lunch  ",
		Type:        " EXPENSE ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "alice", tx.OwnerID)
	assert.Equal(t, 42.5, tx.Amount)
	assert.Equal(t, "Lunch", tx.Description)
	assert.Equal(t, domain.TypeExpense, tx.Type)
	assert.Equal(t, domain.DefaultCategory, tx.Category)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC), tx.CreatedAt)
}

func TestCreate_TruncatesTimestampToMillis(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.FixedZone("CET", 3600))
	svc := NewTransactionService(store.NewMemoryStore(), WithClock(func() time.Time { return now }))

	tx, err := svc.Create(context.Background(), alice, validInput())
	require.NoError(t, err)

	assert.Equal(t, time.UTC, tx.CreatedAt.Location())
	assert.Equal(t, 123000000, tx.CreatedAt.Nanosecond())
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateInput
		title string
	}{
		{"missing amount", CreateInput{Description: "x", Type: "income"}, "Missing required fields"},
		{"missing description", CreateInput{Amount: "1", Description: "   ", Type: "income"}, "Missing required fields"},
		{"missing type", CreateInput{Amount: "1", Description: "x"}, "Missing required fields"},
		{"non numeric amount", CreateInput{Amount: "abc", Description: "x", Type: "income"}, "Invalid amount"},
		{"boolean amount", CreateInput{Amount: "true", Description: "x", Type: "income"}, "Invalid amount"},
		{"zero amount", CreateInput{Amount: "0", Description: "x", Type: "income"}, "Invalid amount"},
		{"negative amount", CreateInput{Amount: "-5", Description: "x", Type: "income"}, "Invalid amount"},
		{"amount overflows float", CreateInput{Amount: "1e400", Description: "x", Type: "income"}, "Invalid amount"},
		{"amount underflows to zero", CreateInput{Amount: "1e-400", Description: "x", Type: "income"}, "Invalid amount"},
		{"unknown type", CreateInput{Amount: "1", Description: "x", Type: "transfer"}, "Invalid type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			svc := NewTransactionService(st)

			_, err := svc.Create(context.Background(), alice, tt.in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.title, verr.Title)

			txs, err := st.ListByOwner(context.Background(), alice.UID)
			require.NoError(t, err)
			assert.Empty(t, txs)
		})
	}
}

func TestList_OnlyCallerNewestFirst(t *testing.T) {
	svc := NewTransactionService(store.NewMemoryStore(), WithClock(tickingClock()))
	ctx := context.Background()

	first, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, validInput())
	require.NoError(t, err)
	second, err := svc.Create(ctx, alice, CreateInput{Amount: "1000", Description: "Salary", Type: "income"})
	require.NoError(t, err)

	txs, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
	for _, tx := range txs {
		assert.Equal(t, alice.UID, tx.OwnerID)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	svc := NewTransactionService(store.NewMemoryStore())

	txs, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestSortNewestFirst_StableOnTies(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{ID: "a", CreatedAt: ts},
		{ID: "b", CreatedAt: ts.Add(time.Minute)},
		{ID: "c", CreatedAt: ts},
	}

	SortNewestFirst(txs)

	assert.Equal(t, []string{"b", "a", "c"}, []string{txs[0].ID, txs[1].ID, txs[2].ID})
}

func TestDelete_Ownership(t *testing.T) {
	pub := &recordingPublisher{}
	st := store.NewMemoryStore()
	svc := NewTransactionService(st, WithEvents(pub))
	ctx := context.Background()

	tx, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)

	err = svc.Delete(ctx, bob, tx.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = st.Get(ctx, tx.ID)
	require.NoError(t, err, "forbidden delete must keep the record")

	require.NoError(t, svc.Delete(ctx, alice, tx.ID))
	_, err = st.Get(ctx, tx.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, alice, tx.ID), domain.ErrNotFound)

	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.EventCreated, pub.events[0].Kind)
	assert.Equal(t, domain.EventDeleted, pub.events[1].Kind)
	assert.Equal(t, tx.ID, pub.events[1].TransactionID)
	assert.Equal(t, alice.UID, pub.events[1].OwnerID)
}

func TestDelete_UnknownID(t *testing.T) {
	svc := NewTransactionService(store.NewMemoryStore())
	assert.ErrorIs(t, svc.Delete(context.Background(), alice, "missing"), domain.ErrNotFound)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store.NewMemoryStore(), WithEvents(pub))
	ctx := context.Background()

	tx, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, alice, tx.ID))
	assert.Len(t, pub.events, 2)
}

func TestCacheInvalidatedOnWrites(t *testing.T) {
	c := newMapCache()
	svc := NewTransactionService(store.NewMemoryStore(), WithCache(c))
	ctx := context.Background()

	txs, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Contains(t, c.lists, alice.UID)

	tx, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)
	assert.NotContains(t, c.lists, alice.UID)

	txs, err = svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.ErrorIs(t, svc.Delete(ctx, bob, tx.ID), domain.ErrForbidden)
	assert.Contains(t, c.lists, alice.UID, "rejected delete leaves the cache alone")

	require.NoError(t, svc.Delete(ctx, alice, tx.ID))
	txs, err = svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Equal(t, []string{alice.UID, alice.UID}, c.invalidated)
}

type failingStore struct {
	store.Store
	err error
}

func (s failingStore) ListByOwner(context.Context, string) ([]domain.Transaction, error) {
	return nil, s.err
}

func (s failingStore) Get(context.Context, string) (domain.Transaction, error) {
	return domain.Transaction{}, s.err
}

func (s failingStore) Create(context.Context, domain.Transaction) (domain.Transaction, error) {
	return domain.Transaction{}, s.err
}

func TestStoreFailuresPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewTransactionService(failingStore{err: boom})
	ctx := context.Background()

	_, err := svc.List(ctx, alice)
	assert.ErrorIs(t, err, boom)

	_, err = svc.Create(ctx, alice, validInput())
	assert.ErrorIs(t, err, boom)

	err = svc.Delete(ctx, alice, "id")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestSummary(t *testing.T) {
	svc := NewTransactionService(store.NewMemoryStore(), WithClock(tickingClock()))
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Amount: "1000", Description: "Salary", Type: "income"},
		{Amount: "42.5", Description: "Lunch", Type: "expense", Category: "Food"},
		{Amount: "7.5", Description: "Coffee", Type: "expense", Category: "Food"},
		{Amount: "100", Description: "Gift", Type: "expense"},
	} {
		_, err := svc.Create(ctx, alice, in)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bob, CreateInput{Amount: "999", Description: "Other user", Type: "expense"})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, sum.TotalIncome)
	assert.Equal(t, 150.0, sum.TotalExpense)
	assert.Equal(t, 850.0, sum.Balance)
	assert.Equal(t, 4, sum.Count)
	require.Len(t, sum.Categories, 2)
	assert.Equal(t, "Other", sum.Categories[0].Category)
	assert.Equal(t, "Food", sum.Categories[1].Category)
	assert.Equal(t, 50.0, sum.Categories[1].Total)
}

// pausingStore blocks ListByOwner after reading until release is closed
type pausingStore struct {
	*store.MemoryStore
	listed  chan struct{}
	release chan struct{}
}

func (s *pausingStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	txs, err := s.MemoryStore.ListByOwner(ctx, ownerID)
	close(s.listed)
	<-s.release
	return txs, err
}

func TestListDoesNotCacheListReadBeforeWrite(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	seed := NewTransactionService(mem)
	tx, err := seed.Create(ctx, alice, validInput())
	require.NoError(t, err)

	slow := &pausingStore{MemoryStore: mem, listed: make(chan struct{}), release: make(chan struct{})}
	c := newMapCache()
	svc := NewTransactionService(slow, WithCache(c))

	done := make(chan []domain.Transaction)
	go func() {
		txs, err := svc.List(ctx, alice)
		assert.NoError(t, err)
		done <- txs
	}()

	<-slow.listed
	// Delete through the same service while the list is in flight
	require.NoError(t, svc.Delete(ctx, alice, tx.ID))
	close(slow.release)

	stale := <-done
	assert.Len(t, stale, 1, "the in-flight list saw the record")
	assert.NotContains(t, c.lists, alice.UID, "the stale list must not be cached")

	fresh, err := NewTransactionService(mem, WithCache(c)).List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}
