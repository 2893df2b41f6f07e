package store

import (
	"context"
	"sync"

	"finance_tracker/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore keeps transactions in a map. Used for local runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]domain.Transaction
	newID func() string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]domain.Transaction{}, newID: uuid.NewString}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Transaction{}
	for _, t := range s.items {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[id]
	if !ok {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) Create(_ context.Context, tx domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.newID()
	s.items[tx.ID] = tx
	return tx, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
