package cache

import (
	"context"
	"fmt"
	"time"

	"finance_tracker/internal/domain"

	"github.com/dgraph-io/ristretto"
)

// MemoryListCache caches transaction lists in process with ristretto.
// Only correct when a single server instance handles a user's writes.
type MemoryListCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewMemoryListCache creates an in-process cache
func NewMemoryListCache(ttl time.Duration) (*MemoryListCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000, // number of keys to track frequency of
		MaxCost:     1 << 20, // transactions held across all lists
		BufferItems: 64,      // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &MemoryListCache{cache: c, ttl: ttl}, nil
}

func (c *MemoryListCache) Get(_ context.Context, uid string) ([]domain.Transaction, bool) {
	v, ok := c.cache.Get(ListKey(uid))
	if !ok {
		return nil, false
	}
	txs, ok := v.([]domain.Transaction)
	if !ok {
		return nil, false
	}
	return append([]domain.Transaction{}, txs...), true
}

func (c *MemoryListCache) Set(_ context.Context, uid string, txs []domain.Transaction) {
	cp := append([]domain.Transaction{}, txs...)
	c.cache.SetWithTTL(ListKey(uid), cp, int64(len(cp))+1, c.ttl)
	// Sets are buffered; wait so a later Invalidate can't be overtaken by this write
	c.cache.Wait()
}

func (c *MemoryListCache) Invalidate(_ context.Context, uid string) {
	c.cache.Del(ListKey(uid))
}

// Close stops ristretto's background goroutines
func (c *MemoryListCache) Close() {
	c.cache.Close()
}
