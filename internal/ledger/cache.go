package ledger

import (
	"sync"
	"time"

	"github.com/fkhayef/groupledger/internal/cache"
)

type cachedBalances struct {
	generation uint64
	balances   Balances
}

// BalanceCache is an invalidate-on-write side table of computed balances,
// keyed by group id. Every write bumps the group's generation; a value
// computed under an older generation is never stored.
type BalanceCache struct {
	mu          sync.Mutex
	generations map[string]uint64
	entries     *cache.LRUCache[cachedBalances]
}

// NewBalanceCache creates a cache holding the balances of at most size
// groups, each for at most ttl (zero keeps them until evicted).
func NewBalanceCache(size int, ttl time.Duration) *BalanceCache {
	return &BalanceCache{
		generations: make(map[string]uint64),
		entries:     cache.NewLRUCache[cachedBalances](size, ttl),
	}
}

// CleanExpired implements cache.Cleaner.
func (c *BalanceCache) CleanExpired() int {
	return c.entries.CleanExpired()
}

// Size returns the number of groups with cached balances.
func (c *BalanceCache) Size() int {
	return c.entries.Size()
}

func (c *BalanceCache) generation(groupID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[groupID]
}

func (c *BalanceCache) get(groupID string) (Balances, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(groupID)
	if !ok || e.generation != c.generations[groupID] {
		return nil, false
	}
	return e.balances.Clone(), true
}

func (c *BalanceCache) put(groupID string, generation uint64, b Balances) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[groupID] != generation {
		return
	}
	c.entries.Set(groupID, cachedBalances{generation: generation, balances: b.Clone()})
}

// Invalidate drops the group's cached balances.
func (c *BalanceCache) Invalidate(groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[groupID]++
	c.entries.Delete(groupID)
}
