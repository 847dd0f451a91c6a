package prime

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memoizer caches primality results in a bounded LRU. The underlying
// predicate is pure, so cached entries never go stale.
type Memoizer struct {
	cache  *lru.Cache[uint64, bool]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewMemoizer creates a memoizing checker holding at most size entries.
func NewMemoizer(size int) (*Memoizer, error) {
	cache, err := lru.New[uint64, bool](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Memoizer{cache: cache}, nil
}

// IsPrime returns the cached result for n, computing and caching it on a
// miss. Safe for concurrent use.
func (m *Memoizer) IsPrime(n uint64) bool {
	if prime, ok := m.cache.Get(n); ok {
		m.hits.Add(1)
		return prime
	}
	m.misses.Add(1)
	prime := IsPrimeUint64(n)
	m.cache.Add(n, prime)
	return prime
}

// Stats returns the cache hit and miss counts.
func (m *Memoizer) Stats() (hits, misses uint64) {
	return m.hits.Load(), m.misses.Load()
}
