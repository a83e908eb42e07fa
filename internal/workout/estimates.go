package workout

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/coocood/freecache"
)

const (
	estimateCacheSize   = 1024 * 1024
	estimateCacheExpire = 10 * 60 // seconds
)

// estimateCache keeps the highest estimated one-rep max per lift. A lift without any estimate is cached as an empty
// value so that the absence is remembered too.
//
// Every invalidation bumps the lift's generation. A value read from the database before an invalidation carries the
// old generation and is not cached.
type estimateCache struct {
	cache *freecache.Cache

	mu          sync.Mutex
	generations map[string]uint64
}

func newEstimateCache() *estimateCache {
	return &estimateCache{
		cache:       freecache.NewCache(estimateCacheSize),
		mu:          sync.Mutex{},
		generations: make(map[string]uint64),
	}
}

// generation must be taken before reading the value later passed to set.
func (c *estimateCache) generation(lift string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[lift]
}

func (c *estimateCache) get(lift string) (*float64, bool) {
	b, err := c.cache.Get([]byte(lift))
	if err != nil {
		return nil, false
	}
	if len(b) != 8 { //nolint:mnd // float64 bits.
		return nil, true
	}
	est := math.Float64frombits(binary.LittleEndian.Uint64(b))
	return &est, true
}

func (c *estimateCache) set(lift string, est *float64, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[lift] != gen {
		return
	}
	var b []byte
	if est != nil {
		b = binary.LittleEndian.AppendUint64(nil, math.Float64bits(*est))
	}
	// Set only fails for entries larger than the cache allows, which a lift name never is.
	_ = c.cache.Set([]byte(lift), b, estimateCacheExpire)
}

func (c *estimateCache) invalidate(lift string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[lift]++
	c.cache.Del([]byte(lift))
}
