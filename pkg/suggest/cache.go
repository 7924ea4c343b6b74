package suggest

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/bastiangx/keypredict/pkg/composer"
	"github.com/charmbracelet/log"
)

type cacheEntry struct {
	result      Result
	generation  uint64
	userVersion uint64
	lastAccess  int64
}

// ResultCache remembers recent results, keyed by the composer taps and
// mode. An entry is only served while the dictionary generation and the
// user dictionary version it was computed against are still current.
type ResultCache struct {
	entries     map[string]*cacheEntry
	accessCount int64
	hits        int64
	maxEntries  int
	mu          sync.Mutex
}

// NewResultCache creates a cache holding up to maxEntries results.
func NewResultCache(maxEntries int) *ResultCache {
	return &ResultCache{
		entries:    make(map[string]*cacheEntry, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns a copy of a cached result that is still current.
func (rc *ResultCache) Get(key string, generation, userVersion uint64) (Result, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	e, ok := rc.entries[key]
	if !ok {
		return Result{}, false
	}
	if e.generation != generation || e.userVersion != userVersion {
		delete(rc.entries, key)
		return Result{}, false
	}
	e.lastAccess = rc.nextAccessTime()
	rc.hits++
	return e.result.clone(), true
}

// Put stores a copy of r.
func (rc *ResultCache) Put(key string, generation, userVersion uint64, r Result) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, exists := rc.entries[key]; !exists && len(rc.entries) >= rc.maxEntries {
		rc.evictLRU()
	}
	rc.entries[key] = &cacheEntry{
		result:      r.clone(),
		generation:  generation,
		userVersion: userVersion,
		lastAccess:  rc.nextAccessTime(),
	}
}

// Stats returns the cache counters.
func (rc *ResultCache) Stats() map[string]int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return map[string]int{
		"cacheEntries":    len(rc.entries),
		"maxCacheEntries": rc.maxEntries,
		"cacheHits":       int(rc.hits),
	}
}

func (rc *ResultCache) nextAccessTime() int64 {
	rc.accessCount++
	return rc.accessCount
}

func (rc *ResultCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, e := range rc.entries {
		if e.lastAccess < oldestTime {
			oldestTime = e.lastAccess
			oldestKey = key
		}
	}
	if oldestKey != "" {
		delete(rc.entries, oldestKey)
		log.Debugf("Evicted %q from result cache", oldestKey)
	}
}

// cacheKey encodes everything about c and mode that affects a result.
func cacheKey(c *composer.Composer, mode CorrectionMode) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(mode)))
	if c.IsCapitalized() {
		b.WriteByte('^')
	}
	for i := 0; i < c.Len(); i++ {
		b.WriteByte('|')
		step := c.Step(i)
		b.WriteRune(step.Char)
		for _, r := range step.Neighbors {
			b.WriteRune(r)
		}
	}
	return b.String()
}
