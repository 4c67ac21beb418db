// Package respcache holds the popup's short lived response cache. Entries are
// merged from partial updates and pruned on every write; there is no
// background timer.
package respcache

import (
	"sort"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// DefaultTTL is how long an entry stays valid after its last update.
	DefaultTTL = 120 * time.Second

	// DefaultMaxEntries bounds the number of entries kept.
	DefaultMaxEntries = 20
)

// Entry is the cached outcome for one normalized input text. Summary and
// Score are filled independently as each backend call resolves.
type Entry struct {
	Summary          fn.Option[string]
	SummaryFromCache bool
	Score            fn.Option[float64]
	ScoreFromCache   bool
	LastUpdated      time.Time
}

// Patch mutates an entry during Put.
type Patch func(*Entry)

// WithSummary records a summary reply.
func WithSummary(text string, fromCache bool) Patch {
	return func(e *Entry) {
		e.Summary = fn.Some(text)
		e.SummaryFromCache = fromCache
	}
}

// WithScore records an ad score.
func WithScore(score float64, fromCache bool) Patch {
	return func(e *Entry) {
		e.Score = fn.Some(score)
		e.ScoreFromCache = fromCache
	}
}

// Config holds the cache bounds.
type Config struct {
	TTL        time.Duration
	MaxEntries int

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the standard popup bounds.
func DefaultConfig() Config {
	return Config{
		TTL:        DefaultTTL,
		MaxEntries: DefaultMaxEntries,
	}
}

// Cache maps normalized input text to Entry.
type Cache struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

// New creates an empty cache.
func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Cache{
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		now:        cfg.Now,
		entries:    make(map[string]*Entry),
	}
}

// Get returns the entry for key regardless of age.
func (c *Cache) Get(key string) fn.Option[Entry] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return fn.None[Entry]()
	}

	return fn.Some(*e)
}

// Fresh returns the entry for key only if it is within the TTL.
func (c *Cache) Fresh(key string) fn.Option[Entry] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e, c.now()) {
		return fn.None[Entry]()
	}

	return fn.Some(*e)
}

// Put merges the patches into the entry for key, creating it if needed,
// stamps LastUpdated and runs eviction. The merged entry is returned.
func (c *Cache) Put(key string, patches ...Patch) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	e, ok := c.entries[key]
	if !ok {
		e = &Entry{}
		c.entries[key] = e
	}
	for _, p := range patches {
		p(e)
	}
	e.LastUpdated = now

	c.evict(now)

	return *e
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// evict drops expired entries, then the oldest entries until the cache is
// within MaxEntries. Must be called with mu held.
func (c *Cache) evict(now time.Time) {
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].LastUpdated.Before(
			c.entries[keys[j]].LastUpdated,
		)
	})

	for _, k := range keys[:len(keys)-c.maxEntries] {
		delete(c.entries, k)
	}
}

// expired reports whether e is older than the TTL.
func (c *Cache) expired(e *Entry, now time.Time) bool {
	return now.Sub(e.LastUpdated) > c.ttl
}
