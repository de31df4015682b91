// Package localecache memoizes documents per (event, locale, content version).
package localecache

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/louisbranch/eventld/internal/platform/errors"
	"github.com/louisbranch/eventld/internal/services/eventld/domain"
)

// Key addresses one cache slot. The version is checked, not keyed: a new
// version overwrites the slot instead of adding a sibling.
type Key struct {
	EventID string
	Locale  string
}

type entry struct {
	version  string
	document domain.Document
	storedAt time.Time
}

// Config controls expiry.
type Config struct {
	// TTL expires entries after a fixed age. Zero keeps them until the
	// version changes or the event is invalidated.
	TTL   time.Duration
	Clock func() time.Time
}

// Cache is safe for concurrent use. Concurrent computes of the same
// (key, version) share one call.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]entry
	group   singleflight.Group
	ttl     time.Duration
	clock   func() time.Time
}

// New returns an empty cache.
func New(cfg Config) *Cache {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := cfg.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{
		entries: make(map[Key]entry),
		ttl:     ttl,
		clock:   clock,
	}
}

// ErrCacheMiss reports that no fresh entry exists for the exact key and version.
var ErrCacheMiss = apperrors.New(apperrors.CodeCacheMiss, "cache miss")

// Get returns the entry for (eventID, locale) only when it was stored for version.
func (c *Cache) Get(eventID, locale, version string) (domain.Document, error) {
	key := Key{EventID: eventID, Locale: locale}
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || cached.version != version || c.expired(cached) {
		return domain.Document{}, ErrCacheMiss
	}
	return cached.document, nil
}

// Put stores document for (eventID, locale), replacing any prior version.
func (c *Cache) Put(eventID, locale, version string, document domain.Document) {
	key := Key{EventID: eventID, Locale: locale}
	c.mu.Lock()
	c.entries[key] = entry{version: version, document: document, storedAt: c.clock()}
	c.mu.Unlock()
}

// GetOrCompute returns the cached document for the exact key and version, or
// runs compute, stores its result and returns it. Errors are not cached.
// hit reports whether the document came from the cache.
func (c *Cache) GetOrCompute(
	eventID, locale, version string,
	compute func() (domain.Document, error),
) (document domain.Document, hit bool, err error) {
	if cached, err := c.Get(eventID, locale, version); err == nil {
		return cached, true, nil
	}

	flightKey := strings.Join([]string{eventID, locale, version}, "\x00")
	value, err, _ := c.group.Do(flightKey, func() (any, error) {
		computed, err := compute()
		if err != nil {
			return domain.Document{}, err
		}
		c.Put(eventID, locale, version, computed)
		return computed, nil
	})
	if err != nil {
		return domain.Document{}, false, err
	}
	return value.(domain.Document), false, nil
}

// Invalidate drops every locale of eventID and returns how many entries went.
func (c *Cache) Invalidate(eventID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if key.EventID == eventID {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired(cached entry) bool {
	if c.ttl == 0 {
		return false
	}
	return c.clock().Sub(cached.storedAt) >= c.ttl
}
