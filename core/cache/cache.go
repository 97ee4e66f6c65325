// Package cache provides LRU caching for parsed passages.
package cache

import (
	"container/list"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
)

// Cache is a generic LRU cache interface.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache.
	Get(key K) (V, bool)

	// Put stores a value in the cache.
	Put(key K, value V)

	// Remove removes a value from the cache.
	Remove(key K)

	// Clear removes all entries from the cache.
	Clear()

	// Len returns the number of entries in the cache.
	Len() int

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int

	// TTL is the time-to-live for entries (0 = no expiration).
	TTL time.Duration

	// OnEvict is called when an entry leaves the cache for any reason other
	// than Clear.
	OnEvict func(key, value any)

	// Now overrides the clock used for TTL checks.
	Now func() time.Time
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{MaxSize: 100}
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// lruCache is a thread-safe LRU cache implementation.
type lruCache[K comparable, V any] struct {
	mu    sync.Mutex
	cfg   Config
	items map[K]*list.Element
	order *list.List
	stats Stats
}

// NewLRUCache creates a new LRU cache with the given configuration.
func NewLRUCache[K comparable, V any](cfg Config) Cache[K, V] {
	if cfg.MaxSize < 0 {
		cfg.MaxSize = 0
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &lruCache[K, V]{
		cfg:   cfg,
		items: make(map[K]*list.Element),
		order: list.New(),
	}
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.expired(e) {
		c.remove(el)
		c.stats.Misses++
		return zero, false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return e.value, true
}

func (c *lruCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.expiresAt = c.deadline()
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, expiresAt: c.deadline()})
	if c.cfg.MaxSize > 0 && c.order.Len() > c.cfg.MaxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
			c.stats.Evictions++
		}
	}
}

func (c *lruCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element)
	c.order.Init()
}

func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *lruCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	s.MaxSize = c.cfg.MaxSize
	return s
}

func (c *lruCache[K, V]) deadline() time.Time {
	if c.cfg.TTL <= 0 {
		return time.Time{}
	}
	return c.cfg.Now().Add(c.cfg.TTL)
}

func (c *lruCache[K, V]) expired(e *entry[K, V]) bool {
	return !e.expiresAt.IsZero() && c.cfg.Now().After(e.expiresAt)
}

func (c *lruCache[K, V]) remove(el *list.Element) {
	c.order.Remove(el)
	e := el.Value.(*entry[K, V])
	delete(c.items, e.key)
	if c.cfg.OnEvict != nil {
		c.cfg.OnEvict(e.key, e.value)
	}
}

// PassageKey identifies one parse of one chapter. Digest is the BLAKE3 hash
// of the markup, so refetched markup that changed misses the cache.
type PassageKey struct {
	Translation string
	Book        string
	Chapter     int
	Digest      string
}

// NewPassageKey hashes markup into a key.
func NewPassageKey(translation, book string, chapter int, markup []byte) PassageKey {
	sum := blake3.Sum256(markup)
	return PassageKey{
		Translation: translation,
		Book:        book,
		Chapter:     chapter,
		Digest:      hex.EncodeToString(sum[:]),
	}
}

// String renders the key as "translation/book_chapter@digest-prefix".
func (k PassageKey) String() string {
	d := k.Digest
	if len(d) > 12 {
		d = d[:12]
	}
	return k.Translation + "/" + k.Book + "_" + strconv.Itoa(k.Chapter) + "@" + d
}

// PassageCache caches parsed passages. Passages are immutable once parsed,
// so the same pointer is handed to every caller.
type PassageCache struct {
	cache Cache[PassageKey, *passage.Passage]
}

// NewPassageCache creates a passage cache.
func NewPassageCache(cfg Config) *PassageCache {
	return &PassageCache{cache: NewLRUCache[PassageKey, *passage.Passage](cfg)}
}

// NewDefaultPassageCache holds a couple of books' worth of chapters.
func NewDefaultPassageCache() *PassageCache {
	cfg := DefaultConfig()
	cfg.MaxSize = 256
	return NewPassageCache(cfg)
}

func (c *PassageCache) Get(key PassageKey) (*passage.Passage, bool) { return c.cache.Get(key) }
func (c *PassageCache) Put(key PassageKey, p *passage.Passage)     { c.cache.Put(key, p) }
func (c *PassageCache) Remove(key PassageKey)                      { c.cache.Remove(key) }
func (c *PassageCache) Clear()                                     { c.cache.Clear() }
func (c *PassageCache) Len() int                                   { return c.cache.Len() }
func (c *PassageCache) Stats() Stats                               { return c.cache.Stats() }
