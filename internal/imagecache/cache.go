package imagecache

import (
	"container/list"
	"errors"
	"sync"

	"image-viewer/internal/logging"
	"image-viewer/internal/media"
	"image-viewer/internal/memory"
	"image-viewer/internal/metrics"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned by Get for handles that were never issued or whose
// entry has been evicted.
var ErrNotFound = errors.New("image handle not found")

// Handle identifies one cached decode.
type Handle string

// Config bounds cache residency. Zero values mean unbounded.
type Config struct {
	MaxBytes   int64
	MaxEntries int
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Entries     int    `json:"entries"`
	Bytes       int64  `json:"bytes"`
	BudgetBytes int64  `json:"budgetBytes"`
	MaxEntries  int    `json:"maxEntries"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
}

type entry struct {
	handle Handle
	image  *media.Image
	size   int64
}

// Cache is a thread-safe LRU of decoded images.
type Cache struct {
	config Config

	mu        sync.Mutex
	items     map[Handle]*list.Element
	order     *list.List // front = most recent
	usedBytes int64

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates an empty cache.
func New(config Config) *Cache {
	if config.MaxBytes < 0 {
		config.MaxBytes = 0
	}
	if config.MaxEntries < 0 {
		config.MaxEntries = 0
	}
	metrics.CacheBudgetBytes.Set(float64(config.MaxBytes))
	return &Cache{
		config: config,
		items:  make(map[Handle]*list.Element),
		order:  list.New(),
	}
}

// Insert stores img and returns a fresh handle for it. Older entries are
// evicted until the cache fits its budgets again; the entry just inserted is
// never evicted by its own insertion.
func (c *Cache) Insert(img *media.Image) Handle {
	handle := Handle(ulid.Make().String())
	size := img.SizeBytes()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem := c.order.PushFront(&entry{handle: handle, image: img, size: size})
	c.items[handle] = elem
	c.usedBytes += size

	for c.overBudgetLocked() && c.order.Len() > 1 {
		c.evictBackLocked()
	}

	metrics.CacheEntries.Set(float64(c.order.Len()))
	metrics.CacheBytes.Set(float64(c.usedBytes))

	return handle
}

// Get returns the image stored under handle and marks it recently used.
func (c *Cache) Get(handle Handle) (*media.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[handle]
	if !ok {
		c.misses++
		metrics.CacheMisses.Inc()
		return nil, ErrNotFound
	}

	c.order.MoveToFront(elem)
	c.hits++
	metrics.CacheHits.Inc()
	return elem.Value.(*entry).image, nil
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Entries:     c.order.Len(),
		Bytes:       c.usedBytes,
		BudgetBytes: c.config.MaxBytes,
		MaxEntries:  c.config.MaxEntries,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
	}
}

// GetStats implements metrics.StatsProvider.
func (c *Cache) GetStats() metrics.Stats {
	s := c.Stats()
	return metrics.Stats{
		Entries:     s.Entries,
		Bytes:       s.Bytes,
		BudgetBytes: s.BudgetBytes,
	}
}

// Caller must hold c.mu.
func (c *Cache) overBudgetLocked() bool {
	if c.config.MaxBytes > 0 && c.usedBytes > c.config.MaxBytes {
		return true
	}
	return c.config.MaxEntries > 0 && c.order.Len() > c.config.MaxEntries
}

// evictBackLocked removes the least recently used entry.
// Caller must hold c.mu.
func (c *Cache) evictBackLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	e := c.order.Remove(back).(*entry)
	delete(c.items, e.handle)
	c.usedBytes -= e.size
	c.evictions++
	metrics.CacheEvictions.Inc()
	logging.Debug("Evicted cached image %s (%dx%d, %s)",
		e.handle, e.image.Width, e.image.Height, memory.FormatBytes(e.size))
}
