package erddap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/observability"
)

// SampleFetcher is the fetch surface wrapped by the cache.
type SampleFetcher interface {
	FetchSamples(ctx context.Context, box domain.BoundingBox) ([]domain.Sample, error)
}

// CachedSource wraps a satellite source with an in-memory LRU cache.
// Cache keys include the UTC date, so entries expire naturally as new
// observation days arrive. Point lookups go through the same cache as
// area queries.
type CachedSource struct {
	inner     SampleFetcher
	fieldName string
	cache     *lruCache
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewCachedSource creates a cache decorator around a satellite source.
func NewCachedSource(inner SampleFetcher, fieldName string, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:     inner,
		fieldName: fieldName,
		cache:     newLRUCache(maxEntries),
		metrics:   metrics,
		now:       time.Now,
	}
}

func (c *CachedSource) FetchSamples(ctx context.Context, box domain.BoundingBox) ([]domain.Sample, error) {
	key := fmt.Sprintf("%.3f,%.3f,%.3f,%.3f|%s",
		box.LatMin, box.LatMax, box.LonMin, box.LonMax,
		c.now().UTC().Format("2006-01-02"),
	)
	if samples, ok := c.cache.get(key); ok {
		c.countCache("hit")
		return samples, nil
	}
	c.countCache("miss")

	samples, err := c.inner.FetchSamples(ctx, box)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so transient gaps can be retried.
	if len(samples) > 0 {
		c.cache.put(key, samples)
	}
	return samples, nil
}

// FetchPoint resolves a point from a cached window around it.
func (c *CachedSource) FetchPoint(ctx context.Context, lat, lon float64) (float64, error) {
	samples, err := c.FetchSamples(ctx, domain.PointBox(lat, lon, pointWindowDeg))
	if err != nil {
		return 0, err
	}
	return nearestValue(lat, lon, samples)
}

func (c *CachedSource) countCache(result string) {
	if c.metrics != nil {
		c.metrics.SatelliteCache.WithLabelValues(c.fieldName, result).Inc()
	}
}

// lruCache is a simple thread-safe LRU cache for sample sets.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.Sample
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.Sample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
