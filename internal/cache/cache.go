package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded in-memory store for fetched text and rendered HTML.
// Entries carry a per-entry TTL; inserts evict expired entries first, then
// least-recently-used entries, until both the item count and the total byte
// budget hold. Operations never fail: a miss simply reads as absent.
type Cache struct {
	mu         sync.Mutex
	maxItems   int
	maxBytes   int64
	defaultTTL time.Duration

	ll    *list.List // front = most recently used
	items map[string]*list.Element
	bytes int64

	// now is swappable for expiry tests.
	now func() time.Time
}

type entry struct {
	key       string
	value     string
	size      int64
	expiresAt time.Time
}

// New creates a Cache with the given item count budget, byte budget, and
// default TTL. Budgets must be positive.
func New(maxItems int, maxBytes int64, defaultTTL time.Duration) *Cache {
	if maxItems < 1 {
		panic("cache: maxItems must be >= 1")
	}
	if maxBytes < 1 {
		panic("cache: maxBytes must be >= 1")
	}
	return &Cache{
		maxItems:   maxItems,
		maxBytes:   maxBytes,
		defaultTTL: defaultTTL,
		ll:         list.New(),
		items:      make(map[string]*list.Element, maxItems),
		now:        time.Now,
	}
}

// Has reports whether an unexpired entry exists for key. It does not refresh
// LRU recency; existence probes must not reorder the cache.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, ok := c.items[key]
	if !ok {
		return false
	}
	if c.expired(ele.Value.(*entry)) {
		c.removeElement(ele)
		return false
	}
	return true
}

// Get returns the cached value if present and unexpired, refreshing its
// recency. Expired entries read as absent and are removed lazily.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, ok := c.items[key]
	if !ok {
		return "", false
	}
	ent := ele.Value.(*entry)
	if c.expired(ent) {
		c.removeElement(ele)
		return "", false
	}
	c.ll.MoveToFront(ele)
	return ent.value, true
}

// Set inserts or replaces an entry with the default TTL.
func (c *Cache) Set(key, value string) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL inserts or replaces an entry with an explicit TTL, stamping the
// current time and the byte size of value. Eviction runs until the budgets
// hold; the inserted entry itself is never evicted, so a single value larger
// than the byte budget is stored after everything else is pushed out.
func (c *Cache) SetTTL(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := int64(len(value))
	expiresAt := c.now().Add(ttl)

	if ele, ok := c.items[key]; ok {
		ent := ele.Value.(*entry)
		c.bytes += size - ent.size
		ent.value = value
		ent.size = size
		ent.expiresAt = expiresAt
		c.ll.MoveToFront(ele)
		c.evict(ele)
		return
	}

	ele := c.ll.PushFront(&entry{key: key, value: value, size: size, expiresAt: expiresAt})
	c.items[key] = ele
	c.bytes += size
	c.evict(ele)
}

// Remove deletes an entry if present.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.items[key]; ok {
		c.removeElement(ele)
	}
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.maxItems)
	c.bytes = 0
}

// Len returns the current number of entries, expired ones included until
// they are lazily collected.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Bytes returns the total resident byte size across all entries.
func (c *Cache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

func (c *Cache) expired(ent *entry) bool {
	return c.now().After(ent.expiresAt)
}

// evict restores the budgets after an insert. Expired entries go first;
// after that the least-recently-used entry is dropped from the back of the
// list. keep (the just-inserted element) is exempt, which makes the
// oversized-single-value case deterministic: the value stays, alone.
func (c *Cache) evict(keep *list.Element) {
	if !c.overBudget() {
		return
	}

	// Expired first, regardless of recency.
	for ele := c.ll.Back(); ele != nil && c.overBudget(); {
		prev := ele.Prev()
		if ele != keep && c.expired(ele.Value.(*entry)) {
			c.removeElement(ele)
		}
		ele = prev
	}

	// Then strict LRU from the back.
	for c.overBudget() {
		ele := c.ll.Back()
		if ele == nil || ele == keep {
			return
		}
		c.removeElement(ele)
	}
}

func (c *Cache) overBudget() bool {
	return c.ll.Len() > c.maxItems || c.bytes > c.maxBytes
}

func (c *Cache) removeElement(ele *list.Element) {
	ent := ele.Value.(*entry)
	c.ll.Remove(ele)
	delete(c.items, ent.key)
	c.bytes -= ent.size
}
