package cache

import "sync"

// Cache is a thread-safe LRU cache with a hard capacity and entry pinning.
// When an insert would exceed capacity, the least recently used unpinned
// entry is evicted. Pinned entries are never evicted; if every entry is
// pinned the cache grows past capacity rather than dropping live data.
//
// All operations hold the cache lock for their full duration, so a reader
// can never observe a partially evicted entry.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[K, V]
	order    *lruList[K]
	capacity int
	onEvict  func(K, V)
}

type entry[K comparable, V any] struct {
	value  V
	node   *lruNode[K]
	pinned bool
}

// New creates a cache holding at most capacity entries. A capacity of 0 or
// less means unlimited. onEvict, if non-nil, is called for each evicted
// entry while the cache lock is held; it must not call back into the cache.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*entry[K, V]),
		order:    newLRUList[K](),
		capacity: capacity,
		onEvict:  onEvict,
	}
}

// Get retrieves a value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(e.node)
	return e.value, true
}

// Set stores a value, evicting the least recently used unpinned entry if
// the capacity would be exceeded.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.order.MoveToFront(e.node)
		return
	}

	c.entries[key] = &entry[K, V]{
		value: value,
		node:  c.order.PushFront(key),
	}
	if c.capacity > 0 && len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the least recently used unpinned entry.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictOldest() {
	for node := c.order.tail; node != nil; node = node.prev {
		e := c.entries[node.key]
		if e.pinned {
			continue
		}
		c.order.Remove(node)
		delete(c.entries, node.key)
		if c.onEvict != nil {
			c.onEvict(node.key, e.value)
		}
		return
	}
}

// Pin marks the entry as non-evictable. Pinning a missing key is a no-op.
func (c *Cache[K, V]) Pin(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.pinned = true
	}
}

// Unpin makes the entry evictable again.
func (c *Cache[K, V]) Unpin(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.pinned = false
	}
}

// UnpinAll makes every entry evictable.
func (c *Cache[K, V]) UnpinAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.pinned = false
	}
}

// Delete removes an entry without invoking the eviction callback.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.order.Remove(e.node)
		delete(c.entries, key)
	}
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes all entries without invoking the eviction callback.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*entry[K, V])
	c.order.Clear()
}
