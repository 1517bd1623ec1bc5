package router

import (
	"container/list"
	"sync"
)

type cachedResponse struct {
	output string
	target Target
}

type cacheItem struct {
	key   string
	value cachedResponse
}

// responseCache is a thread-safe bounded LRU table for idempotent
// generation results. Both lookup and store promote the entry; eviction
// always removes the least recently used entry.
type responseCache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	lru     *list.List
	maxSize int
}

func newResponseCache(maxSize int) *responseCache {
	if maxSize <= 0 {
		maxSize = 128
	}
	return &responseCache{
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

func (c *responseCache) Get(key string) (cachedResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		return cachedResponse{}, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheItem).value, true
}

func (c *responseCache) Set(key string, value cachedResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheItem).value = value
		return
	}

	elem := c.lru.PushFront(&cacheItem{key: key, value: value})
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		c.evictOldest()
	}
}

func (c *responseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *responseCache) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	c.lru.Remove(elem)
	delete(c.items, elem.Value.(*cacheItem).key)
}
