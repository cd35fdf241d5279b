// Package cache implements the response cache consulted before any routing
// or budget decision.
//
// DESIGN: Keys are a coarse fingerprint of (agent, prompt prefix, task type).
// Two similar-but-not-identical prompts sharing a prefix collide on purpose;
// hit rate matters more than precision here. A hit is always cost-free and
// always preferred. The cache is bounded with LRU eviction so a long-lived
// process can't grow it without limit.
package cache

import (
	"container/list"
	"fmt"
	"sync"
)

// KeyPrefixLen is how much of the prompt participates in the key.
const KeyPrefixLen = 100

// Entry is a cached reasoning response.
type Entry struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Key builds the composite cache key for a call.
func Key(agent, prompt, taskType string) string {
	prefix := prompt
	if len(prefix) > KeyPrefixLen {
		prefix = prefix[:KeyPrefixLen]
	}
	return fmt.Sprintf("%s|%s|%s", agent, prefix, taskType)
}

// ResponseCache is a bounded LRU map of cache key to response entry.
// Safe for concurrent use.
type ResponseCache struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List // front = most recently used
	entries    map[string]*list.Element
}

type lruItem struct {
	key   string
	entry Entry
}

// New creates a response cache holding at most maxEntries entries.
// maxEntries <= 0 means unbounded.
func New(maxEntries int) *ResponseCache {
	return &ResponseCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Get returns the cached entry for key, if present.
func (c *ResponseCache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruItem).entry, true
}

// Put stores an entry, evicting the least recently used entry if the cache
// is full. Writing the same key twice is harmless.
func (c *ResponseCache) Put(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*lruItem).entry = entry
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(&lruItem{key: key, entry: entry})

	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*lruItem).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Reset clears all entries. Admin operation only.
func (c *ResponseCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}
