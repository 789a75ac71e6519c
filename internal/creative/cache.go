package creative

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// responseCache is an LRU cache with TTL for provider responses. Events
// with identical content (think retry loops hammering the same failing
// command) hit the cache instead of the API.
type responseCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	items      map[string]*list.Element
	evictList  *list.List
}

type cacheEntry struct {
	key       string
	value     *Response
	expiresAt time.Time
}

func newResponseCache(maxEntries int, ttl time.Duration) *responseCache {
	return &responseCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		items:      make(map[string]*list.Element),
		evictList:  list.New(),
	}
}

// Get retrieves a non-expired response, promoting it to most recently
// used.
func (c *responseCache) Get(key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	ent := elem.Value.(*cacheEntry)
	if time.Now().After(ent.expiresAt) {
		c.removeElement(elem)
		return nil, false
	}

	c.evictList.MoveToFront(elem)
	return ent.value, true
}

// Set adds a response, evicting the least recently used entries past
// capacity.
func (c *responseCache) Set(key string, value *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.evictList.MoveToFront(elem)
		ent := elem.Value.(*cacheEntry)
		ent.value = value
		ent.expiresAt = time.Now().Add(c.ttl)
		return
	}

	ent := &cacheEntry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.items[key] = c.evictList.PushFront(ent)

	for c.evictList.Len() > c.maxEntries {
		if oldest := c.evictList.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Len returns the current number of entries.
func (c *responseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *responseCache) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	ent := elem.Value.(*cacheEntry)
	delete(c.items, ent.key)
}

// hashKey creates a cache key from arbitrary data by hashing it.
func hashKey(data ...interface{}) string {
	h := sha256.New()
	for _, d := range data {
		b, _ := json.Marshal(d)
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
