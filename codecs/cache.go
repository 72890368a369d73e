package codecs

import "sync"

// Cache is a concurrent-safe codec cache keyed by the server's 16-byte type
// id. A single Cache is shared by every prepared query on a connection, and
// outlives any one of them: the server reuses type ids across statements,
// so a codec built for one query's output type is very often exactly the
// codec a later query needs too.
type Cache struct {
	mu sync.RWMutex
	m  map[TypeID]Codec
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{m: make(map[TypeID]Codec)}
}

// Get returns the codec registered for id, if any.
func (c *Cache) Get(id TypeID) (Codec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[id]
	return v, ok
}

// Put registers c under id. Re-registering the same id with an equivalent
// codec is harmless; the factory is idempotent by construction.
func (c *Cache) Put(id TypeID, codec Codec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[id] = codec
}

// Len reports how many codecs are currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
