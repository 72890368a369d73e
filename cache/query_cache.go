// Package cache implements the prepared-query cache: a memoisation of
// (statement, cardinality, output_format) onto the query's codecs, shared
// by every connection using the same process-wide store.
package cache

import (
	"sync"

	"github.com/nsidnev/edgedb-go/codecs"
	"github.com/nsidnev/edgedb-go/edgedb"
)

// Entry pairs a PreparedQuery with the codecs the factory built for its
// input/output type ids the last time they were seen.
type Entry struct {
	Query  edgedb.PreparedQuery
	Input  codecs.Codec
	Output codecs.Codec
}

type key struct {
	statement string
	card      edgedb.Cardinality
	format    edgedb.OutputFormat
}

// QueryCache memoises prepared statements. Entries are immutable once
// inserted; concurrent Add calls for the same key are last-writer-wins,
// which is safe because two codecs built for the same type id are
// behaviourally identical by construction.
type QueryCache struct {
	mu sync.RWMutex
	m  map[key]*Entry
}

// New returns an empty QueryCache.
func New() *QueryCache {
	return &QueryCache{m: make(map[key]*Entry)}
}

// Get returns the cached entry for (statement, cardinality, format), if
// any statement with that exact triple has been prepared before.
func (c *QueryCache) Get(statement string, card edgedb.Cardinality, format edgedb.OutputFormat) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[key{statement, card, format}]
	return e, ok
}

// Add inserts or overwrites the entry for its query's key.
func (c *QueryCache) Add(e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key{e.Query.Statement, e.Query.Cardinality, e.Query.OutputFormat}
	c.m[k] = e
}

// Clear drops the cached entry for a query, e.g. after the server reports
// its descriptors are stale during optimistic_execute and a plain execute
// has repaired it under (possibly) different codecs.
func (c *QueryCache) Clear(statement string, card edgedb.Cardinality, format edgedb.OutputFormat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key{statement, card, format})
}

// Len reports how many statements are currently cached.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
