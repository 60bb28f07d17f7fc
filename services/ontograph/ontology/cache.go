// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ontology

import (
	"container/list"
	"slices"
	"sync"
	"sync/atomic"
)

// DefaultCacheSize is the number of closure results kept when no size is
// configured.
const DefaultCacheSize = 256

// CacheStats describes closure cache effectiveness.
type CacheStats struct {
	Entries   int
	Capacity  int
	Hits      int64
	Misses    int64
	Evictions int64
}

// closureCache is a fixed-size LRU of term -> sorted entity list.
//
// Description:
//
//	Backs transitive AnnotatedEntities. Values are copied on the way in
//	and out so callers can never mutate a cached slice. Front of the list
//	is the most recently used entry.
//
// Thread Safety: All methods are safe for concurrent use.
type closureCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type closureEntry struct {
	term     string
	entities []string
}

func newClosureCache(capacity int) *closureCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &closureCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *closureCache) get(term string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[term]; ok {
		c.order.MoveToFront(elem)
		c.hits.Add(1)
		return slices.Clone(elem.Value.(*closureEntry).entities), true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *closureCache) put(term string, entities []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[term]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*closureEntry).entities = slices.Clone(entities)
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*closureEntry).term)
			c.evictions.Add(1)
		}
	}
	c.items[term] = c.order.PushFront(&closureEntry{term: term, entities: slices.Clone(entities)})
}

// purge drops every entry. Counters are kept; they describe the cache's
// lifetime, not its current contents.
func (c *closureCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

func (c *closureCache) stats() CacheStats {
	c.mu.Lock()
	n := c.order.Len()
	c.mu.Unlock()
	return CacheStats{
		Entries:   n,
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
