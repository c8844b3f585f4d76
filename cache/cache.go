// Copyright 2025 kenvexar
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package cache provides the fingerprint cache that maps a content
// fingerprint to a previously computed enrichment result.
//
// Re-submission of identical content (duplicate chat events, re-posting,
// retries from the chat layer) must not re-spend the scarce AI rate-limit
// budget, so enrichment results are kept for a bounded TTL with
// least-recently-used eviction once capacity is reached.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// DefaultCapacity is the default maximum number of cached entries.
const DefaultCapacity = 1024

// DefaultTTL is the default lifetime of a cached enrichment result.
const DefaultTTL = 24 * time.Hour

type entry struct {
	fingerprint core.Fingerprint
	result      *core.EnrichmentResult
	expiresAt   time.Time
}

// Cache is a capacity-bounded fingerprint -> enrichment result store
// with TTL expiry and LRU eviction. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // Front is most recently used
	entries  map[core.Fingerprint]*list.Element
	now      func() time.Time
}

// New creates a cache with the given capacity and entry TTL.
// Non-positive arguments fall back to the defaults.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		entries:  make(map[core.Fingerprint]*list.Element),
		now:      time.Now,
	}
}

// Get returns the cached result for a fingerprint. Absence is reported
// through the boolean, never through an error, and Get never blocks on
// anything but the cache's own mutex. A hit refreshes recency but not
// the entry's TTL.
func (c *Cache) Get(fingerprint core.Fingerprint) (*core.EnrichmentResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}

	ent := elem.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.order.Remove(elem)
		delete(c.entries, fingerprint)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return ent.result, true
}

// Put stores a result under a fingerprint with the cache's TTL.
// An existing entry for the same fingerprint is replaced; a re-enrichment
// may overwrite the cache entry but never an already persisted note.
func (c *Cache) Put(fingerprint core.Fingerprint, result *core.EnrichmentResult) {
	if result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[fingerprint]; ok {
		ent := elem.Value.(*entry)
		ent.result = result
		ent.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).fingerprint)
	}

	c.entries[fingerprint] = c.order.PushFront(&entry{
		fingerprint: fingerprint,
		result:      result,
		expiresAt:   c.now().Add(c.ttl),
	})
}

// Len returns the number of entries currently held, including entries
// that have expired but not yet been observed by a Get.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge removes all entries and returns how many were dropped.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.order.Len()
	c.order.Init()
	c.entries = make(map[core.Fingerprint]*list.Element)
	return n
}
