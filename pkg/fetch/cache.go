/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc produces the value for a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

type cacheEntry struct {
	value   []byte
	expires time.Time
}

// Cache is an expiring response cache. At most one fetch per key is in flight;
// failed fetches leave no entry behind. Returned slices are shared between
// callers and must not be modified.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
	clock   Clock
}

func NewCache(clock Clock) *Cache {
	if clock == nil {
		clock = realClock{}
	}

	return &Cache{
		entries: make(map[string]cacheEntry),
		clock:   clock,
	}
}

// GetOrFetch returns the live entry for key or runs fetch and stores its result
// for ttl. A non-positive ttl still dedups concurrent callers but stores nothing.
//
// The shared fetch runs detached from any one caller's cancellation; fetch is
// expected to bound itself with a request timeout. A cancelled caller stops
// waiting and gets ctx.Err() while the flight completes for the others.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	if value, ok := c.lookup(key); ok {
		return value, nil
	}

	flightCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Double-check in case a flight for this key finished since the lookup above
		if value, ok := c.lookup(key); ok {
			return value, nil
		}

		value, err := fetch(flightCtx)
		if err != nil {
			return nil, err
		}

		c.store(key, value, ttl)

		return value, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.([]byte), nil
	}
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.clock.Now().Before(entry.expires) {
		return nil, false
	}

	return entry.value, true
}

func (c *Cache) store(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{value: value, expires: c.clock.Now().Add(ttl)}
}

// Invalidate drops the entry for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Purge drops expired entries and returns how many remain.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
		}
	}

	return len(c.entries)
}

// Len counts stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
