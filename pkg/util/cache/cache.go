// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package cache provides the process-wide TTL caches.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultExpire = 5 * time.Minute
	defaultPurge  = 30 * time.Second
)

// Cache provides an in-memory key:value store for the lifetime of the process.
var Cache = gocache.New(defaultExpire, defaultPurge)

// BuildKey joins path elements into a cache key namespace.
func BuildKey(elems ...string) string {
	return strings.Join(elems, "/")
}

// BoundedTTL is a TTL cache with a hard capacity; inserting beyond capacity
// evicts the entry closest to expiry. Used for control-command overrides.
type BoundedTTL struct {
	mu       sync.Mutex
	inner    *gocache.Cache
	capacity int
}

// NewBoundedTTL returns a cache whose entries live for ttl and whose size
// never exceeds capacity.
func NewBoundedTTL(ttl time.Duration, capacity int) *BoundedTTL {
	return &BoundedTTL{
		inner:    gocache.New(ttl, ttl/2+time.Second),
		capacity: capacity,
	}
}

// Set inserts or refreshes an entry with the cache default TTL.
func (c *BoundedTTL) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.inner.Get(key); !ok && c.inner.ItemCount() >= c.capacity {
		c.evictOldest()
	}
	c.inner.SetDefault(key, value)
}

// Get returns the live entry for key, if any.
func (c *BoundedTTL) Get(key string) (interface{}, bool) {
	return c.inner.Get(key)
}

// Delete removes an entry.
func (c *BoundedTTL) Delete(key string) {
	c.inner.Delete(key)
}

// Flush drops every entry.
func (c *BoundedTTL) Flush() {
	c.inner.Flush()
}

// Len returns the number of live entries.
func (c *BoundedTTL) Len() int {
	c.inner.DeleteExpired()
	return c.inner.ItemCount()
}

func (c *BoundedTTL) evictOldest() {
	c.inner.DeleteExpired()
	if c.inner.ItemCount() < c.capacity {
		return
	}
	items := c.inner.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return items[keys[i]].Expiration < items[keys[j]].Expiration
	})
	if len(keys) > 0 {
		c.inner.Delete(keys[0])
	}
}
