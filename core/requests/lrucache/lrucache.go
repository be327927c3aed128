// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache provides a thread-safe, fixed-capacity least-recently-used (LRU) cache
of byte slices with per-entry expiry.

Keys are strings. The cache evicts the least recently used entry when it reaches capacity,
and treats entries past their expiry as absent. When created with compression enabled via
[New], values are stored zstd-compressed whenever that saves space and are transparently
decompressed by [Cache.Get].
*/
package lrucache

import (
	"container/list"
	"errors"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// Cache is a fixed-capacity, least-recently-used cache that is safe for concurrent use.
// Instances must be constructed with [New]; the zero value is not ready for use.
type Cache struct {
	size      int                      // Maximum capacity of the cache (number of entries)
	evictList *list.List               // Front is the most recently used entry
	items     map[string]*list.Element // Maps keys to their linked-list elements
	lock      sync.Mutex
	zstdEnc   *zstd.Encoder // nil when compression is disabled
	zstdDec   *zstd.Decoder

	// now is replaceable in tests.
	now func() time.Time
}

type cacheEntry struct {
	key        string
	value      []byte
	compressed bool
	expiresAt  time.Time // zero means no expiry
}

// New creates a new cache holding at most size entries.
//
// It returns an error if size is not a positive integer.
func New(size int, compress bool) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c := &Cache{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
		now:       time.Now,
	}

	if compress {
		// A nil writer/reader lets us use EncodeAll/DecodeAll without streams.
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.zstdEnc = enc
		c.zstdDec = dec
	}

	return c, nil
}

// Set adds or replaces the value for key. A non-positive ttl means the entry never expires.
//
// The entry becomes the most recently used. If the cache is over capacity afterwards,
// the least recently used entry is evicted, and Set reports true.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) bool {
	stored, compressed := c.prepareValue(value)

	c.lock.Lock()
	defer c.lock.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)

		entry := ent.Value.(*cacheEntry) //nolint:forcetypeassert // only *cacheEntry is ever stored
		entry.value = stored
		entry.compressed = compressed
		entry.expiresAt = expiresAt

		return false
	}

	c.items[key] = c.evictList.PushFront(&cacheEntry{
		key:        key,
		value:      stored,
		compressed: compressed,
		expiresAt:  expiresAt,
	})

	if c.evictList.Len() <= c.size {
		return false
	}

	if oldest := c.evictList.Back(); oldest != nil {
		c.removeElement(oldest)
	}

	return true
}

// Get returns a copy of the value for key and marks it as most recently used.
//
// Expired entries are removed and reported as missing.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.lock.Lock()

	ent, ok := c.items[key]
	if !ok {
		c.lock.Unlock()

		return nil, false
	}

	entry := ent.Value.(*cacheEntry) //nolint:forcetypeassert // only *cacheEntry is ever stored

	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.removeElement(ent)
		c.lock.Unlock()

		return nil, false
	}

	c.evictList.MoveToFront(ent)

	// Stored slices are never mutated in place, so they can be read after unlocking.
	stored, compressed := entry.value, entry.compressed

	c.lock.Unlock()

	return c.realizeValue(stored, compressed)
}

// Remove deletes the entry for key, reporting whether it was present.
func (c *Cache) Remove(key string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)

		return true
	}

	return false
}

// RemoveFunc deletes every entry whose key satisfies match and returns the number removed.
func (c *Cache) RemoveFunc(match func(key string) bool) int {
	c.lock.Lock()
	defer c.lock.Unlock()

	removed := 0

	for ent := c.evictList.Back(); ent != nil; {
		prev := ent.Prev()

		if match(ent.Value.(*cacheEntry).key) { //nolint:forcetypeassert // only *cacheEntry is ever stored
			c.removeElement(ent)

			removed++
		}

		ent = prev
	}

	return removed
}

// Len returns the current number of entries, expired ones included.
func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.evictList.Len()
}

// removeElement must be called with the lock held.
func (c *Cache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	delete(c.items, e.Value.(*cacheEntry).key) //nolint:forcetypeassert // only *cacheEntry is ever stored
}

// prepareValue returns the bytes to store, compressed if that is enabled and saves space.
// Uncompressed values are copied so callers cannot mutate the cache.
//
// Safe to call without the lock: zstd.Encoder supports concurrent EncodeAll calls.
func (c *Cache) prepareValue(value []byte) ([]byte, bool) {
	if len(value) == 0 {
		return []byte{}, false
	}

	if c.zstdEnc != nil {
		if compressed := c.zstdEnc.EncodeAll(value, nil); len(compressed) < len(value) {
			return compressed, true
		}
	}

	copied := make([]byte, len(value))
	copy(copied, value)

	return copied, false
}

// realizeValue returns a caller-owned copy of a stored value.
// A value that fails to decompress is reported as missing.
func (c *Cache) realizeValue(stored []byte, compressed bool) ([]byte, bool) {
	if !compressed {
		copied := make([]byte, len(stored))
		copy(copied, stored)

		return copied, true
	}

	if c.zstdDec == nil {
		return nil, false
	}

	decoded, err := c.zstdDec.DecodeAll(stored, nil)
	if err != nil {
		return nil, false
	}

	return decoded, true
}
