// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"hash/fnv"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// cacheKeySeparator joins query key parts. Invalidation matches on whole parts.
const cacheKeySeparator = "|"

// joinKey escapes every part before joining, so a separator inside a tag or
// cursor cannot shift part boundaries.
func joinKey(parts []string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = url.PathEscape(part)
	}

	return strings.Join(escaped, cacheKeySeparator) + cacheKeySeparator
}

// generateCacheKey binds a cached response to both the query key and the full
// upstream token.
//
// The query key already carries the viewer ID, but that ID comes from a cookie. Hashing
// the entire token alongside it keeps responses scoped to the exact session that
// requested them, so a forged viewer ID cannot read another viewer's cached data.
func generateCacheKey(key []string, userToken string) string {
	hasher := fnv.New32()

	_, _ = hasher.Write([]byte(userToken))

	return joinKey(key) + "#" + strconv.FormatUint(uint64(hasher.Sum32()), 16)
}

// cachePolicy defines the caching behavior for a request.
type cachePolicy struct {
	key string

	// Whether to store an OK response.
	store bool

	// The cached data if available and fresh.
	cached []byte
}

// determineCachePolicy returns whether a cached response is available and whether
// a new response should be stored.
func (c *Client) determineCachePolicy(opts RequestOptions) cachePolicy {
	if c.Cache == nil || len(opts.CacheKey) == 0 {
		return cachePolicy{}
	}

	// Honor "no-cache" directive from the downstream client: skip both read and write.
	lowerCacheControl := strings.ToLower(opts.IncomingHeaders.Get("Cache-Control"))
	if strings.Contains(lowerCacheControl, "no-cache") {
		return cachePolicy{}
	}

	key := generateCacheKey(opts.CacheKey, opts.Token)

	if data, found := c.Cache.Get(key); found {
		return cachePolicy{key: key, cached: data}
	}

	return cachePolicy{
		key:   key,
		store: !strings.Contains(lowerCacheControl, "no-store"),
	}
}

// Invalidate removes every cached response whose query key starts with one of prefixes.
//
// Prefixes are matched part by part, so ["tagFeed", "u1"] removes every tag feed
// cached for viewer u1 regardless of tag or session. Safe to call with caching disabled.
func (c *Client) Invalidate(prefixes ...[]string) int {
	if c.Cache == nil || len(prefixes) == 0 {
		return 0
	}

	joined := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		joined = append(joined, joinKey(prefix))
	}

	removed := c.Cache.RemoveFunc(func(key string) bool {
		for _, prefix := range joined {
			if strings.HasPrefix(key, prefix) {
				return true
			}
		}

		return false
	})

	log.Debug().
		Int("count", removed).
		Strs("prefixes", joined).
		Msg("Invalidated cached responses")

	return removed
}
