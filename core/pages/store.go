// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package pages keeps generated page data and regenerates it in the background.

A page is generated on its first request and kept in a compressed LRU cache.
Requests within the revalidate interval get the stored value. Later requests
still get the stored value, but trigger one background regeneration. A request
for a page that was never generated gets either nothing (fallback) or waits for
generation (blocking), depending on the Store mode.

Concurrent generations of the same key are coalesced.
*/
package pages

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"codeberg.org/dailyfe/dailyfe/core/requests/lrucache"
)

// Status tells how a Load was served.
type Status string

const (
	// StatusFresh is a stored value within its revalidate interval.
	StatusFresh Status = "fresh"
	// StatusStale is a stored value past its interval. A regeneration was started.
	StatusStale Status = "stale"
	// StatusFallback means there is no value yet. A generation was started.
	StatusFallback Status = "fallback"
	// StatusGenerated is a value generated while the request waited.
	StatusGenerated Status = "generated"
)

// Page is generated page data plus how long it stays fresh.
type Page[T any] struct {
	Value      T
	Revalidate time.Duration
}

// Generator produces the page for a key.
type Generator[T any] func(ctx context.Context) (Page[T], error)

// Options configure a Store.
type Options struct {
	// Size is the maximum number of stored pages.
	Size int
	// Compress enables zstd compression of stored pages.
	Compress bool
	// Blocking makes Load wait for the first generation instead of falling back.
	Blocking bool
	// GenerateTimeout bounds background generations.
	GenerateTimeout time.Duration
}

// entry is the gob-encoded form of a stored page.
type entry[T any] struct {
	Value       T
	GeneratedAt time.Time
	Revalidate  time.Duration
}

// Store holds generated pages of type T. It is safe for concurrent use.
type Store[T any] struct {
	cache           *lrucache.Cache
	group           singleflight.Group
	blocking        bool
	generateTimeout time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Store.
func New[T any](opts Options) (*Store[T], error) {
	cache, err := lrucache.New(opts.Size, opts.Compress)
	if err != nil {
		return nil, fmt.Errorf("failed to create page cache: %w", err)
	}

	return &Store[T]{
		cache:           cache,
		blocking:        opts.Blocking,
		generateTimeout: opts.GenerateTimeout,
		now:             time.Now,
	}, nil
}

// Load returns the page for key, generating it with gen as needed.
//
// With StatusFallback the returned value is the zero T. An error is only
// returned by blocking generations.
func (s *Store[T]) Load(ctx context.Context, key string, gen Generator[T]) (T, Status, error) {
	if stored, ok := s.lookup(key); ok {
		if s.now().Before(stored.GeneratedAt.Add(stored.Revalidate)) {
			return stored.Value, StatusFresh, nil
		}

		s.regenerate(ctx, key, gen)

		return stored.Value, StatusStale, nil
	}

	if !s.blocking {
		s.regenerate(ctx, key, gen)

		var zero T

		return zero, StatusFallback, nil
	}

	value, err := s.Generate(ctx, key, gen)
	if err != nil {
		var zero T

		return zero, StatusGenerated, err
	}

	return value, StatusGenerated, nil
}

// Generate generates and stores the page for key, joining a generation already in flight.
//
// It returns when the generation finishes or ctx is done, whichever comes first.
// A canceled wait does not cancel the generation.
func (s *Store[T]) Generate(ctx context.Context, key string, gen Generator[T]) (T, error) {
	var zero T

	select {
	case res := <-s.start(ctx, key, gen):
		if res.Err != nil {
			return zero, res.Err
		}

		value, ok := res.Val.(T)
		if !ok {
			return zero, errUnexpectedResult
		}

		return value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

var errUnexpectedResult = errors.New("page generation returned an unexpected type")

// regenerate starts a background generation for key.
func (s *Store[T]) regenerate(ctx context.Context, key string, gen Generator[T]) {
	ch := s.start(ctx, key, gen)

	go func() {
		if res := <-ch; res.Err != nil {
			log.Warn().
				Err(res.Err).
				Str("key", key).
				Msg("Background page generation failed")
		}
	}()
}

// start runs gen once per key at a time. The generation outlives ctx but keeps its values.
func (s *Store[T]) start(ctx context.Context, key string, gen Generator[T]) <-chan singleflight.Result {
	detached := context.WithoutCancel(ctx)

	return s.group.DoChan(key, func() (any, error) {
		genCtx := detached

		if s.generateTimeout > 0 {
			var cancel context.CancelFunc

			genCtx, cancel = context.WithTimeout(detached, s.generateTimeout)
			defer cancel()
		}

		started := s.now()

		page, err := gen(genCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate page %q: %w", key, err)
		}

		if err := s.store(key, page, started); err != nil {
			log.Warn().
				Err(err).
				Str("key", key).
				Msg("Failed to store generated page")
		}

		log.Debug().
			Str("key", key).
			Dur("revalidate", page.Revalidate).
			Dur("took", s.now().Sub(started)).
			Msg("Generated page")

		return page.Value, nil
	})
}

func (s *Store[T]) store(key string, page Page[T], generatedAt time.Time) error {
	var buf bytes.Buffer

	if err := gob.NewEncoder(&buf).Encode(entry[T]{
		Value:       page.Value,
		GeneratedAt: generatedAt,
		Revalidate:  page.Revalidate,
	}); err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}

	s.cache.Set(key, buf.Bytes(), 0)

	return nil
}

func (s *Store[T]) lookup(key string) (entry[T], bool) {
	var stored entry[T]

	raw, ok := s.cache.Get(key)
	if !ok {
		return stored, false
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&stored); err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("Failed to decode stored page; removing")

		s.cache.Remove(key)

		return stored, false
	}

	return stored, true
}
