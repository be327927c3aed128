// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/core/requests"
)

// TagPageRevalidate is how long generated tag page props stay fresh.
const TagPageRevalidate = time.Hour

// Keyword lookup outcomes, as logged by GetTagStaticProps.
const (
	KeywordResolved = "resolved"
	KeywordNotFound = "not_found"
	KeywordFailed   = "failed"
)

var errNoKeywordFetcher = errors.New("no keyword fetcher configured")

// TagPageProps are the generated inputs of a tag page.
type TagPageProps struct {
	Tag string
	// InitialData is nil when the tag has no keyword or the fetch failed.
	InitialData *Keyword
}

// StaticProps are generated props plus how long they stay fresh.
type StaticProps struct {
	Props      TagPageProps
	Revalidate time.Duration
}

// StaticPaths lists the routes generated ahead of time.
type StaticPaths struct {
	Paths []string
	// Fallback means routes outside Paths are generated on first request.
	Fallback bool
}

// KeywordFetcher fetches the keyword record of a tag.
type KeywordFetcher func(ctx context.Context, tag string) (*Keyword, error)

// KeywordFetcherFor returns a KeywordFetcher backed by client.
func KeywordFetcherFor(client *requests.Client) KeywordFetcher {
	return func(ctx context.Context, tag string) (*Keyword, error) {
		return FetchKeyword(ctx, client, tag)
	}
}

// GetTagStaticProps generates the props of the tag page for tag.
//
// It never fails: a missing keyword or any fetch error yields nil InitialData.
// Revalidate is always TagPageRevalidate.
func GetTagStaticProps(ctx context.Context, fetch KeywordFetcher, tag string) StaticProps {
	props := StaticProps{
		Props:      TagPageProps{Tag: tag},
		Revalidate: TagPageRevalidate,
	}

	var (
		keyword *Keyword
		err     error
	)

	if fetch == nil {
		err = errNoKeywordFetcher
	} else {
		keyword, err = fetch(ctx, tag)
	}

	outcome := KeywordResolved
	level := zerolog.DebugLevel

	switch {
	case errors.Is(err, ErrKeywordNotFound), err == nil && keyword == nil:
		outcome = KeywordNotFound
	case err != nil:
		outcome = KeywordFailed
		level = zerolog.WarnLevel

		if requests.IsContextCanceled(err) {
			level = zerolog.DebugLevel
		}
	default:
		props.Props.InitialData = keyword
	}

	log.WithLevel(level).
		Err(err).
		Str("tag", tag).
		Str("outcome", outcome).
		Msg("Generated tag page props")

	return props
}

// GetTagStaticPaths reports that no tag pages are generated ahead of time.
func GetTagStaticPaths() StaticPaths {
	return StaticPaths{Paths: nil, Fallback: true}
}
