// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/dailyfe/dailyfe/assets/components/partials"
	"codeberg.org/dailyfe/dailyfe/assets/views"
	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core"
	"codeberg.org/dailyfe/dailyfe/core/pages"
	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/core/tagpage"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// TagPages holds the generated props of tag pages. Set by Setup.
var TagPages *pages.Store[core.StaticProps]

// Setup creates the page store from config.Global and the generated tag
// paths, then generates the listed paths.
func Setup() error {
	return setupPages(context.Background(), core.GetTagStaticPaths())
}

func setupPages(ctx context.Context, paths core.StaticPaths) error {
	blocking := blockingFallback(paths, config.Global.Pages.Fallback)

	store, err := pages.New[core.StaticProps](pages.Options{
		Size:            config.Global.Pages.Size,
		Compress:        config.Global.Cache.Compress,
		Blocking:        blocking,
		GenerateTimeout: config.Global.Pages.GenerateTimeout,
	})
	if err != nil {
		return err
	}

	TagPages = store

	log.Info().
		Int("size", config.Global.Pages.Size).
		Bool("blocking", blocking).
		Int("paths", len(paths.Paths)).
		Msg("Initialized page store")

	pregenerate(ctx, requests.Default, paths.Paths)

	return nil
}

// blockingFallback decides whether a request for an ungenerated page waits
// for it. pages.fallback overrides the generated paths when set. Paths
// without a fallback serve nothing before generation, which is blocking here.
func blockingFallback(paths core.StaticPaths, mode config.FallbackMode) bool {
	switch mode {
	case config.FallbackTrue:
		return false
	case config.FallbackBlocking:
		return true
	}

	return !paths.Fallback
}

// pregenerate fills TagPages with the tag pages at paths. Each page gets
// pages.generateTimeout.
func pregenerate(ctx context.Context, client *requests.Client, paths []string) {
	for _, path := range paths {
		escaped, ok := strings.CutPrefix(path, partials.TagPath(""))

		tag, err := url.PathUnescape(escaped)
		if !ok || err != nil || tag == "" {
			log.Warn().Str("path", path).Msg("Skipping tag path that names no tag")

			continue
		}

		genCtx, cancel := context.WithTimeout(ctx, config.Global.Pages.GenerateTimeout)
		_, err = TagPages.Generate(genCtx, path, tagPropsGenerator(client, tag))

		cancel()

		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to generate tag page")
		}
	}
}

// tagPropsGenerator generates the props of the page of tag.
func tagPropsGenerator(client *requests.Client, tag string) pages.Generator[core.StaticProps] {
	fetch := core.KeywordFetcherFor(client)

	return func(ctx context.Context) (pages.Page[core.StaticProps], error) {
		props := core.GetTagStaticProps(ctx, fetch, tag)

		return pages.Page[core.StaticProps]{Value: props, Revalidate: props.Revalidate}, nil
	}
}

// TagPage renders the feed page of a tag.
//
// The generated props only carry SEO metadata. The header state and the feed
// are fetched live for the current viewer on every request.
func TagPage(w http.ResponseWriter, r *http.Request) error {
	tag := utils.GetPathVar(r, "tag")
	client := requests.Default
	caller := core.CallerFromRequest(r)

	ctrl := tagpage.New(tag, caller, core.NewTagActions(client, caller), nil)

	props, status, err := TagPages.Load(r.Context(), partials.TagPath(tag), tagPropsGenerator(client, tag))
	if err != nil {
		return fmt.Errorf("failed to generate tag page: %w", err)
	}

	if timing := servertiming.FromContext(r.Context()); timing != nil {
		timing.NewMetric("page").WithDesc(string(status))
	}

	if status == pages.StatusFallback {
		w.Header().Set("Cache-Control", "no-store")

		return views.Fallback(ctrl.SEO(core.TagPageProps{Tag: tag})).Render(r.Context(), w)
	}

	var (
		settings *core.FeedSettings
		feed     core.FeedPage
		feedErr  error
	)

	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		var err error

		settings, err = core.GetFeedSettings(ctx, client, caller)

		return err
	})

	g.Go(func() error {
		// A feed failure leaves the rest of the page usable.
		feed, feedErr = core.GetTagFeed(ctx, client, caller, ctrl.Vars, utils.GetQueryParam(r, "after"))

		return nil
	})

	if err := g.Wait(); err != nil {
		if requests.IsUnauthenticated(err) {
			return NewUnauthorizedError(session.TriggerMainButton, partials.TagPath(tag))
		}

		return err
	}

	if feedErr != nil {
		log.Warn().
			Err(feedErr).
			Str("tag", tag).
			Msg("Failed to load tag feed")
	}

	setPageCacheControl(w, caller)

	return views.Tag(views.TagData{
		SEO:       ctrl.SEO(props.Props),
		Tag:       tag,
		State:     ctrl.State(settings),
		Feed:      feed,
		FeedError: feedErr,
	}).Render(r.Context(), w)
}

// setPageCacheControl lets shared caches keep pages of anonymous viewers.
func setPageCacheControl(w http.ResponseWriter, caller core.Caller) {
	if caller.SignedIn() {
		w.Header().Set("Cache-Control", "private, no-cache")

		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d",
		int(config.Global.HTTPCache.MaxAge.Seconds()),
		int(config.Global.HTTPCache.StaleWhileRevalidate.Seconds())))
}
