// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"github.com/a-h/templ"

	. "codeberg.org/dailyfe/dailyfe/assets/components/fragments" //nolint:revive // markup helpers read like tags
	"codeberg.org/dailyfe/dailyfe/assets/components/partials"
	"codeberg.org/dailyfe/dailyfe/core"
	"codeberg.org/dailyfe/dailyfe/core/tagpage"
)

// FeedID is the id of the feed container.
const FeedID = "feed"

// TagData is what the tag page renders.
type TagData struct {
	SEO   tagpage.SEO
	Tag   string
	State tagpage.State
	Feed  core.FeedPage
	// FeedError is set when the feed could not be loaded. The rest of the page still renders.
	FeedError error
}

// Tag is the feed page of a single tag.
func Tag(data TagData) templ.Component {
	return Layout(data.SEO, templ.Join(
		partials.TagHeader(data.Tag, data.State),
		El("div", Attrs{A("id", FeedID), Class("grid grid-cols-1 gap-4 md:grid-cols-2 lg:grid-cols-3")},
			feedBody(data),
		),
	),
		Void("link", Attrs{
			A("rel", "alternate"),
			A("type", "application/atom+xml"),
			A("title", data.SEO.Title),
			Href(partials.TagPath(data.Tag) + "/atom.xml"),
		}),
	)
}

func feedBody(data TagData) templ.Component {
	switch {
	case data.FeedError != nil:
		return El("p", Attrs{Class("col-span-full text-text-tertiary")}, Tr("Posts could not be loaded. Try again later."))
	case len(data.Feed.Posts) == 0:
		return El("p", Attrs{Class("col-span-full text-text-tertiary")}, Tr("No posts yet."))
	default:
		return partials.FeedItems(data.Tag, data.Feed)
	}
}

// Fallback is the shell served while the page of a tag is being generated.
// It reloads itself shortly.
func Fallback(seo tagpage.SEO) templ.Component {
	return Layout(seo,
		El("div", Attrs{A("id", FeedID), A("aria-busy", "true")}),
		Void("meta", Attrs{A("http-equiv", "refresh"), A("content", "1")}),
		Void("meta", Attrs{A("name", "robots"), A("content", "noindex")}),
	)
}
