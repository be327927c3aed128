// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package partials

import (
	"net/url"
	"time"

	"github.com/a-h/templ"

	. "codeberg.org/dailyfe/dailyfe/assets/components/fragments" //nolint:revive // markup helpers read like tags
	"codeberg.org/dailyfe/dailyfe/core"
)

// LoadMoreID is the id of the link that fetches the next feed page.
const LoadMoreID = "load-more"

// FeedItemsPath is the htmx endpoint serving the page of tag after cursor.
func FeedItemsPath(tag, after string) string {
	q := url.Values{}
	q.Set("tag", tag)
	q.Set("after", after)

	return "/api/tag-feed?" + q.Encode()
}

// FeedItems renders the posts of page followed by the link to the next page.
// The link replaces itself with the next page for htmx clients and falls back
// to the paginated tag page otherwise.
func FeedItems(tag string, page core.FeedPage) templ.Component {
	items := make([]templ.Component, 0, len(page.Posts)+1)

	for _, post := range page.Posts {
		items = append(items, PostCard(post))
	}

	if page.PageInfo.HasNextPage && page.PageInfo.EndCursor != "" {
		items = append(items, El("a", Attrs{
			A("id", LoadMoreID),
			Href(TagPath(tag) + "?after=" + url.QueryEscape(page.PageInfo.EndCursor)),
			A("hx-get", FeedItemsPath(tag, page.PageInfo.EndCursor)),
			A("hx-swap", "outerHTML"),
			Class("btn btn-secondary col-span-full mx-auto"),
		}, Tr("Load more")))
	}

	return templ.Join(items...)
}

// PostCard is one post in the feed.
func PostCard(post core.Post) templ.Component {
	tags := make([]templ.Component, 0, len(post.Tags))
	for _, t := range post.Tags {
		tags = append(tags, El("li", nil, El("a", Attrs{Href(TagPath(t))}, Text("#"+t))))
	}

	return El("article", Attrs{A("data-post-id", post.ID), Class("flex flex-col gap-2 rounded-16 border p-4")},
		El("a", Attrs{Href(post.Permalink), A("target", "_blank"), A("rel", "noopener noreferrer")},
			El("h2", Attrs{Class("typo-title3 font-bold")}, Text(post.Title)),
		),
		When(post.Image != "", Void("img", Attrs{
			A("src", post.Image),
			A("alt", ""),
			A("loading", "lazy"),
			Class("rounded-12"),
		})),
		El("p", Attrs{Class("typo-footnote text-text-tertiary")},
			Text(post.Source.Name),
			When(!post.CreatedAt.IsZero(), templ.Join(
				Text(" · "),
				El("time", Attrs{A("datetime", post.CreatedAt.Format(time.RFC3339))},
					Text(post.CreatedAt.Format("Jan 2, 2006"))),
			)),
			When(post.ReadTime > 0, templ.Join(
				Text(" · "),
				Tr("{{.Count}}m read time", "Count", post.ReadTime),
			)),
		),
		When(len(tags) > 0, El("ul", Attrs{Class("flex flex-wrap gap-2 typo-footnote")}, tags...)),
		El("p", Attrs{Class("typo-footnote text-text-secondary")},
			TrN("{{.Count}} upvote", "{{.Count}} upvotes", post.NumUpvotes, "Count", post.NumUpvotes),
			Text(" · "),
			When(post.CommentsPermalink != "", El("a", Attrs{Href(post.CommentsPermalink)},
				TrN("{{.Count}} comment", "{{.Count}} comments", post.NumComments, "Count", post.NumComments))),
			When(post.CommentsPermalink == "",
				TrN("{{.Count}} comment", "{{.Count}} comments", post.NumComments, "Count", post.NumComments)),
		),
	)
}
