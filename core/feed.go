// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"codeberg.org/dailyfe/dailyfe/core/requests"
)

// QueryVariables parameterize the tag feed query.
type QueryVariables struct {
	Tag     string
	Ranking string
}

// NewTagQueryVariables returns the feed variables for tag, ordered by time.
func NewTagQueryVariables(tag string) QueryVariables {
	return QueryVariables{Tag: tag, Ranking: RankingTime}
}

// Values returns the variable values in declaration order.
func (v QueryVariables) Values() []string {
	return []string{v.Tag, v.Ranking}
}

// FeedQueryKey identifies a tag feed: a fixed namespace, the viewer (or the
// anonymous sentinel) and the variable values.
func FeedQueryKey(caller Caller, vars QueryVariables) []string {
	return append([]string{tagFeedKey, caller.viewerKey()}, vars.Values()...)
}

// Source is where a post was published.
type Source struct {
	Name  string
	Image string
}

// Post is a single feed item.
type Post struct {
	ID                string
	Title             string
	Permalink         string
	CommentsPermalink string
	Image             string
	Source            Source
	Tags              []string
	CreatedAt         time.Time
	NumUpvotes        int
	NumComments       int
	ReadTime          int
}

// PageInfo is the cursor state of a feed page.
type PageInfo struct {
	EndCursor   string
	HasNextPage bool
}

// FeedPage is one page of a feed.
type FeedPage struct {
	Posts    []Post
	PageInfo PageInfo
}

// GetTagFeed fetches the page of the tag feed that starts after the cursor after.
// An empty cursor requests the first page.
func GetTagFeed(ctx context.Context, client *requests.Client, caller Caller, vars QueryVariables, after string) (FeedPage, error) {
	variables := map[string]any{
		"tag":     vars.Tag,
		"ranking": vars.Ranking,
		"first":   TagFeedPageSize,
	}
	if after != "" {
		variables["after"] = after
	}

	cacheKey := append(FeedQueryKey(caller, vars), after)

	data, err := client.Do(ctx, caller.options("TagFeed", tagFeedQuery, variables, cacheKey))
	if err != nil {
		return FeedPage{}, fmt.Errorf("failed to fetch tag feed for %q: %w", vars.Tag, err)
	}

	return parseFeedPage(gjson.GetBytes(data, "page")), nil
}

func parseFeedPage(page gjson.Result) FeedPage {
	edges := page.Get("edges").Array()

	feed := FeedPage{
		Posts: make([]Post, 0, len(edges)),
		PageInfo: PageInfo{
			EndCursor:   page.Get("pageInfo.endCursor").String(),
			HasNextPage: page.Get("pageInfo.hasNextPage").Bool(),
		},
	}

	for _, edge := range edges {
		node := edge.Get("node")
		if !node.IsObject() {
			continue
		}

		post := Post{
			ID:                node.Get("id").String(),
			Title:             node.Get("title").String(),
			Permalink:         node.Get("permalink").String(),
			CommentsPermalink: node.Get("commentsPermalink").String(),
			Image:             node.Get("image").String(),
			Source: Source{
				Name:  node.Get("source.name").String(),
				Image: node.Get("source.image").String(),
			},
			Tags:        stringArray(node.Get("tags")),
			NumUpvotes:  int(node.Get("numUpvotes").Int()),
			NumComments: int(node.Get("numComments").Int()),
			ReadTime:    int(node.Get("readTime").Int()),
		}

		if createdAt, err := time.Parse(time.RFC3339, node.Get("createdAt").String()); err == nil {
			post.CreatedAt = createdAt
		}

		feed.Posts = append(feed.Posts, post)
	}

	return feed
}
