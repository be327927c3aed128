// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/dailyfe/dailyfe/core/requests/fakeapi"
)

const tagFeedPage = `{"page":{
	"pageInfo":{"hasNextPage":true,"endCursor":"cursor-2"},
	"edges":[
		{"node":{
			"id":"p1",
			"title":"Generics in practice",
			"permalink":"https://api.daily.dev/r/p1",
			"commentsPermalink":"https://app.daily.dev/posts/p1",
			"image":"https://media.daily.dev/p1.jpg",
			"createdAt":"2025-03-01T10:00:00.000Z",
			"readTime":6,
			"numUpvotes":42,
			"numComments":3,
			"tags":["golang","generics"],
			"source":{"name":"Go Blog","image":"https://media.daily.dev/go.png"}
		}},
		{"node":null}
	]
}}`

func TestFeedQueryKey(t *testing.T) {
	t.Parallel()

	vars := NewTagQueryVariables("golang")

	assert.Equal(t, QueryVariables{Tag: "golang", Ranking: "TIME"}, vars)
	assert.Equal(t, []string{"tagFeed", "anonymous", "golang", "TIME"}, FeedQueryKey(Caller{}, vars))
	assert.Equal(t, []string{"tagFeed", "u1", "golang", "TIME"}, FeedQueryKey(signedIn, vars))
}

func TestGetTagFeed(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t, map[string]fakeapi.Response{"TagFeed": fakeapi.Data(tagFeedPage)}, true)

	page, err := GetTagFeed(context.Background(), api.Client, signedIn, NewTagQueryVariables("golang"), "")
	require.NoError(t, err)

	assert.Equal(t, PageInfo{EndCursor: "cursor-2", HasNextPage: true}, page.PageInfo)
	require.Len(t, page.Posts, 1)

	post := page.Posts[0]
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "Generics in practice", post.Title)
	assert.Equal(t, Source{Name: "Go Blog", Image: "https://media.daily.dev/go.png"}, post.Source)
	assert.Equal(t, []string{"golang", "generics"}, post.Tags)
	assert.Equal(t, 42, post.NumUpvotes)
	assert.Equal(t, 6, post.ReadTime)
	assert.True(t, post.CreatedAt.Equal(time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)))

	calls := api.Calls("TagFeed")
	require.Len(t, calls, 1)
	assert.Equal(t, "golang", calls[0].Variables["tag"])
	assert.Equal(t, "TIME", calls[0].Variables["ranking"])
	assert.EqualValues(t, TagFeedPageSize, calls[0].Variables["first"])
	assert.NotContains(t, calls[0].Variables, "after")

	_, err = GetTagFeed(context.Background(), api.Client, signedIn, NewTagQueryVariables("golang"), "cursor-2")
	require.NoError(t, err)

	calls = api.Calls("TagFeed")
	require.Len(t, calls, 2, "a different cursor is a different cache entry")
	assert.Equal(t, "cursor-2", calls[1].Variables["after"])

	_, err = GetTagFeed(context.Background(), api.Client, signedIn, NewTagQueryVariables("golang"), "")
	require.NoError(t, err)
	assert.Len(t, api.Calls("TagFeed"), 2)
}

func TestGetTagFeedViewersDoNotShareCache(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t, map[string]fakeapi.Response{"TagFeed": fakeapi.Data(tagFeedPage)}, true)
	vars := NewTagQueryVariables("golang")

	_, err := GetTagFeed(context.Background(), api.Client, signedIn, vars, "")
	require.NoError(t, err)

	_, err = GetTagFeed(context.Background(), api.Client, Caller{}, vars, "")
	require.NoError(t, err)

	calls := api.Calls("TagFeed")
	require.Len(t, calls, 2)
	assert.Equal(t, "tok", calls[0].Token)
	assert.Empty(t, calls[1].Token)
}

func TestGetTagFeedError(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t, nil, false)

	_, err := GetTagFeed(context.Background(), api.Client, Caller{}, NewTagQueryVariables("golang"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "golang")
}
