// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/core/requests/fakeapi"
)

func TestTagActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		act       func(TagActions) error
		operation string
		field     string
	}{
		{"Follow", func(a TagActions) error { return a.FollowTags(context.Background(), TagsPayload{Tags: []string{"golang"}}) }, "AddFiltersToFeed", "includeTags"},
		{"Unfollow", func(a TagActions) error { return a.UnfollowTags(context.Background(), TagsPayload{Tags: []string{"golang"}}) }, "RemoveFiltersFromFeed", "includeTags"},
		{"Block", func(a TagActions) error { return a.BlockTags(context.Background(), TagsPayload{Tags: []string{"golang"}}) }, "AddFiltersToFeed", "blockedTags"},
		{"Unblock", func(a TagActions) error { return a.UnblockTags(context.Background(), TagsPayload{Tags: []string{"golang"}}) }, "RemoveFiltersFromFeed", "blockedTags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := fakeapi.New(t, map[string]fakeapi.Response{
				tt.operation: fakeapi.Data(`{"feedSettings":{"includeTags":[],"blockedTags":[]}}`),
			}, false)

			require.NoError(t, tt.act(NewTagActions(api.Client, signedIn)))

			calls := api.Calls("")
			require.Len(t, calls, 1)
			assert.Equal(t, tt.operation, calls[0].Operation)
			assert.Equal(t, "tok", calls[0].Token)
			assert.Equal(t, map[string]any{tt.field: []any{"golang"}}, calls[0].Variables["filters"])
		})
	}
}

func TestTagActionsInvalidateViewerCache(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t, map[string]fakeapi.Response{
		"FeedSettings":     fakeapi.Data(`{"feedSettings":{"includeTags":[],"blockedTags":[]}}`),
		"TagFeed":          fakeapi.Data(tagFeedPage),
		"AddFiltersToFeed": fakeapi.Data(`{"feedSettings":{"includeTags":["golang"],"blockedTags":[]}}`),
	}, true)

	ctx := context.Background()
	other := Caller{Viewer: signedIn.Viewer, Token: "tok"}
	other.Viewer.ID = "u2"

	for _, caller := range []Caller{signedIn, other} {
		_, err := GetFeedSettings(ctx, api.Client, caller)
		require.NoError(t, err)
		_, err = GetTagFeed(ctx, api.Client, caller, NewTagQueryVariables("golang"), "")
		require.NoError(t, err)
	}

	require.Equal(t, 4, api.Client.Cache.Len())

	api.Set("FeedSettings", fakeapi.Data(`{"feedSettings":{"includeTags":["golang"],"blockedTags":[]}}`))
	require.NoError(t, NewTagActions(api.Client, signedIn).FollowTags(ctx, TagsPayload{Tags: []string{"golang"}}))

	assert.Equal(t, 2, api.Client.Cache.Len(), "only the acting viewer's entries are dropped")

	settings, err := GetFeedSettings(ctx, api.Client, signedIn)
	require.NoError(t, err)
	assert.Equal(t, TagFollowed, ResolveTagStatus(settings, "golang"))
}

func TestTagActionsSignedOut(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t, nil, false)

	err := NewTagActions(api.Client, Caller{}).FollowTags(context.Background(), TagsPayload{Tags: []string{"golang"}})
	require.ErrorIs(t, err, ErrSignedOut)
	assert.Empty(t, api.Calls(""))
}

func TestTagActionsRejected(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t, map[string]fakeapi.Response{
		"AddFiltersToFeed": fakeapi.Error("FORBIDDEN", "not allowed"),
	}, false)

	err := NewTagActions(api.Client, signedIn).BlockTags(context.Background(), TagsPayload{Tags: []string{"golang"}})
	require.Error(t, err)
	assert.True(t, requests.HasCode(err, requests.CodeForbidden), "the upstream error is preserved")
}
