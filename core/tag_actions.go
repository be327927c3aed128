// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/dailyfe/dailyfe/core/requests"
)

// ErrSignedOut is returned by tag actions performed without a signed-in caller.
var ErrSignedOut = errors.New("sign in to change feed filters")

// TagsPayload is the argument of every tag action.
type TagsPayload struct {
	Tags []string
}

// TagActions change which tags a viewer follows or blocks.
type TagActions interface {
	FollowTags(ctx context.Context, payload TagsPayload) error
	UnfollowTags(ctx context.Context, payload TagsPayload) error
	BlockTags(ctx context.Context, payload TagsPayload) error
	UnblockTags(ctx context.Context, payload TagsPayload) error
}

// GraphQLTagActions implements TagActions with feed filter mutations.
type GraphQLTagActions struct {
	Client *requests.Client
	Caller Caller
}

var _ TagActions = (*GraphQLTagActions)(nil)

// NewTagActions returns TagActions performed by caller through client.
func NewTagActions(client *requests.Client, caller Caller) *GraphQLTagActions {
	return &GraphQLTagActions{Client: client, Caller: caller}
}

func (a *GraphQLTagActions) FollowTags(ctx context.Context, payload TagsPayload) error {
	return a.mutate(ctx, "AddFiltersToFeed", addFiltersToFeedMutation, "includeTags", payload)
}

func (a *GraphQLTagActions) UnfollowTags(ctx context.Context, payload TagsPayload) error {
	return a.mutate(ctx, "RemoveFiltersFromFeed", removeFiltersFromFeedMutation, "includeTags", payload)
}

func (a *GraphQLTagActions) BlockTags(ctx context.Context, payload TagsPayload) error {
	return a.mutate(ctx, "AddFiltersToFeed", addFiltersToFeedMutation, "blockedTags", payload)
}

func (a *GraphQLTagActions) UnblockTags(ctx context.Context, payload TagsPayload) error {
	return a.mutate(ctx, "RemoveFiltersFromFeed", removeFiltersFromFeedMutation, "blockedTags", payload)
}

// mutate sends a filter mutation and drops the caller's cached settings and feeds.
func (a *GraphQLTagActions) mutate(ctx context.Context, operation, query, field string, payload TagsPayload) error {
	if !a.Caller.SignedIn() {
		return ErrSignedOut
	}

	variables := map[string]any{
		"filters": map[string]any{field: payload.Tags},
	}

	if _, err := a.Client.Do(ctx, a.Caller.options(operation, query, variables, nil)); err != nil {
		return fmt.Errorf("%s %v: %w", operation, payload.Tags, err)
	}

	a.Client.Invalidate(
		FeedSettingsKey(a.Caller),
		[]string{tagFeedKey, a.Caller.viewerKey()},
	)

	return nil
}
