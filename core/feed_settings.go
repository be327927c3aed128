// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"

	"codeberg.org/dailyfe/dailyfe/core/requests"
)

// FeedSettings are a viewer's feed filters. They are owned upstream and only read here.
type FeedSettings struct {
	IncludeTags    []string
	BlockedTags    []string
	IncludeSources []string
	ExcludeSources []string
}

// TagStatus is a viewer's relation to a tag, derived from their FeedSettings.
type TagStatus string

const (
	TagFollowed   TagStatus = "followed"
	TagBlocked    TagStatus = "blocked"
	TagUnfollowed TagStatus = "unfollowed"
)

// ResolveTagStatus derives the status of tag from settings.
//
// Blocked is checked first, so it wins when both lists contain the tag.
// Nil settings mean unfollowed.
func ResolveTagStatus(settings *FeedSettings, tag string) TagStatus {
	if settings == nil {
		return TagUnfollowed
	}

	if slices.Contains(settings.BlockedTags, tag) {
		return TagBlocked
	}

	if slices.Contains(settings.IncludeTags, tag) {
		return TagFollowed
	}

	return TagUnfollowed
}

// FeedSettingsKey is the query key of a viewer's cached feed settings.
func FeedSettingsKey(caller Caller) []string {
	return []string{feedSettingsKey, caller.viewerKey()}
}

// GetFeedSettings fetches the caller's feed settings.
//
// Anonymous callers have no settings and get nil without a request.
func GetFeedSettings(ctx context.Context, client *requests.Client, caller Caller) (*FeedSettings, error) {
	if !caller.SignedIn() {
		return nil, nil //nolint:nilnil // no settings is a valid state
	}

	data, err := client.Do(ctx, caller.options("FeedSettings", feedSettingsQuery, nil, FeedSettingsKey(caller)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed settings: %w", err)
	}

	result := gjson.GetBytes(data, "feedSettings")
	if !result.IsObject() {
		return &FeedSettings{}, nil
	}

	return &FeedSettings{
		IncludeTags:    stringArray(result.Get("includeTags")),
		BlockedTags:    stringArray(result.Get("blockedTags")),
		IncludeSources: stringArray(result.Get("includeSources.#.id")),
		ExcludeSources: stringArray(result.Get("excludeSources.#.id")),
	}, nil
}

// stringArray collects the string elements of a JSON array result.
func stringArray(result gjson.Result) []string {
	if !result.IsArray() {
		return nil
	}

	items := result.Array()
	out := make([]string, 0, len(items))

	for _, item := range items {
		if item.Type == gjson.String {
			out = append(out, item.String())
		}
	}

	return out
}
