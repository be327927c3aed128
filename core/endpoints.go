// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

const (
	// TagFeedPageSize is the number of posts requested per tag feed page.
	TagFeedPageSize = 15

	// RankingTime orders a feed by publication time.
	RankingTime = "TIME"

	// AnonymousViewerKey stands in for the viewer ID in query keys of signed-out requests.
	AnonymousViewerKey = "anonymous"
)

// Query keys. The first part of a FeedQueryKey or settings key, used for invalidation.
const (
	tagFeedKey      = "tagFeed"
	feedSettingsKey = "feedSettings"
)

// Queries

const keywordQuery = `query Keyword($value: String!) {
  keyword(value: $value) {
    value
    flags {
      title
      description
    }
  }
}`

const tagFeedQuery = `query TagFeed($tag: String!, $ranking: Ranking, $first: Int, $after: String) {
  page: tagFeed(tag: $tag, ranking: $ranking, first: $first, after: $after) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        title
        permalink
        commentsPermalink
        image
        createdAt
        readTime
        numUpvotes
        numComments
        tags
        source {
          name
          image
        }
      }
    }
  }
}`

const feedSettingsQuery = `query FeedSettings {
  feedSettings {
    includeTags
    blockedTags
    includeSources {
      id
    }
    excludeSources {
      id
    }
  }
}`

const whoamiQuery = `query Whoami {
  whoami {
    id
    username
  }
}`

// Mutations

const addFiltersToFeedMutation = `mutation AddFiltersToFeed($filters: FiltersInput!) {
  feedSettings: addFiltersToFeed(filters: $filters) {
    includeTags
    blockedTags
  }
}`

const removeFiltersFromFeedMutation = `mutation RemoveFiltersFromFeed($filters: FiltersInput!) {
  feedSettings: removeFiltersFromFeed(filters: $filters) {
    includeTags
    blockedTags
  }
}`
