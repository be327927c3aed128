// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"codeberg.org/dailyfe/dailyfe/core/requests"
)

var (
	// ErrKeywordNotFound is returned when the API has no keyword for a tag.
	ErrKeywordNotFound = errors.New("keyword not found")

	errKeywordMalformed = errors.New("malformed keyword response")
)

// KeywordFlags holds the SEO overrides of a keyword. Empty strings mean unset.
type KeywordFlags struct {
	Title       string
	Description string
}

// Keyword is the metadata record describing a tag.
type Keyword struct {
	Value string
	Flags KeywordFlags
}

// FetchKeyword queries the keyword record for tag.
//
// A null keyword or an upstream NOT_FOUND both return ErrKeywordNotFound.
// Transport failures, non-2xx answers and malformed JSON are wrapped and returned as is.
func FetchKeyword(ctx context.Context, client *requests.Client, tag string) (*Keyword, error) {
	data, err := client.Do(ctx, requests.RequestOptions{
		OperationName: "Keyword",
		Query:         keywordQuery,
		Variables:     map[string]any{"value": tag},
	})
	if err != nil {
		var apiErr *requests.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == requests.CodeNotFound || apiErr.StatusCode == http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeywordNotFound, tag)
		}

		return nil, fmt.Errorf("failed to fetch keyword %q: %w", tag, err)
	}

	return parseKeyword(data, tag)
}

// parseKeyword reads the `keyword` field of a Keyword query's data.
func parseKeyword(data []byte, tag string) (*Keyword, error) {
	result := gjson.GetBytes(data, "keyword")

	switch {
	case !result.Exists():
		return nil, fmt.Errorf("%w: missing keyword field", errKeywordMalformed)
	case result.Type == gjson.Null:
		return nil, fmt.Errorf("%w: %s", ErrKeywordNotFound, tag)
	case !result.IsObject():
		return nil, fmt.Errorf("%w: keyword is %s", errKeywordMalformed, result.Type)
	}

	return &Keyword{
		Value: result.Get("value").String(),
		Flags: KeywordFlags{
			Title:       result.Get("flags.title").String(),
			Description: result.Get("flags.description").String(),
		},
	}, nil
}
