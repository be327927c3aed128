// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"codeberg.org/dailyfe/dailyfe/core/requests/lrucache"
)

// newTestClient starts an upstream that answers every request with handler.
func newTestClient(t *testing.T, handler http.HandlerFunc, withCache bool) (*Client, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := &Client{
		URL:        server.URL,
		HTTPClient: server.Client(),
		UserAgent:  "DailyFE-test",
		CacheTTL:   time.Minute,
	}

	if withCache {
		cache, err := lrucache.New(16, true)
		require.NoError(t, err)

		client.Cache = cache
	}

	return client, &hits
}

func TestDoSendsGraphQLRequest(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "DailyFE-test", r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var req graphQLRequest
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "Keyword", req.OperationName)
		assert.Equal(t, "webdev", req.Variables["value"])

		_, _ = io.WriteString(w, `{"data":{"keyword":{"value":"webdev"}}}`)
	}, false)

	data, err := client.Do(context.Background(), RequestOptions{
		OperationName: "Keyword",
		Query:         "query Keyword($value: String!) { keyword(value: $value) { value } }",
		Variables:     map[string]any{"value": "webdev"},
		Token:         "secret-token",
	})
	require.NoError(t, err)
	assert.Equal(t, "webdev", gjson.GetBytes(data, "keyword.value").String())
}

func TestDoErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantCode   string
		wantAPI    bool
	}{
		{
			name:       "GraphQL not found",
			status:     http.StatusOK,
			body:       `{"data":{"keyword":null},"errors":[{"message":"Entity not found","extensions":{"code":"NOT_FOUND"}}]}`,
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
			wantAPI:    true,
		},
		{
			name:       "GraphQL unauthenticated",
			status:     http.StatusOK,
			body:       `{"errors":[{"message":"Access denied!","extensions":{"code":"UNAUTHENTICATED"}}]}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeUnauthenticated,
			wantAPI:    true,
		},
		{
			name:       "Unknown GraphQL code",
			status:     http.StatusOK,
			body:       `{"errors":[{"message":"boom"}]}`,
			wantStatus: http.StatusBadGateway,
			wantAPI:    true,
		},
		{
			name:       "HTTP 500 with HTML body",
			status:     http.StatusInternalServerError,
			body:       `<html>oops</html>`,
			wantStatus: http.StatusInternalServerError,
			wantAPI:    true,
		},
		{
			name:   "Malformed JSON",
			status: http.StatusOK,
			body:   `{"data":`,
		},
		{
			name:   "Missing data",
			status: http.StatusOK,
			body:   `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, false)

			_, err := client.Do(context.Background(), RequestOptions{OperationName: "Op", Query: "{ op }"})
			require.Error(t, err)

			var apiErr *APIError

			if !tt.wantAPI {
				assert.False(t, errors.As(err, &apiErr))
				assert.ErrorIs(t, err, errInvalidJSON)

				return
			}

			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.ErrorIs(t, err, errAPIResponseError)
		})
	}
}

func TestDoTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := &Client{URL: server.URL, HTTPClient: server.Client()}

	_, err := client.Do(context.Background(), RequestOptions{Query: "{ op }"})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestDoCaching(t *testing.T) {
	t.Parallel()

	client, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"feedSettings":{"includeTags":["go"]}}}`)
	}, true)

	ctx := context.Background()
	opts := RequestOptions{Query: "{ feedSettings }", Token: "t1", CacheKey: []string{"feedSettings", "u1"}}

	for range 3 {
		_, err := client.Do(ctx, opts)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), hits.Load(), "repeat queries are served from cache")

	// a different session for the same key must not share the entry
	other := opts
	other.Token = "t2"

	_, err := client.Do(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	// no-cache from the viewer bypasses the cache
	bypass := opts
	bypass.IncomingHeaders = http.Header{"Cache-Control": []string{"no-cache"}}

	_, err = client.Do(ctx, bypass)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())

	// requests without a cache key are never cached
	mutation := RequestOptions{Query: "mutation { x }", Token: "t1"}
	_, _ = client.Do(ctx, mutation)
	_, _ = client.Do(ctx, mutation)
	assert.Equal(t, int32(5), hits.Load())

	assert.Equal(t, 2, client.Invalidate([]string{"feedSettings", "u1"}))

	_, err = client.Do(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, int32(6), hits.Load(), "invalidated entries are fetched again")
}

func TestDoDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	client, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"errors":[{"message":"nope","extensions":{"code":"NOT_FOUND"}}]}`)
	}, true)

	opts := RequestOptions{Query: "{ keyword }", CacheKey: []string{"keyword", "go"}}

	_, err := client.Do(context.Background(), opts)
	require.Error(t, err)
	_, err = client.Do(context.Background(), opts)
	require.Error(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestInvalidateMatchesWholeParts(t *testing.T) {
	t.Parallel()

	cache, err := lrucache.New(8, false)
	require.NoError(t, err)

	client := &Client{Cache: cache}

	cache.Set(generateCacheKey([]string{"tagFeed", "u1", "go", "TIME"}, "t"), []byte("{}"), 0)
	cache.Set(generateCacheKey([]string{"tagFeed", "u10", "go", "TIME"}, "t"), []byte("{}"), 0)

	assert.Equal(t, 1, client.Invalidate([]string{"tagFeed", "u1"}))
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 0, (&Client{}).Invalidate([]string{"tagFeed"}), "no cache means nothing to invalidate")
}

func TestCacheKeyEscapesParts(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t,
		generateCacheKey([]string{"tagFeed", "u1", "a", "T|b"}, "t"),
		generateCacheKey([]string{"tagFeed", "u1", "a|T", "b"}, "t"),
	)

	cache, err := lrucache.New(8, false)
	require.NoError(t, err)

	client := &Client{Cache: cache}

	cache.Set(generateCacheKey([]string{"tagFeed", "u1|x", "go"}, "t"), []byte("{}"), 0)

	assert.Equal(t, 0, client.Invalidate([]string{"tagFeed", "u1"}), "a separator inside a part must not match a shorter prefix")
	assert.Equal(t, 1, client.Invalidate([]string{"tagFeed", "u1|x"}))
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	err := &APIError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: "gone", Err: errAPIResponseError}

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.Equal(t, "API response indicated error [NOT_FOUND]: gone (status code: 404)", err.Error())

	assert.True(t, IsUnauthenticated(&APIError{StatusCode: http.StatusUnauthorized, Err: errAPIResponseError}))
	assert.False(t, IsUnauthenticated(err))

	assert.True(t, IsContextCanceled(context.Canceled))
}
