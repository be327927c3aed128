// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package requests talks to the upstream GraphQL API.
package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/audit"
	"codeberg.org/dailyfe/dailyfe/core/idgen"
	"codeberg.org/dailyfe/dailyfe/core/requests/lrucache"
	"codeberg.org/dailyfe/dailyfe/server/request_context"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// Client sends GraphQL operations to a single endpoint.
type Client struct {
	// URL is the GraphQL endpoint.
	URL            string
	HTTPClient     *http.Client
	UserAgent      string
	AcceptLanguage string

	// Cache stores query responses. Nil disables caching.
	Cache    *lrucache.Cache
	CacheTTL time.Duration
}

// Default is the client used by handlers. Replaced by Setup.
var Default = &Client{
	URL:        "https://api.daily.dev/graphql",
	HTTPClient: utils.HTTPClient,
}

// Setup initializes Default from config.Global.
//
// It sets up the response cache if enabled and logs the cache parameters.
func Setup() {
	client := &Client{
		URL: config.Global.API.GraphQLURL,
		HTTPClient: &http.Client{
			Transport: utils.HTTPClient.Transport,
			Timeout:   config.Global.Request.Timeout,
		},
		UserAgent:      config.Global.Request.UserAgent,
		AcceptLanguage: config.Global.Request.AcceptLanguage,
		CacheTTL:       config.Global.Cache.TTL,
	}

	if !config.Global.Cache.Enabled {
		log.Info().
			Msg("Cache is disabled, skipping cache initialization")
	} else {
		cache, err := lrucache.New(config.Global.Cache.Size, config.Global.Cache.Compress)
		if err != nil {
			panic(fmt.Sprintf("failed to create cache: %v", err))
		}

		client.Cache = cache

		log.Info().
			Int("size", config.Global.Cache.Size).
			Dur("ttl", config.Global.Cache.TTL).
			Bool("compress", config.Global.Cache.Compress).
			Msg("Initialized API response cache")
	}

	Default = client
}

// Do sends a GraphQL operation and returns the raw JSON of the `data` field.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 2xx (as *APIError)
//   - The response contains invalid JSON
//   - The response carries a non-empty `errors` array (as *APIError)
func (c *Client) Do(ctx context.Context, opts RequestOptions) ([]byte, error) {
	policy := c.determineCachePolicy(opts)
	if policy.cached != nil {
		return policy.cached, nil
	}

	payload, err := json.Marshal(graphQLRequest{
		OperationName: opts.OperationName,
		Query:         opts.Query,
		Variables:     opts.Variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	req, err := c.newRequest(ctx, opts, payload)
	if err != nil {
		return nil, err
	}

	statusCode, body, err := c.sendRequest(ctx, req, opts.OperationName)
	if err != nil {
		return nil, err
	}

	data, err := processResponse(statusCode, body)
	if err != nil {
		return nil, err
	}

	if policy.store {
		c.Cache.Set(policy.key, data, c.CacheTTL)
	}

	return data, nil
}

// processResponse validates a GraphQL response and extracts `data`.
func processResponse(statusCode int, body []byte) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		if statusCode >= http.StatusBadRequest {
			return nil, &APIError{
				StatusCode: statusCode,
				Message:    http.StatusText(statusCode),
				Err:        errAPIResponseError,
			}
		}

		return nil, fmt.Errorf("%w: %.200s", errInvalidJSON, body)
	}

	result := gjson.ParseBytes(body)

	if first := result.Get("errors.0"); first.Exists() {
		code := first.Get("extensions.code").String()

		status := statusCode
		if status < http.StatusBadRequest {
			status = statusForCode(code)
		}

		message := first.Get("message").String()
		if message == "" {
			message = "API response contained an error with no message"
		}

		return nil, &APIError{
			StatusCode: status,
			Code:       code,
			Message:    message,
			Err:        errAPIResponseError,
		}
	}

	if statusCode >= http.StatusBadRequest {
		return nil, &APIError{
			StatusCode: statusCode,
			Message:    http.StatusText(statusCode),
			Err:        errAPIResponseError,
		}
	}

	data := result.Get("data")
	if !data.Exists() {
		return nil, fmt.Errorf("%w: missing data field", errInvalidJSON)
	}

	return []byte(data.Raw), nil
}

// newRequest constructs the POST request for a GraphQL operation.
func (c *Client) newRequest(ctx context.Context, opts RequestOptions, payload []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	if c.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.AcceptLanguage)
	}

	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	return req, nil
}

// sendRequest executes the HTTP request and reads the body, recording an audit span.
func (c *Client) sendRequest(
	ctx context.Context,
	req *http.Request,
	operation string,
) (_ int, _ []byte, err error) {
	span := audit.Span{
		Destination: audit.ToAPI,
		RequestID:   request_context.FromContext(ctx).RequestID + "-" + idgen.Make(),
		Method:      req.Method,
		URL:         req.URL.String(),
		Operation:   operation,
	}

	defer func() {
		span.Error = err
		span.End()
		span.Log()
	}()

	_ = span.Begin(ctx)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = utils.HTTPClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.Body = body

	return resp.StatusCode, body, nil
}

// IsContextCanceled returns true if the error is due to context cancellation or deadline exceeded.
// In these cases, we should simply stop processing and return, as the client has disconnected.
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
