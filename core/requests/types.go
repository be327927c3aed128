// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"net/http"
)

// RequestOptions are parameters for Client.Do.
type RequestOptions struct {
	// OperationName is sent with the query and used in logs and Server-Timing.
	OperationName string
	Query         string
	Variables     map[string]any
	// Token is the viewer's upstream bearer token. Empty for anonymous requests.
	Token string
	// CacheKey enables response caching under the joined key. Nil disables caching,
	// which is always the case for mutations.
	CacheKey []string
	// IncomingHeaders are the viewer's request headers; Cache-Control is honored.
	IncomingHeaders http.Header
}

// graphQLRequest is the JSON body of a GraphQL POST.
type graphQLRequest struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}
