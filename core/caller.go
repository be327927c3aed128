// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"net/http"

	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/core/untrusted"
	"codeberg.org/dailyfe/dailyfe/server/request_context"
)

// Caller is who an upstream request is made on behalf of.
type Caller struct {
	Viewer session.Viewer
	// Token is the upstream bearer token. Empty for anonymous callers.
	Token string
	// Headers are the incoming request headers, used for cache directives.
	Headers http.Header
}

// CallerFromRequest builds a Caller from the request context and cookies.
//
// A Token cookie without a verified Access cookie is ignored, so the caller
// is either fully signed in or fully anonymous.
func CallerFromRequest(r *http.Request) Caller {
	viewer := request_context.FromRequest(r).Viewer
	if !viewer.LoggedIn() {
		return Caller{Headers: r.Header}
	}

	return Caller{
		Viewer:  viewer,
		Token:   untrusted.GetUserToken(r),
		Headers: r.Header,
	}
}

// SignedIn reports whether the caller can make authenticated requests.
func (c Caller) SignedIn() bool {
	return c.Viewer.LoggedIn() && c.Token != ""
}

// viewerKey is the viewer part of query keys.
func (c Caller) viewerKey() string {
	if c.Viewer.LoggedIn() {
		return c.Viewer.ID
	}

	return AnonymousViewerKey
}

func (c Caller) options(operation, query string, variables map[string]any, cacheKey []string) requests.RequestOptions {
	opts := requests.RequestOptions{
		OperationName:   operation,
		Query:           query,
		Variables:       variables,
		CacheKey:        cacheKey,
		IncomingHeaders: c.Headers,
	}

	if c.SignedIn() {
		opts.Token = c.Token
	}

	return opts
}
