// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package request_context keeps per-request state. It sits apart from
// middleware so that routes can import it.
package request_context

import (
	"context"
	"net/http"

	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/cookie"
	"codeberg.org/dailyfe/dailyfe/core/feature"
	"codeberg.org/dailyfe/dailyfe/core/idgen"
	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/core/untrusted"
	"codeberg.org/dailyfe/dailyfe/i18n"
	"codeberg.org/dailyfe/dailyfe/server/template/commondata"
)

// RequestContext is the state of one request, shared by the middleware
// and the handler through a pointer in the request context.
type RequestContext struct {
	RequestID string

	// RequestError is the error a handler returned. middleware.CatchError
	// sets it before rendering the error page.
	RequestError error

	// StatusCode is the status sent, 200 until something says otherwise.
	StatusCode int

	CommonData commondata.PageCommonData

	// Viewer is the zero value for anonymous requests.
	Viewer session.Viewer

	// Flags are the feature flag values assigned to this viewer.
	Flags feature.Assignments
}

type contextKey struct{}

// WithRequestContext attaches a fresh RequestContext to ctx, together with
// the negotiated language and the flag assignments. It runs once per
// request.
func WithRequestContext(ctx context.Context, r *http.Request) context.Context {
	viewer := untrusted.GetViewer(r)
	flags := config.Flags.Assign(flagSubject(r, viewer), untrusted.GetFlagOverrides(r))

	rc := &RequestContext{
		RequestID:  idgen.Make(),
		StatusCode: http.StatusOK,
		CommonData: commondata.New(r, viewer),
		Viewer:     viewer,
		Flags:      flags,
	}

	ctx = i18n.WithRequest(ctx, r)
	ctx = feature.WithAssignments(ctx, flags)

	return context.WithValue(ctx, contextKey{}, rc)
}

// flagSubject buckets signed-in viewers by ID and everyone else by device.
func flagSubject(r *http.Request, viewer session.Viewer) string {
	if viewer.LoggedIn() {
		return viewer.ID
	}

	return untrusted.GetCookie(r, cookie.DeviceIDCookie)
}

// FromContext never returns nil. Without an attached context it returns a
// detached zero value.
func FromContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(contextKey{}).(*RequestContext); ok {
		return rc
	}

	return &RequestContext{}
}

func FromRequest(r *http.Request) *RequestContext {
	return FromContext(r.Context())
}
