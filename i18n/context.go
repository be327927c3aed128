// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"codeberg.org/dailyfe/dailyfe/core/cookie"
	"codeberg.org/dailyfe/dailyfe/core/untrusted"
)

// LangParam is the query parameter that picks the UI language for one
// request. The value "auto" ignores the Lang cookie.
const LangParam = "lang"

type tagKey struct{}

// WithTag returns a copy of ctx carrying t as the UI language.
func WithTag(ctx context.Context, t language.Tag) context.Context {
	return context.WithValue(ctx, tagKey{}, t)
}

// TagFrom is the UI language of ctx, or BaseLocale when there is none.
// A nil ctx is allowed.
func TagFrom(ctx context.Context) language.Tag {
	if ctx == nil {
		return baseTag
	}

	if t, ok := ctx.Value(tagKey{}).(language.Tag); ok && t != (language.Tag{}) {
		return t
	}

	return baseTag
}

// FromRequest picks the UI language of r from, in order, the lang query
// parameter, the Lang cookie and the Accept-Language header. Before Setup it
// is always BaseLocale.
func FromRequest(r *http.Request) language.Tag {
	c := active.Load()
	if c == nil || r == nil {
		return baseTag
	}

	return c.Match(preferences(r)...)
}

// WithRequest is WithTag(ctx, FromRequest(r)).
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return WithTag(ctx, FromRequest(r))
}

func preferences(r *http.Request) []string {
	prefs := make([]string, 0, 3)

	param := r.URL.Query().Get(LangParam)
	auto := strings.EqualFold(param, "auto")

	if param != "" && !auto {
		prefs = append(prefs, param)
	}

	if lang := untrusted.GetCookie(r, cookie.LangCookie); lang != "" && !auto {
		prefs = append(prefs, lang)
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		prefs = append(prefs, accept)
	}

	return prefs
}
