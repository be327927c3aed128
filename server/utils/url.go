// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var errIncompleteURL = errors.New("URL needs both a scheme and a host, such as https://api.daily.dev")

// ParseURL parses an absolute URL named what in errors. A trailing slash on
// the path is dropped so that paths can be appended.
func ParseURL(raw, what string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s URL %q: %w", what, raw, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s URL %q: %w", what, raw, errIncompleteURL)
	}

	u.Path = strings.TrimRight(u.Path, "/")

	return u, nil
}

// GetQueryParam is the query parameter name, or the first fallback when it
// is empty.
func GetQueryParam(r *http.Request, name string, fallback ...string) string {
	return orFallback(r.URL.Query().Get(name), fallback)
}

// GetFormValue is the form value name, or the first fallback when it is
// empty or the form cannot be parsed.
func GetFormValue(r *http.Request, name string, fallback ...string) string {
	if r.ParseForm() != nil {
		return orFallback("", fallback)
	}

	return orFallback(r.FormValue(name), fallback)
}

// GetPathVar is the path wildcard name, or the first fallback when it is
// empty.
func GetPathVar(r *http.Request, name string, fallback ...string) string {
	return orFallback(r.PathValue(name), fallback)
}

func orFallback(v string, fallback []string) string {
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}

	return v
}

// GetOriginFromRequest is scheme://host as the client sees it.
func GetOriginFromRequest(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")

	switch {
	case scheme != "":
	case r.TLS != nil:
		scheme = "https"
	default:
		scheme = "http"
	}

	return (&url.URL{Scheme: scheme, Host: r.Host}).String()
}

// SanitizeReturnPath keeps s only when it is a path on this host, and
// returns "" otherwise.
func SanitizeReturnPath(s string) string {
	s = strings.TrimSpace(s)

	switch {
	case !strings.HasPrefix(s, "/"),
		strings.HasPrefix(s, "//"),
		strings.HasPrefix(s, `/\`),
		strings.Contains(s, "://"):
		return ""
	}

	return s
}

// ReturnPathOr is SanitizeReturnPath(s), or fallback when that is empty.
func ReturnPathOr(s, fallback string) string {
	return orFallback(SanitizeReturnPath(s), []string{fallback})
}
