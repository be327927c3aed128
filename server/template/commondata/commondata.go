// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package commondata holds the per-request values every page template reads.
package commondata

import (
	"net/http"
	"net/url"

	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// PageCommonData is built once per request and reached through
// request_context.FromRequest(r).CommonData.
type PageCommonData struct {
	// BaseURL is scheme://host as the client sees it.
	BaseURL string

	CurrentPath string

	// requestURI is the path with its query.
	requestURI string

	// htmxPath is the path of the page an htmx request was issued from.
	htmxPath string

	LoggedIn bool
	Username string

	// Queries holds the first value of each query parameter.
	Queries map[string]string

	IsHtmxRequest bool
}

// New reads the common data off r for viewer.
func New(r *http.Request, viewer session.Viewer) PageCommonData {
	query := r.URL.Query()

	d := PageCommonData{
		BaseURL:       utils.GetOriginFromRequest(r),
		CurrentPath:   r.URL.Path,
		requestURI:    r.URL.RequestURI(),
		LoggedIn:      viewer.LoggedIn(),
		Username:      viewer.Username,
		Queries:       make(map[string]string, len(query)),
		IsHtmxRequest: utils.IsHtmxRequest(r),
	}

	for k := range query {
		d.Queries[k] = query.Get(k)
	}

	if u, err := url.Parse(r.Header.Get("HX-Current-URL")); err == nil {
		d.htmxPath = u.Path
	}

	return d
}

// ReturnPath is where the viewer comes back to after a detour such as the
// login prompt.
func (d PageCommonData) ReturnPath() string {
	if d.IsHtmxRequest && d.htmxPath != "" {
		return d.htmxPath
	}

	return d.requestURI
}
