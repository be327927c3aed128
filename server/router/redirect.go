// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// The code in this file turns query-style URLs into path-style ones. The
// navbar tag jump form submits to them.
//
// Add more redirects in (*Router).DefineRoutes

package router

import (
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// redirectWithQueryParam redirects to targetPath followed by the value of
// the query parameter preservedParam. A missing value redirects to fallback.
//
// Example:   /tags?tag=golang   ->   /tags/golang
func redirectWithQueryParam(targetPath, preservedParam, fallback string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value := strings.TrimSpace(utils.GetQueryParam(r, preservedParam))
		if value == "" {
			http.Redirect(w, r, fallback, http.StatusFound)

			return
		}

		http.Redirect(w, r, targetPath+url.PathEscape(value), http.StatusFound)
	}
}

// redirectTo sends every request to target.
func redirectTo(target func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target(), http.StatusFound)
	}
}
