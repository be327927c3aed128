// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"strings"
)

// NormalizeURL redirects to the canonical form of the request path:
// no repeated slashes and no trailing slash except on the root.
func NormalizeURL(w http.ResponseWriter, r *http.Request, next http.Handler) {
	canonical := canonicalPath(r.URL.Path)
	if canonical == r.URL.Path {
		next.ServeHTTP(w, r)

		return
	}

	target := *r.URL
	target.Path = canonical
	target.RawPath = ""

	http.Redirect(w, r, target.RequestURI(), http.StatusPermanentRedirect)
}

func canonicalPath(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	if path == "" {
		return "/"
	}

	return path
}
