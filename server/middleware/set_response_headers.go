// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"strings"
	"sync/atomic"

	"codeberg.org/dailyfe/dailyfe/config"
)

// deniedFeatures are switched off for every page in Permissions-Policy.
var deniedFeatures = []string{
	"accelerometer", "ambient-light-sensor", "battery", "camera",
	"display-capture", "document-domain", "encrypted-media",
	"execution-while-not-rendered", "execution-while-out-of-viewport",
	"geolocation", "gyroscope", "magnetometer", "microphone", "midi",
	"navigation-override", "payment", "publickey-credentials-get",
	"screen-wake-lock", "sync-xhr", "usb", "web-share", "xr-spatial-tracking",
}

// cspDirectives allow post images from any HTTPS host and nothing else from
// outside.
var cspDirectives = [][2]string{
	{"base-uri", "'self'"},
	{"default-src", "'self'"},
	{"script-src", "'self'"},
	{"style-src", "'self' 'unsafe-inline'"},
	{"font-src", "'self'"},
	{"connect-src", "'self'"},
	{"img-src", "'self' data: https:"},
	{"media-src", "'self'"},
	{"frame-src", "'none'"},
	{"form-action", "'self'"},
	{"frame-ancestors", "'none'"},
}

// staticHeaders never change between responses. There is no HSTS here,
// since TLS is the reverse proxy's business.
var staticHeaders = map[string]string{
	"Referrer-Policy":         "no-referrer",
	"X-Frame-Options":         "DENY",
	"X-Content-Type-Options":  "nosniff",
	"Permissions-Policy":      permissionsPolicy(),
	"Content-Security-Policy": contentSecurityPolicy(),
}

// cacheRules map a path shape to its default Cache-Control. Page handlers
// set their own.
var cacheRules = []struct {
	match func(path string) bool
	value string
}{
	{func(p string) bool { return strings.HasPrefix(p, "/icons/") }, "max-age=2592000"},
	// the stylesheet link carries a cache-busting query
	{func(p string) bool { return strings.HasPrefix(p, "/css/") }, "max-age=604800"},
	{func(p string) bool { return strings.HasSuffix(p, ".txt") }, "max-age=86400"},
}

func permissionsPolicy() string {
	parts := make([]string, len(deniedFeatures))
	for i, f := range deniedFeatures {
		parts[i] = f + "=()"
	}

	return strings.Join(parts, ", ")
}

func contentSecurityPolicy() string {
	var b strings.Builder

	for _, d := range cspDirectives {
		b.WriteString(d[0] + " " + d[1] + "; ")
	}

	return strings.TrimSuffix(b.String(), " ")
}

// SetResponseHeaders adds the security, version and default cache headers.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	h := w.Header()

	for k, v := range staticHeaders {
		h.Set(k, v)
	}

	h.Set("Dailyfe-Version", config.BuildVersion)
	h.Set("Dailyfe-Revision", config.Global.Build.Revision())
	h.Add("Vary", "Cookie")

	setCacheControl(h, r.URL.Path)

	if config.Global.Development.InDevelopment && devCacheCleared.CompareAndSwap(false, true) {
		// first response after a restart, so rebuilt assets are fetched again
		h.Set("Clear-Site-Data", `"cache"`)
	}

	next.ServeHTTP(w, r)
}

var devCacheCleared atomic.Bool

func setCacheControl(h http.Header, path string) {
	for _, rule := range cacheRules {
		if rule.match(path) {
			h.Set("Cache-Control", rule.value)

			return
		}
	}

	h.Set("Cache-Control", "private, no-cache")
}
