// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"time"

	"codeberg.org/dailyfe/dailyfe/core/feature"
)

const (
	// Default request cache TTL in minutes.
	defaultCacheTTLMinutes = 5
	// Default page generation timeout in seconds.
	defaultPagesGenerateTimeoutSeconds = 15
	// Default upstream request timeout in seconds.
	defaultRequestTimeoutSeconds = 10
	// Default HTTP cache max age in seconds.
	defaultHTTPCacheMaxAgeSeconds = 30
	// Default HTTP cache stale while revalidate in seconds.
	defaultHTTPCacheStaleWhileRevalidateSeconds = 60
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	cfg.Basic.Host = "localhost"
	cfg.Basic.Port = "8383"

	cfg.API.GraphQLURL = "https://api.daily.dev/graphql"
	cfg.API.WebappURL = "https://app.daily.dev/"
	cfg.API.ContentGuidelinesURL = "https://docs.daily.dev/docs/for-content-creators/content-guidelines"

	cfg.Site.Name = "daily.dev"
	cfg.Site.Description = "daily.dev is the easiest way to stay updated on the latest programming news. Get the best content from the top tech publications on any topic you want."
	cfg.Site.Image = "https://daily-now-res.cloudinary.com/image/upload/v1711799810/public/daily.dev%20-%20open%20graph.png"
	cfg.Site.Twitter = "@dailydotdev"

	cfg.Request.Timeout = defaultRequestTimeoutSeconds * time.Second
	cfg.Request.UserAgent = "DailyFE/" + BuildVersion
	cfg.Request.AcceptLanguage = "en-US,en;q=0.5"

	cfg.Cache.Enabled = true
	cfg.Cache.Size = 500
	cfg.Cache.TTL = defaultCacheTTLMinutes * time.Minute
	cfg.Cache.Compress = true

	cfg.Pages.Fallback = FallbackDefault
	cfg.Pages.GenerateTimeout = defaultPagesGenerateTimeoutSeconds * time.Second
	cfg.Pages.Size = 1000

	cfg.HTTPCache.MaxAge = defaultHTTPCacheMaxAgeSeconds * time.Second
	cfg.HTTPCache.StaleWhileRevalidate = defaultHTTPCacheStaleWhileRevalidateSeconds * time.Second

	cfg.Feature.AllowOverrides = false
	cfg.Feature.Flags = map[string]feature.Rule{
		feature.OnboardingLinks.ID: {Value: "true", RolloutPercent: 100},
	}

	cfg.Instance.RepoURL = "https://codeberg.org/dailyfe/dailyfe"

	cfg.Development.SaveResponses = false
	cfg.Development.ResponseSaveLocation = "/tmp/dailyfe/responses"

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Limiter.Enabled = false
	cfg.Limiter.RequestsPerMinute = 30
	cfg.Limiter.Burst = 10
	cfg.Limiter.IPv4Prefix = 24
	cfg.Limiter.IPv6Prefix = 48

	cfg.Internationalization.StrictMissingKeys = false
}
