// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/server/middleware"
	"codeberg.org/dailyfe/dailyfe/server/middleware/limiter"
	"codeberg.org/dailyfe/dailyfe/server/middleware/set_request_context"
)

// RegisterMiddleware installs the middleware chain.
func (router *Router) RegisterMiddleware() {
	// the first middleware is the most outer / first executed one
	router.Use(middleware.WithServerTiming)
	router.Use(middleware.NormalizeURL)                // handle trailing and repeated slashes
	router.Use(set_request_context.WithRequestContext) // needed for everything else
	router.Use(middleware.SetResponseHeaders)          // all pages need this

	if config.Global.Limiter.Enabled {
		log.Info().
			Int("requests_per_minute", config.Global.Limiter.RequestsPerMinute).
			Int("burst", config.Global.Limiter.Burst).
			Msg("Rate limiting feed changes")

		router.Use(limiter.FromConfig().Evaluate)
	}
}
