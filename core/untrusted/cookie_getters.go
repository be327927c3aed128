// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package untrusted

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/cookie"
	"codeberg.org/dailyfe/dailyfe/core/session"
)

// GetUserToken retrieves the upstream API token from the request's Token cookie.
func GetUserToken(r *http.Request) string {
	return GetCookie(r, cookie.TokenCookie)
}

// GetViewer returns the signed viewer identity from the Access cookie.
//
// A missing, expired or tampered cookie yields the anonymous viewer. A valid Access
// cookie without a Token cookie is also anonymous since no upstream call could be made for it.
func GetViewer(r *http.Request) session.Viewer {
	if config.Sessions == nil || GetUserToken(r) == "" {
		return session.Viewer{}
	}

	raw := GetCookie(r, cookie.AccessCookie)
	if raw == "" {
		return session.Viewer{}
	}

	viewer, err := config.Sessions.Verify(raw)
	if err != nil {
		log.Debug().
			Err(err).
			Msg("Ignoring invalid Access cookie")

		return session.Viewer{}
	}

	return viewer
}

// GetFlagOverrides parses the Flags cookie into a map of flag ID to raw value.
//
// Entries look like "onboarding_links=false" and are separated by commas.
// Malformed entries are skipped.
func GetFlagOverrides(r *http.Request) map[string]string {
	raw := GetCookie(r, cookie.FlagsCookie)
	if raw == "" {
		return nil
	}

	overrides := make(map[string]string)

	for entry := range strings.SplitSeq(raw, ",") {
		id, value, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok || id == "" {
			continue
		}

		overrides[id] = value
	}

	return overrides
}
