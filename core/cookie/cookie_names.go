// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
This package defines the cookie names used by this application.
*/
package cookie

type CookieName string

// Cookie names defined as constants.
//
// NOTE: We don't use the `__Host-` prefix to avoid login issues on non-HTTPS deployments
// where the localhost exemption doesn't apply.
const (
	// Upstream API bearer token.
	TokenCookie CookieName = "Token" // #nosec:G101 - false positive
	// paseto v4.public token carrying the viewer identity
	AccessCookie CookieName = "Access"

	// Per-browser identifier used to bucket anonymous viewers into feature rollouts.
	DeviceIDCookie CookieName = "DeviceID"
	// Feature flag overrides, "id=value" pairs separated by commas.
	FlagsCookie CookieName = "Flags"
	// for i18n use
	LangCookie CookieName = "Lang"
)

// AllCookieNames defines all cookies that can be set by the user.
var AllCookieNames = []CookieName{
	TokenCookie,
	AccessCookie,
	DeviceIDCookie,
	FlagsCookie,
	LangCookie,
}

// IsHttpOnly reports whether a cookie must be hidden from scripts.
//
//nolint:revive // matches net/http.Cookie.HttpOnly
func IsHttpOnly(name CookieName) bool {
	switch name {
	case TokenCookie, AccessCookie, DeviceIDCookie:
		return true
	default:
		return false
	}
}
