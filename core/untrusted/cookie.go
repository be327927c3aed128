// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package untrusted

import (
	"net/http"
	"net/url"
	"time"

	"codeberg.org/dailyfe/dailyfe/core/cookie"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// CookieSameSite is Lax so that a viewer arriving from an outside link is
// still signed in.
const CookieSameSite = http.SameSiteLaxMode

const cookieLifetime = 30 * 24 * time.Hour

// GetCookie is the unescaped value of the cookie name, or "" when it is
// missing or cannot be unescaped.
func GetCookie(r *http.Request, name cookie.CookieName) string {
	c, err := r.Cookie(string(name))
	if err != nil {
		return ""
	}

	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}

	return v
}

// SetCookie stores value for cookieLifetime. An empty value clears the
// cookie.
func SetCookie(w http.ResponseWriter, r *http.Request, name cookie.CookieName, value string) {
	if value == "" {
		ClearCookie(w, r, name)

		return
	}

	c := baseCookie(r, name)
	c.Value = url.QueryEscape(value)
	c.MaxAge = int(cookieLifetime / time.Second)
	c.Expires = time.Now().Add(cookieLifetime)

	http.SetCookie(w, c)
}

// ClearCookie tells the user agent to drop the cookie name.
func ClearCookie(w http.ResponseWriter, r *http.Request, name cookie.CookieName) {
	c := baseCookie(r, name)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)

	http.SetCookie(w, c)
}

func baseCookie(r *http.Request, name cookie.CookieName) *http.Cookie {
	return &http.Cookie{
		Name:     string(name),
		Path:     "/",
		Secure:   utils.IsConnectionSecure(r),
		HttpOnly: cookie.IsHttpOnly(name),
		SameSite: CookieSameSite,
	}
}
