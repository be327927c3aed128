// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package set_request_context

import (
	"net/http"

	"codeberg.org/dailyfe/dailyfe/core/cookie"
	"codeberg.org/dailyfe/dailyfe/core/idgen"
	"codeberg.org/dailyfe/dailyfe/core/untrusted"
	"codeberg.org/dailyfe/dailyfe/server/request_context"
)

// WithRequestContext is a middleware that attaches a RequestContext to each HTTP request.
//
// Browsers without a DeviceID cookie get one first, so that flag rollouts
// are stable from the very first page.
func WithRequestContext(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if untrusted.GetCookie(r, cookie.DeviceIDCookie) == "" {
		id := idgen.MakeDeviceID()

		untrusted.SetCookie(w, r, cookie.DeviceIDCookie, id)
		r.AddCookie(&http.Cookie{Name: string(cookie.DeviceIDCookie), Value: id})
	}

	next.ServeHTTP(w, r.WithContext(request_context.WithRequestContext(r.Context(), r)))
}
