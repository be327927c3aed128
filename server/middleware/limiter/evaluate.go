// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"codeberg.org/dailyfe/dailyfe/assets/views"
	"codeberg.org/dailyfe/dailyfe/server/request_context"
)

// Rate limiting header names.
//
// ref: https://www.ietf.org/archive/id/draft-polli-ratelimit-headers-02.html
const (
	HeaderRateLimitLimit     string = "RateLimit-Limit"
	HeaderRateLimitRemaining string = "RateLimit-Remaining"
	HeaderRateLimitReset     string = "RateLimit-Reset"
)

var (
	errNoClientIP  = errors.New("could not determine the client address")
	errRateLimited = errors.New("too many changes in a short time, wait a moment and try again")
)

// Evaluate is the limiter middleware.
func (l *Limiter) Evaluate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	defer l.cleanup()

	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		next.ServeHTTP(w, r)

		return
	}

	ip := clientIP(r)
	if ip == nil {
		log.Error().
			Str("remote_addr", r.RemoteAddr).
			Msg("Could not determine client IP")

		block(w, r, errNoClientIP, http.StatusBadRequest)

		return
	}

	if ipMatchesList(ip, l.passList) {
		next.ServeHTTP(w, r)

		return
	}

	network := networkOf(ip, l.ipv4Prefix, l.ipv6Prefix).String()
	lim := l.get(network)
	allowed := lim.Allow()

	addRateLimitHeaders(w, lim)

	if !allowed {
		log.Warn().
			Str("ip", ip.String()).
			Str("network", network).
			Str("path", r.URL.Path).
			Msg("Request blocked, exceeded rate limit")

		block(w, r, errRateLimited, http.StatusTooManyRequests)

		return
	}

	next.ServeHTTP(w, r)
}

// block renders the error page with status. The request context, when
// there is one, records the outcome for the request log.
func block(w http.ResponseWriter, r *http.Request, err error, status int) {
	rc := request_context.FromRequest(r)
	rc.RequestError = err
	rc.StatusCode = status

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	page := views.ErrorData{
		Title:      http.StatusText(status),
		Error:      err,
		StatusCode: status,
		RequestID:  rc.RequestID,
	}

	if renderErr := views.Error(page).Render(r.Context(), w); renderErr != nil {
		log.Err(renderErr).Msg("Failed to render the rate limit page")
	}
}

// addRateLimitHeaders reports the state of lim.
//
// RateLimit-Reset is the number of seconds until the bucket is full again.
// Retry-After is only set when no token is left.
func addRateLimitHeaders(w http.ResponseWriter, lim *rate.Limiter) {
	tokens := lim.Tokens()
	burst := lim.Burst()
	limit := float64(lim.Limit())

	remaining := max(0, int(math.Min(float64(burst), tokens)))

	var reset, retryAfter int64

	if limit > 0 {
		if tokens < float64(burst) {
			reset = int64(math.Ceil((float64(burst) - tokens) / limit))
		}

		if tokens < 1 {
			retryAfter = int64(math.Ceil((1 - tokens) / limit))
		}
	}

	w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(burst))
	w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(remaining))
	w.Header().Set(HeaderRateLimitReset, strconv.FormatInt(reset, 10))

	if remaining == 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(max(1, retryAfter), 10))
	}
}
