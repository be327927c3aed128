// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"

	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/assets/views"
	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/audit"
	"codeberg.org/dailyfe/dailyfe/i18n"
	"codeberg.org/dailyfe/dailyfe/server/request_context"
	"codeberg.org/dailyfe/dailyfe/server/routes"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// CatchError adapts a handler that returns an error.
//
// The handler writes into a buffer. What reaches the client depends on the
// outcome:
//   - a *routes.UnauthorizedError shows the login prompt with 401,
//   - an error with no error status, or any 404, shows the themed error page,
//   - anything else is copied through as written.
//
// Every request is logged by an audit span unless its path is excluded.
func CatchError(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := request_context.FromRequest(r)

		span := audit.Span{
			Destination: audit.ToUser,
			RequestID:   rc.RequestID,
			Method:      r.Method,
			URL:         r.URL.String(),
		}

		_ = span.Begin(r.Context())
		defer span.End()

		buf := httptest.NewRecorder()
		rc.RequestError = handler(buf, r)

		var unauthorized *routes.UnauthorizedError

		switch {
		case errors.As(rc.RequestError, &unauthorized):
			rc.StatusCode = writeLoginPrompt(w, r, unauthorized)
		case buf.Code == http.StatusNotFound:
			rc.StatusCode = writeErrorPage(w, r, http.StatusNotFound)
		case rc.RequestError != nil && buf.Code < http.StatusBadRequest:
			rc.StatusCode = writeErrorPage(w, r, http.StatusInternalServerError)
		default:
			rc.StatusCode = flush(w, buf)
		}

		span.StatusCode = rc.StatusCode
		span.Error = rc.RequestError

		if !config.Global.ShouldSkipServerLogging(r.URL.Path) {
			span.Log()
		}
	}
}

func writeLoginPrompt(w http.ResponseWriter, r *http.Request, e *routes.UnauthorizedError) int {
	w.Header().Set("Cache-Control", "no-store")

	// a fragment swap cannot show the prompt
	if utils.IsHtmxRequest(r) {
		w.Header().Set("HX-Redirect", views.LoginPath(e.Trigger, e.ReturnPath))
	}

	w.WriteHeader(http.StatusUnauthorized)

	err := views.Login(views.LoginData{
		Title:      i18n.Tr(r.Context(), "Sign in"),
		Trigger:    e.Trigger,
		ReturnPath: e.ReturnPath,
	}).Render(r.Context(), w)
	if err != nil {
		log.Err(err).Msg("Failed to render the login prompt")
	}

	return http.StatusUnauthorized
}

// writeErrorPage discards what the handler wrote. routes.ErrorPage reads
// the status and error from the request context.
func writeErrorPage(w http.ResponseWriter, r *http.Request, status int) int {
	request_context.FromRequest(r).StatusCode = status

	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	routes.ErrorPage(w, r)

	return status
}

func flush(w http.ResponseWriter, buf *httptest.ResponseRecorder) int {
	status := buf.Code
	if status == 0 {
		status = http.StatusOK
	}

	maps.Copy(w.Header(), buf.Header())
	w.WriteHeader(status)

	if _, err := buf.Body.WriteTo(w); err != nil {
		log.Err(err).Msg("Failed to write response body")
	}

	return status
}
