// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/assets/views"
	"codeberg.org/dailyfe/dailyfe/server/request_context"
)

// ErrorPage renders an error page.
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	ctx := request_context.FromRequest(r)

	pageData := views.ErrorData{
		Title:      "Error",
		Error:      ctx.RequestError,
		StatusCode: ctx.StatusCode,
		RequestID:  ctx.RequestID,
	}

	if err := views.Error(pageData).Render(r.Context(), w); err != nil {
		log.Err(err).Msg("Failed to render the error page")
	}
}

// NotFound renders the error page with a 404 status.
func NotFound(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNotFound)

	return nil
}
