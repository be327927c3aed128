// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/assets/views"
	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core"
	"codeberg.org/dailyfe/dailyfe/core/cookie"
	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/core/untrusted"
	"codeberg.org/dailyfe/dailyfe/i18n"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// LoginPage renders the login prompt.
func LoginPage(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")

	return views.Login(loginData(r, "")).Render(r.Context(), w)
}

// LoginPOST checks the submitted API token and starts a session for its owner.
//
// A rejected token re-renders the prompt with a 401.
func LoginPOST(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")

	token := strings.TrimSpace(utils.GetFormValue(r, "token"))

	viewer, err := core.FetchViewer(r.Context(), requests.Default, token)
	if errors.Is(err, core.ErrInvalidToken) {
		w.WriteHeader(http.StatusUnauthorized)

		return views.Login(loginData(r, i18n.Tr(r.Context(), "This token was not accepted. Check it and try again."))).
			Render(r.Context(), w)
	}

	if err != nil {
		return err
	}

	signed, err := config.Sessions.Sign(viewer, time.Now())
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	untrusted.SetCookie(w, r, cookie.TokenCookie, token)
	untrusted.SetCookie(w, r, cookie.AccessCookie, signed)

	log.Info().
		Str("viewer", viewer.ID).
		Msg("Viewer signed in")

	utils.RedirectTo(w, r, utils.ReturnPathOr(utils.GetFormValue(r, "return"), "/"))

	return nil
}

// LogoutPOST ends the session.
func LogoutPOST(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")

	untrusted.ClearCookie(w, r, cookie.TokenCookie)
	untrusted.ClearCookie(w, r, cookie.AccessCookie)

	utils.RedirectTo(w, r, utils.ReturnPathOr(utils.GetFormValue(r, "return"), "/"))

	return nil
}

func loginData(r *http.Request, errMsg string) views.LoginData {
	return views.LoginData{
		Title:      i18n.Tr(r.Context(), "Sign in"),
		Trigger:    parseTrigger(utils.GetFormValue(r, "trigger")),
		ReturnPath: utils.SanitizeReturnPath(utils.GetFormValue(r, "return")),
		Error:      errMsg,
	}
}

// parseTrigger maps unknown triggers to the main button.
func parseTrigger(s string) session.Trigger {
	if t := session.Trigger(s); t == session.TriggerFilter {
		return t
	}

	return session.TriggerMainButton
}
