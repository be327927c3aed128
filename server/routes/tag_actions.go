// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"net/http"

	"codeberg.org/dailyfe/dailyfe/assets/components/partials"
	"codeberg.org/dailyfe/dailyfe/core"
	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/core/tagpage"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// tagClick is a controller action such as (*tagpage.Controller).OnFollowClick.
type tagClick func(c *tagpage.Controller, ctx context.Context, status core.TagStatus) error

// TagFollowPOST toggles following the tag.
func TagFollowPOST(w http.ResponseWriter, r *http.Request) error {
	return tagAction(w, r, (*tagpage.Controller).OnFollowClick)
}

// TagBlockPOST toggles blocking the tag.
func TagBlockPOST(w http.ResponseWriter, r *http.Request) error {
	return tagAction(w, r, (*tagpage.Controller).OnBlockClick)
}

// tagAction runs click against the viewer's live tag status.
//
// htmx requests get the re-rendered tag header. Plain form posts are sent
// back to the tag page. Signed-out viewers get the login prompt.
func tagAction(w http.ResponseWriter, r *http.Request, click tagClick) error {
	w.Header().Set("Cache-Control", "no-store")

	tag := utils.GetPathVar(r, "tag")
	client := requests.Default
	caller := core.CallerFromRequest(r)

	var loginTrigger session.Trigger

	ctrl := tagpage.New(tag, caller, core.NewTagActions(client, caller), func(trigger session.Trigger) {
		loginTrigger = trigger
	})

	settings, err := core.GetFeedSettings(r.Context(), client, caller)
	if err != nil {
		return err
	}

	if err := click(ctrl, r.Context(), core.ResolveTagStatus(settings, tag)); err != nil {
		return err
	}

	if loginTrigger != "" {
		return NewUnauthorizedError(loginTrigger, partials.TagPath(tag))
	}

	if !utils.IsHtmxRequest(r) {
		utils.RedirectTo(w, r, partials.TagPath(tag))

		return nil
	}

	// The mutation invalidated the cached settings, so this reads the new state.
	settings, err = core.GetFeedSettings(r.Context(), client, caller)
	if err != nil {
		return err
	}

	return partials.TagHeader(tag, ctrl.State(settings)).Render(r.Context(), w)
}
