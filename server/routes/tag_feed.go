// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"codeberg.org/dailyfe/dailyfe/assets/components/partials"
	"codeberg.org/dailyfe/dailyfe/core"
	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/i18n"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// TagFeedPartial renders the feed page of a tag after a cursor, for htmx.
func TagFeedPartial(w http.ResponseWriter, r *http.Request) error {
	tag := utils.GetQueryParam(r, "tag")
	if tag == "" {
		http.Error(w, i18n.Tr(r.Context(), "Missing tag"), http.StatusBadRequest)

		return nil
	}

	caller := core.CallerFromRequest(r)

	feed, err := core.GetTagFeed(r.Context(), requests.Default, caller, core.NewTagQueryVariables(tag), utils.GetQueryParam(r, "after"))
	if err != nil {
		return err
	}

	setPageCacheControl(w, caller)

	return partials.FeedItems(tag, feed).Render(r.Context(), w)
}
