// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package partials

import (
	"net/url"

	"github.com/a-h/templ"

	. "codeberg.org/dailyfe/dailyfe/assets/components/fragments" //nolint:revive // markup helpers read like tags
	"codeberg.org/dailyfe/dailyfe/core/tagpage"
	"codeberg.org/dailyfe/dailyfe/i18n"
)

// TagHeaderID is the element id that htmx swaps after a follow or block.
const TagHeaderID = "tag-header"

// TagPath is the page URL of tag.
func TagPath(tag string) string {
	return "/tags/" + url.PathEscape(tag)
}

// TagHeader shows the tag name and the follow and block toggles.
func TagHeader(tag string, state tagpage.State) templ.Component {
	return El("section", Attrs{
		A("id", TagHeaderID),
		A("data-status", string(state.Status)),
		Class("flex flex-col gap-4 py-6"),
	},
		El("h1", Attrs{Class("typo-large-title font-bold")}, Text("#"+tag)),
		El("div", Attrs{Class("flex flex-row gap-3")},
			When(state.ShowFollow, toggleForm(TagPath(tag)+"/follow", "follow", state.FollowLabel, "btn-primary")),
			When(state.ShowBlock, toggleForm(TagPath(tag)+"/block", "block", state.BlockLabel, "btn-secondary")),
		),
	)
}

func toggleForm(action, name string, label i18n.MsgKey, btnClass string) templ.Component {
	return El("form", Attrs{
		A("method", "post"),
		A("action", action),
		A("hx-post", action),
		A("hx-target", "#"+TagHeaderID),
		A("hx-swap", "outerHTML"),
	},
		El("button", Attrs{A("type", "submit"), A("name", name), Class("btn", btnClass)}, label),
	)
}
