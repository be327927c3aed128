// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"github.com/a-h/templ"

	. "codeberg.org/dailyfe/dailyfe/assets/components/fragments" //nolint:revive // markup helpers read like tags
	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/core/tagpage"
)

// LoginData is what the login prompt renders.
type LoginData struct {
	Title   string
	Trigger session.Trigger
	// ReturnPath is where the viewer goes after signing in or giving up.
	ReturnPath string
	// Error is shown above the form, for example after a rejected token.
	Error string
}

// Login is the sign in prompt.
func Login(data LoginData) templ.Component {
	seo := tagpage.SiteFromConfig().DefaultSEO()
	seo.Title = data.Title

	return Layout(seo, LoginPrompt(data), Void("meta", Attrs{A("name", "robots"), A("content", "noindex")}))
}

// LoginPrompt is the body of the login page.
func LoginPrompt(data LoginData) templ.Component {
	heading := Tr("Sign in to daily.dev")
	if data.Trigger == session.TriggerFilter {
		heading = Tr("Sign in to follow and block tags")
	}

	back := data.ReturnPath
	if back == "" {
		back = "/"
	}

	return El("section", Attrs{
		A("id", "login-prompt"),
		A("data-trigger", string(data.Trigger)),
		Class("mx-auto flex max-w-md flex-col gap-4 py-10"),
	},
		El("h1", Attrs{Class("typo-title1 font-bold")}, heading),
		When(data.Error != "", El("p", Attrs{A("role", "alert"), Class("text-status-error")}, Text(data.Error))),
		El("p", nil,
			Tr("Paste an API token from your account settings."),
			Text(" "),
			El("a", Attrs{Href(config.Global.WebappLink("settings")), A("target", "_blank"), A("rel", "noopener noreferrer")},
				Tr("Open settings")),
		),
		El("form", Attrs{A("method", "post"), A("action", "/login"), Class("flex flex-col gap-3")},
			Void("input", Attrs{A("type", "hidden"), A("name", "trigger"), A("value", string(data.Trigger))}),
			Void("input", Attrs{A("type", "hidden"), A("name", "return"), A("value", data.ReturnPath)}),
			El("label", Attrs{A("for", "token")}, Tr("API token")),
			Void("input", Attrs{
				A("id", "token"),
				A("type", "password"),
				A("name", "token"),
				A("autocomplete", "off"),
				A("required", true),
			}),
			El("button", Attrs{A("type", "submit"), Class("btn btn-primary")}, Tr("Sign in")),
		),
		El("a", Attrs{Href(back), Class("btn btn-tertiary")}, Tr("Not now")),
	)
}
