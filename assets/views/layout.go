// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package views holds the full pages rendered by the server.

Fragments that backend code renders on their own, such as the tag header
returned to htmx requests, live in package partials.
*/
package views

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	. "codeberg.org/dailyfe/dailyfe/assets/components/fragments" //nolint:revive // markup helpers read like tags
	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/core/tagpage"
	"codeberg.org/dailyfe/dailyfe/i18n"
)

// Layout wraps body in the document shell. head is rendered at the end of <head>.
func Layout(seo tagpage.SEO, body templ.Component, head ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
			return err
		}

		return El("html", Attrs{A("lang", i18n.TagFrom(ctx).String())},
			El("head", nil,
				Void("meta", Attrs{A("charset", "utf-8")}),
				Void("meta", Attrs{A("name", "viewport"), A("content", "width=device-width, initial-scale=1")}),
				seoHead(seo),
				Void("link", Attrs{
					A("rel", "stylesheet"),
					Href("/css/main.css?v=" + config.Global.Instance.FileServerCacheID),
				}),
				Void("link", Attrs{A("rel", "icon"), Href("/icons/favicon.svg"), A("type", "image/svg+xml")}),
				templ.Join(head...),
			),
			El("body", Attrs{Class("flex min-h-screen flex-col bg-background-default text-text-primary")},
				navbar(),
				El("main", Attrs{A("id", "main"), Class("mx-auto w-full max-w-5xl flex-1 px-4")}, body),
				El("footer", Attrs{Class("py-6")}, FooterLinks("mx-auto")),
			),
		).Render(ctx, w)
	})
}

func seoHead(seo tagpage.SEO) templ.Component {
	return templ.Join(
		El("title", nil, Text(seo.Title)),
		meta("name", "description", seo.Description),
		When(seo.Canonical != "", Void("link", Attrs{A("rel", "canonical"), Href(seo.Canonical)})),
		meta("property", "og:title", seo.OpenGraph.Title),
		meta("property", "og:description", seo.OpenGraph.Description),
		meta("property", "og:image", seo.OpenGraph.Image),
		meta("property", "og:type", seo.OpenGraph.Type),
		meta("property", "og:site_name", seo.OpenGraph.SiteName),
		meta("name", "twitter:card", seo.Twitter.Card),
		meta("name", "twitter:site", seo.Twitter.Site),
	)
}

// meta skips tags without content.
func meta(attr, name, content string) templ.Component {
	return When(content != "", Void("meta", Attrs{A(attr, name), A("content", content)}))
}

func navbar() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		cd := CommonData(ctx)

		account := El("a", Attrs{
			Href(LoginPath(session.TriggerMainButton, cd.ReturnPath())),
			Class("btn btn-primary"),
		}, Tr("Sign in"))

		if cd.LoggedIn {
			account = El("form", Attrs{A("method", "post"), A("action", "/logout"), Class("flex items-center gap-2")},
				El("span", Attrs{Class("typo-callout")}, Text("@"+cd.Username)),
				Void("input", Attrs{A("type", "hidden"), A("name", "return"), A("value", cd.ReturnPath())}),
				El("button", Attrs{A("type", "submit"), Class("btn btn-tertiary")}, Tr("Sign out")),
			)
		}

		return El("header", Attrs{Class("flex items-center justify-between gap-4 px-4 py-3")},
			El("a", Attrs{Href(config.Global.WebappLink("")), Class("typo-title3 font-bold")}, Text(config.Global.Site.Name)),
			tagJumpForm(ctx),
			account,
		).Render(ctx, w)
	})
}

// tagJumpForm opens the page of the typed tag through GET /tags.
func tagJumpForm(ctx context.Context) templ.Component {
	return El("form", Attrs{A("method", "get"), A("action", "/tags"), A("role", "search"), Class("flex-1")},
		Void("input", Attrs{
			A("type", "search"),
			A("name", "tag"),
			A("aria-label", i18n.Tr(ctx, "Go to tag")),
			A("placeholder", "golang"),
			Class("w-full rounded-10 px-3 py-2"),
		}),
	)
}

// LoginPath is the URL of the login prompt for trigger, coming back to returnPath.
func LoginPath(trigger session.Trigger, returnPath string) string {
	q := url.Values{}
	q.Set("trigger", string(trigger))

	if returnPath != "" {
		q.Set("return", returnPath)
	}

	return "/login?" + q.Encode()
}
