// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	. "codeberg.org/dailyfe/dailyfe/assets/components/fragments" //nolint:revive // markup helpers read like tags
	"codeberg.org/dailyfe/dailyfe/core/tagpage"
)

// ErrorData is what the error page renders.
type ErrorData struct {
	Title      string
	Error      error
	StatusCode int
	RequestID  string
}

// Error is the themed error page.
func Error(data ErrorData) templ.Component {
	seo := tagpage.SiteFromConfig().DefaultSEO()
	seo.Title = data.Title

	heading := strconv.Itoa(data.StatusCode) + " " + http.StatusText(data.StatusCode)

	var message templ.Component

	switch {
	case data.StatusCode == http.StatusNotFound:
		message = Tr("This page does not exist.")
	case data.Error != nil:
		message = Text(data.Error.Error())
	default:
		message = Tr("Something went wrong.")
	}

	return Layout(seo, El("section", Attrs{A("id", "error"), Class("flex flex-col gap-3 py-10")},
		El("h1", Attrs{Class("typo-title1 font-bold")}, Text(heading)),
		El("p", nil, message),
		When(data.RequestID != "", El("p", Attrs{Class("typo-footnote text-text-tertiary")},
			Tr("Request ID: {{.ID}}", "ID", data.RequestID))),
	), Void("meta", Attrs{A("name", "robots"), A("content", "noindex")}))
}
