// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	. "codeberg.org/dailyfe/dailyfe/assets/components/fragments" //nolint:revive // markup helpers read like tags
	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/feature"
	"codeberg.org/dailyfe/dailyfe/i18n"
)

// Now is the clock used for the copyright year.
var Now = time.Now

const footerLinksClass = "flex flex-row flex-wrap justify-center gap-3 text-text-tertiary typo-caption1"

// FooterLinks is the onboarding link list. It renders only for viewers
// assigned the onboarding_links flag.
func FooterLinks(className string) templ.Component {
	return feature.Gate(feature.FromContext, feature.OnboardingLinks, true, footerLinks(className))
}

func footerLinks(className string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		year := strconv.Itoa(Now().Year())

		return El("ul", Attrs{Class(className, footerLinksClass)},
			El("li", nil, Text("© "+year+" Daily Dev Ltd.")),
			El("li", nil,
				El("a", Attrs{
					Href(config.Global.API.ContentGuidelinesURL),
					A("target", "_blank"),
					A("rel", "noopener noreferrer"),
				}, Tr("Guidelines")),
			),
			footerLink("tags", "Tags"),
			footerLink("sources", "Sources"),
			footerLink("squads", "Squads"),
		).Render(ctx, w)
	})
}

func footerLink(path string, label i18n.MsgKey) templ.Component {
	return El("li", nil, El("a", Attrs{Href(config.Global.WebappLink(path))}, label))
}
