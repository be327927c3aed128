// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n translates UI text with gettext catalogues.

Msgids are the English UI text itself. Setup loads po/<locale>.po from the
embedded assets into a [Catalog]; the package-level helpers use it with the
language carried by the context:

	i18n.Tr(ctx, "Follow")
	i18n.TrN(ctx, "{{.Count}} upvote", "{{.Count}} upvotes", n, "Count", n)

Placeholders are text/template actions filled from name, value pairs. Labels
picked by backend code are typed [MsgKey], which renders as a templ component.

The request language comes from ?lang=, the Lang cookie, then
Accept-Language; see [FromRequest]. With
internationalization.strictMissingKeys set, untranslated text is shown as
"⟦...⟧" and each missing msgid is logged once per locale.

po/dailyfe.pot is written by cmd/i18n_extract.
*/
package i18n
