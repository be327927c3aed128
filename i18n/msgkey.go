// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"html"
	"io"
)

// MsgKey is a msgid held as a value, such as a button label chosen by
// backend code. It renders as a templ component.
//
// Values typed MsgKey are picked up by cmd/i18n_extract.
type MsgKey string

// Tr is Tr(ctx, string(k)).
func (k MsgKey) Tr(ctx context.Context) string {
	return Tr(ctx, string(k))
}

// Render writes the translation HTML-escaped.
func (k MsgKey) Render(ctx context.Context, w io.Writer) error {
	_, err := io.WriteString(w, html.EscapeString(k.Tr(ctx)))

	return err
}
