// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package feature

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
)

// Enabled reports whether the viewer's assignment for f equals want.
//
// A nil lookup, a missing assignment, a value of the wrong type or a panicking
// lookup all count as not enabled.
func Enabled[T comparable](ctx context.Context, lookup Lookup, f Feature[T], want T) (enabled bool) {
	if lookup == nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warn().
				Str("feature", f.ID).
				Interface("panic", r).
				Msg("Feature lookup panicked; treating flag as off")

			enabled = false
		}
	}()

	raw, ok := lookup.Value(ctx, f.ID)
	if !ok {
		return false
	}

	v, ok := raw.(T)

	return ok && v == want
}

// Gate renders component only when the viewer's assignment for f equals want.
// Otherwise it renders nothing.
func Gate[T comparable](lookup Lookup, f Feature[T], want T, component templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if component == nil || !Enabled(ctx, lookup, f, want) {
			return nil
		}

		return component.Render(ctx, w)
	})
}
