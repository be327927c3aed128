// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package fragments holds small components shared by the views and partials.

Components are plain Go values built on the templ runtime. Element helpers
write escaped markup directly, so no code generation step is involved.
*/
package fragments

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"codeberg.org/dailyfe/dailyfe/i18n"
)

// Attrs lists attributes in the order they are rendered.
type Attrs = templ.OrderedAttributes

// A is a single attribute. Strings are escaped, false booleans are omitted.
func A(key string, value any) templ.KeyValue[string, any] {
	return templ.KV[string, any](key, value)
}

// Href is an href attribute holding a sanitized URL.
func Href(url string) templ.KeyValue[string, any] {
	return A("href", string(templ.URL(url)))
}

// Class joins class names into a class attribute, skipping empty ones.
func Class(classes ...string) templ.KeyValue[string, any] {
	names := make([]any, 0, len(classes))

	for _, c := range classes {
		if c != "" {
			names = append(names, c)
		}
	}

	return A("class", templ.Classes(names...).String())
}

// El renders an element with its children.
func El(name string, attrs Attrs, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := open(ctx, w, name, attrs); err != nil {
			return err
		}

		for _, child := range children {
			if child == nil {
				continue
			}

			if err := child.Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</"+name+">")

		return err
	})
}

// Void renders an element that has no closing tag, such as meta or input.
func Void(name string, attrs Attrs) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return open(ctx, w, name, attrs)
	})
}

func open(ctx context.Context, w io.Writer, name string, attrs Attrs) error {
	if _, err := io.WriteString(w, "<"+name); err != nil {
		return err
	}

	if err := templ.RenderAttributes(ctx, w, attrs); err != nil {
		return err
	}

	_, err := io.WriteString(w, ">")

	return err
}

// Text renders s escaped.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))

		return err
	})
}

// Tr renders the translation of msgid for the request locale.
func Tr(msgid string, kv ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(i18n.Tr(ctx, msgid, kv...)))

		return err
	})
}

// TrN renders the singular or plural translation for n.
func TrN(singular, plural string, n int, kv ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(i18n.TrN(ctx, singular, plural, n, kv...)))

		return err
	})
}

// When renders component only if cond holds.
func When(cond bool, component templ.Component) templ.Component {
	if !cond {
		return templ.NopComponent
	}

	return component
}
