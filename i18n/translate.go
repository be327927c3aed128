// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
)

// Vars are the named values of a message template.
type Vars map[string]any

// Tr translates msgid into the locale of ctx. kv are alternating names and
// values for the {{.Name}} placeholders of the message.
//
// Untranslated messages come back as msgid. Before Setup, no catalogue is
// consulted at all.
func Tr(ctx context.Context, msgid string, kv ...any) string {
	return translate(ctx, msgid, "", 0, kv)
}

// TrN is Tr for a message with a plural form, chosen by n.
func TrN(ctx context.Context, singular, plural string, n int, kv ...any) string {
	return translate(ctx, singular, plural, n, kv)
}

func translate(ctx context.Context, singular, plural string, n int, kv []any) string {
	c := active.Load()
	if c == nil {
		c = fallback
	}

	return c.translate(TagFrom(ctx), singular, plural, n, vars(kv))
}

// UserError is an error whose message is already translated for the viewer.
type UserError struct {
	msg string
}

// NewUserError translates msgid like Tr and wraps it in a UserError.
func NewUserError(ctx context.Context, msgid string, kv ...any) *UserError {
	return &UserError{msg: Tr(ctx, msgid, kv...)}
}

func (e *UserError) Error() string {
	return e.msg
}

// vars pairs up kv. An odd count or a non-string name is a programming error.
func vars(kv []any) Vars {
	if len(kv)%2 != 0 {
		panic("i18n: odd number of arguments, want name, value pairs")
	}

	out := make(Vars, len(kv)/2)

	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic("i18n: placeholder name must be a string")
		}

		out[name] = kv[i+1]
	}

	return out
}
