// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package feature resolves feature flag assignments for a viewer and gates
components on them.

Assignments are resolved once per request by an [Assigner] and attached to the
request context. Components read them through a [Lookup] at render time.
*/
package feature

import (
	"context"
	"strconv"
)

// Feature is a named flag whose assignments have type T.
type Feature[T comparable] struct {
	ID string
	// Default is used when a configured value cannot be parsed as T.
	Default T
	// Parse converts a configured or overridden raw value into T.
	Parse func(raw string) (T, error)
}

// OnboardingLinks controls the footer links shown to new viewers.
var OnboardingLinks = Feature[bool]{
	ID:      "onboarding_links",
	Default: false,
	Parse:   strconv.ParseBool,
}

// registry lists every known feature so the Assigner can parse raw values.
var registry = map[string]func(raw string) (any, bool){
	OnboardingLinks.ID: OnboardingLinks.parseAny,
}

func (f Feature[T]) parseAny(raw string) (any, bool) {
	if f.Parse == nil {
		return nil, false
	}

	v, err := f.Parse(raw)
	if err != nil {
		return f.Default, true
	}

	return v, true
}

// Lookup reads the current viewer's assignment for a flag.
type Lookup interface {
	Value(ctx context.Context, id string) (any, bool)
}

// Assignments is a resolved set of flag values for one viewer.
type Assignments map[string]any

// Value implements Lookup.
func (a Assignments) Value(_ context.Context, id string) (any, bool) {
	v, ok := a[id]

	return v, ok
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, id string) (any, bool)

// Value implements Lookup.
func (f LookupFunc) Value(ctx context.Context, id string) (any, bool) {
	return f(ctx, id)
}

type assignmentsKeyType struct{}

var assignmentsKey = assignmentsKeyType{}

// WithAssignments attaches resolved assignments to ctx.
func WithAssignments(ctx context.Context, a Assignments) context.Context {
	return context.WithValue(ctx, assignmentsKey, a)
}

// FromContext is a Lookup that reads assignments attached with WithAssignments.
var FromContext Lookup = LookupFunc(func(ctx context.Context, id string) (any, bool) {
	a, ok := ctx.Value(assignmentsKey).(Assignments)
	if !ok {
		return nil, false
	}

	return a.Value(ctx, id)
})
