// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package feature

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)

		return err
	})
}

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()

	var sb strings.Builder

	require.NoError(t, c.Render(ctx, &sb))

	return sb.String()
}

func TestGate(t *testing.T) {
	t.Parallel()

	panicking := LookupFunc(func(context.Context, string) (any, bool) {
		panic("flag service exploded")
	})

	tests := []struct {
		name   string
		lookup Lookup
		want   string
	}{
		{"Assigned true", Assignments{OnboardingLinks.ID: true}, "links"},
		{"Assigned false", Assignments{OnboardingLinks.ID: false}, ""},
		{"Missing assignment", Assignments{}, ""},
		{"Wrong type", Assignments{OnboardingLinks.ID: "true"}, ""},
		{"Nil lookup", nil, ""},
		{"Panicking lookup", panicking, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := render(t, context.Background(), Gate(tt.lookup, OnboardingLinks, true, text("links")))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateFromContext(t *testing.T) {
	t.Parallel()

	gated := Gate(FromContext, OnboardingLinks, true, text("links"))

	assert.Empty(t, render(t, context.Background(), gated))

	ctx := WithAssignments(context.Background(), Assignments{OnboardingLinks.ID: true})
	assert.Equal(t, "links", render(t, ctx, gated))
}

func TestGateNilComponent(t *testing.T) {
	t.Parallel()

	gated := Gate(Assignments{OnboardingLinks.ID: true}, OnboardingLinks, true, nil)
	assert.Empty(t, render(t, context.Background(), gated))
}

func TestAssign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		rules          map[string]Rule
		allowOverrides bool
		overrides      map[string]string
		want           Assignments
	}{
		{
			name:  "Full rollout",
			rules: map[string]Rule{OnboardingLinks.ID: {Value: "true", RolloutPercent: 100}},
			want:  Assignments{OnboardingLinks.ID: true},
		},
		{
			name:  "Zero rollout gets default",
			rules: map[string]Rule{OnboardingLinks.ID: {Value: "true", RolloutPercent: 0}},
			want:  Assignments{OnboardingLinks.ID: false},
		},
		{
			name:  "Unparsable value gets default",
			rules: map[string]Rule{OnboardingLinks.ID: {Value: "maybe", RolloutPercent: 100}},
			want:  Assignments{OnboardingLinks.ID: false},
		},
		{
			name:  "Unconfigured flag is unassigned",
			rules: map[string]Rule{"unknown_flag": {Value: "true", RolloutPercent: 100}},
			want:  Assignments{},
		},
		{
			name:           "Override wins when allowed",
			rules:          map[string]Rule{OnboardingLinks.ID: {Value: "true", RolloutPercent: 100}},
			allowOverrides: true,
			overrides:      map[string]string{OnboardingLinks.ID: "false"},
			want:           Assignments{OnboardingLinks.ID: false},
		},
		{
			name:      "Override ignored when not allowed",
			rules:     map[string]Rule{OnboardingLinks.ID: {Value: "true", RolloutPercent: 100}},
			overrides: map[string]string{OnboardingLinks.ID: "false"},
			want:      Assignments{OnboardingLinks.ID: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewAssigner(tt.rules, tt.allowOverrides).Assign("viewer-1", tt.overrides)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRolloutIsStableAndProportional(t *testing.T) {
	t.Parallel()

	const subjects = 2000

	hits := 0

	for i := range subjects {
		subject := fmt.Sprintf("device-%d", i)

		first := inRollout(OnboardingLinks.ID, subject, 30)
		assert.Equal(t, first, inRollout(OnboardingLinks.ID, subject, 30))

		if first {
			hits++
		}
	}

	// 30% of 2000 with generous slack for hash distribution
	assert.InDelta(t, 600, hits, 120)
}
