// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package request_context

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/cookie"
	"codeberg.org/dailyfe/dailyfe/core/feature"
	"codeberg.org/dailyfe/dailyfe/core/session"
)

// These tests swap config globals, so they run sequentially.

func TestWithRequestContextAnonymous(t *testing.T) {
	config.Sessions = session.NewSigner(session.NewSecretKey())
	config.Flags = feature.NewAssigner(map[string]feature.Rule{
		feature.OnboardingLinks.ID: {Value: "true", RolloutPercent: 100},
	}, false)

	t.Cleanup(func() { config.Flags = feature.Default })

	r := httptest.NewRequest(http.MethodGet, "http://dailyfe.local/tags/golang?after=abc", nil)
	r.Header.Set("HX-Request", "true")
	r.Header.Set("HX-Current-URL", "http://dailyfe.local/tags/golang")

	ctx := WithRequestContext(r.Context(), r)
	rc := FromContext(ctx)

	assert.NotEmpty(t, rc.RequestID)
	assert.Equal(t, http.StatusOK, rc.StatusCode)
	assert.False(t, rc.Viewer.LoggedIn())
	assert.False(t, rc.CommonData.LoggedIn)
	assert.True(t, rc.CommonData.IsHtmxRequest)
	assert.Equal(t, "/tags/golang", rc.CommonData.CurrentPath)
	assert.Equal(t, "abc", rc.CommonData.Queries["after"])
	assert.Equal(t, "/tags/golang", rc.CommonData.ReturnPath())
	assert.Equal(t, feature.Assignments{feature.OnboardingLinks.ID: true}, rc.Flags)

	v, ok := feature.FromContext.Value(ctx, feature.OnboardingLinks.ID)
	require.True(t, ok, "assignments must be reachable through feature.FromContext")
	assert.Equal(t, true, v)
}

func TestWithRequestContextSignedIn(t *testing.T) {
	signer := session.NewSigner(session.NewSecretKey())
	config.Sessions = signer

	access, err := signer.Sign(session.Viewer{ID: "u1", Username: "ido"}, time.Now())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/tags/golang", nil)
	r.AddCookie(&http.Cookie{Name: string(cookie.TokenCookie), Value: "upstream-token"})
	r.AddCookie(&http.Cookie{Name: string(cookie.AccessCookie), Value: access})

	rc := FromContext(WithRequestContext(r.Context(), r))

	assert.Equal(t, session.Viewer{ID: "u1", Username: "ido"}, rc.Viewer)
	assert.True(t, rc.CommonData.LoggedIn)
	assert.Equal(t, "ido", rc.CommonData.Username)
	assert.Equal(t, "/tags/golang", rc.CommonData.ReturnPath())
}

func TestWithRequestContextTamperedAccess(t *testing.T) {
	config.Sessions = session.NewSigner(session.NewSecretKey())

	forged, err := session.NewSigner(session.NewSecretKey()).Sign(session.Viewer{ID: "admin"}, time.Now())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/tags/golang", nil)
	r.AddCookie(&http.Cookie{Name: string(cookie.TokenCookie), Value: "upstream-token"})
	r.AddCookie(&http.Cookie{Name: string(cookie.AccessCookie), Value: forged})

	rc := FromContext(WithRequestContext(r.Context(), r))

	assert.False(t, rc.Viewer.LoggedIn())
}

func TestFromContextWithoutValue(t *testing.T) {
	rc := FromContext(context.Background())

	require.NotNil(t, rc)
	assert.Empty(t, rc.RequestID)
}
