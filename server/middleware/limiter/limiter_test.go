// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/dailyfe/dailyfe/config"
)

func TestMain(m *testing.M) {
	config.Global.SetDefaults()

	os.Exit(m.Run())
}

func newTestLimiter(passList ...string) *Limiter {
	return New(Options{
		RequestsPerMinute: 1,
		Burst:             2,
		IPv4Prefix:        24,
		IPv6Prefix:        48,
		PassList:          passList,
	})
}

func serve(l *Limiter, method, remoteAddr string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r := httptest.NewRequest(method, "/tags/golang/follow", nil)
	r.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()

	l.Evaluate(w, r, next)

	return w
}

func TestEvaluateBlocksAfterBurst(t *testing.T) {
	t.Parallel()

	l := newTestLimiter()

	first := serve(l, http.MethodPost, "1.2.3.4:1000")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get(HeaderRateLimitLimit))
	assert.Equal(t, "1", first.Header().Get(HeaderRateLimitRemaining))
	assert.Empty(t, first.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, serve(l, http.MethodPost, "1.2.3.4:1000").Code)

	blocked := serve(l, http.MethodPost, "1.2.3.4:1000")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "0", blocked.Header().Get(HeaderRateLimitRemaining))
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Equal(t, "no-store", blocked.Header().Get("Cache-Control"))
	assert.Contains(t, blocked.Body.String(), "429 Too Many Requests")
	assert.Contains(t, blocked.Body.String(), "too many changes")
}

func TestEvaluateSharesBucketWithinNetwork(t *testing.T) {
	t.Parallel()

	l := newTestLimiter()

	serve(l, http.MethodPost, "1.2.3.4:1000")
	serve(l, http.MethodPost, "1.2.3.5:1000")

	assert.Equal(t, http.StatusTooManyRequests, serve(l, http.MethodPost, "1.2.3.6:1000").Code)
	assert.Equal(t, http.StatusNoContent, serve(l, http.MethodPost, "1.2.4.1:1000").Code)
	assert.Equal(t, 2, l.size())
}

func TestEvaluateIgnoresSafeMethods(t *testing.T) {
	t.Parallel()

	l := newTestLimiter()

	for range 5 {
		w := serve(l, http.MethodGet, "1.2.3.4:1000")
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get(HeaderRateLimitLimit))
	}

	assert.Zero(t, l.size())
}

func TestEvaluatePassList(t *testing.T) {
	t.Parallel()

	l := newTestLimiter("1.2.3.0/24")

	for range 5 {
		assert.Equal(t, http.StatusNoContent, serve(l, http.MethodPost, "1.2.3.4:1000").Code)
	}
}

func TestEvaluateWithoutClientIP(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, serve(newTestLimiter(), http.MethodPost, "@").Code)
}

func TestCleanupDropsIdleNetworks(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter()
	l.now = func() time.Time { return now }

	l.get("1.2.3.0/24")
	now = now.Add(LimiterExpiryDuration / 2)
	l.get("5.6.7.0/24")

	now = now.Add(LimiterExpiryDuration/2 + time.Second)
	l.cleanup()

	assert.Equal(t, 1, l.size())
}

func TestCleanupRunsOncePerInterval(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter()
	l.now = func() time.Time { return now }

	l.get("1.2.3.0/24")
	now = now.Add(LimiterExpiryDuration + time.Second)
	l.lastCleanup = now.Add(-CleanupInterval / 2)

	l.cleanup()
	assert.Equal(t, 1, l.size())

	now = now.Add(CleanupInterval)
	l.cleanup()
	assert.Zero(t, l.size())
}
