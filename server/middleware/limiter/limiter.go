// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"codeberg.org/dailyfe/dailyfe/config"
)

const (
	// CleanupInterval is how often idle networks are swept.
	CleanupInterval = time.Minute

	// LimiterExpiryDuration is how long a network is kept after its last request.
	LimiterExpiryDuration = 10 * time.Minute
)

// networkLimiter is the token bucket of one network.
type networkLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter keeps one token bucket per client network.
type Limiter struct {
	mu          sync.Mutex
	networks    map[string]*networkLimiter
	lastCleanup time.Time

	limit      rate.Limit
	burst      int
	ipv4Prefix int
	ipv6Prefix int
	passList   []string

	// now is replaced in tests.
	now func() time.Time
}

// Options configures a Limiter.
type Options struct {
	RequestsPerMinute int
	Burst             int
	IPv4Prefix        int
	IPv6Prefix        int
	PassList          []string
}

// New creates a Limiter.
func New(opts Options) *Limiter {
	return &Limiter{
		networks:   make(map[string]*networkLimiter),
		limit:      rate.Limit(float64(opts.RequestsPerMinute) / time.Minute.Seconds()),
		burst:      opts.Burst,
		ipv4Prefix: opts.IPv4Prefix,
		ipv6Prefix: opts.IPv6Prefix,
		passList:   opts.PassList,
		now:        time.Now,
	}
}

// FromConfig creates a Limiter from config.Global.
func FromConfig() *Limiter {
	c := config.Global.Limiter

	return New(Options{
		RequestsPerMinute: c.RequestsPerMinute,
		Burst:             c.Burst,
		IPv4Prefix:        c.IPv4Prefix,
		IPv6Prefix:        c.IPv6Prefix,
		PassList:          c.PassIPs,
	})
}

// get returns the bucket of network, creating it when needed.
func (l *Limiter) get(network string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	nl, ok := l.networks[network]
	if !ok {
		nl = &networkLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.networks[network] = nl
	}

	nl.lastAccess = now

	return nl.limiter
}

// cleanup drops networks idle for longer than LimiterExpiryDuration.
// It does nothing if it ran less than CleanupInterval ago.
func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastCleanup) < CleanupInterval {
		return
	}

	l.lastCleanup = now

	for network, nl := range l.networks {
		if now.Sub(nl.lastAccess) > LimiterExpiryDuration {
			delete(l.networks, network)
		}
	}
}

// size is the number of tracked networks.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.networks)
}
