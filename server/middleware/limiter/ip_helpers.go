// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// IPv4 and IPv6 address lengths as measured in bits.
const (
	ipv4BitLength = 32
	ipv6BitLength = 128
)

// clientIP returns the address of the client that sent r, or nil.
//
// X-Real-IP and X-Forwarded-For are only honoured on connections from
// private or loopback addresses, where a reverse proxy is expected.
func clientIP(r *http.Request) net.IP {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}

	remoteIP := net.ParseIP(remote)
	if remoteIP == nil || !(remoteIP.IsPrivate() || remoteIP.IsLoopback()) {
		return remoteIP
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if ip := net.ParseIP(realIP); ip != nil {
			return ip
		}
	}

	// The last hop of X-Forwarded-For was added by our own proxy.
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(parts[len(parts)-1])); ip != nil {
			return ip
		}

		log.Debug().
			Str("x_forwarded_for", xff).
			Msg("Ignoring malformed X-Forwarded-For")
	}

	return remoteIP
}

// ipMatchesList reports whether ip equals or falls within any entry of list.
func ipMatchesList(ip net.IP, list []string) bool {
	ipStr := ip.String()

	for _, entry := range list {
		if ipStr == entry {
			return true
		}

		_, subnet, err := net.ParseCIDR(entry)
		if err == nil && subnet.Contains(ip) {
			return true
		}
	}

	return false
}

// networkOf masks ip down to the network it is limited as.
func networkOf(ip net.IP, ipv4Prefix, ipv6Prefix int) *net.IPNet {
	var mask net.IPMask
	if ip4 := ip.To4(); ip4 != nil {
		ip = ip4
		mask = net.CIDRMask(ipv4Prefix, ipv4BitLength)
	} else {
		mask = net.CIDRMask(ipv6Prefix, ipv6BitLength)
	}

	return &net.IPNet{
		IP:   ip.Mask(mask),
		Mask: mask,
	}
}
