// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/netip"
)

// HTTPClient is shared by every upstream call.
var HTTPClient = &http.Client{Transport: newTransport()}

func newTransport() *http.Transport {
	const (
		sessions = 20
		perHost  = 20
		buffer   = 32 << 10
	)

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			ClientSessionCache: tls.NewLRUClientSessionCache(sessions),
		},
		MaxIdleConnsPerHost: perHost,
		ReadBufferSize:      buffer,
		WriteBufferSize:     buffer,
	}
}

// IsConnectionSecure reports whether the client reached us over TLS.
//
// X-Forwarded-Proto is honoured only when the peer has a private or
// loopback address, which covers a reverse proxy on the same host or LAN.
func IsConnectionSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return false
	}

	peer, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}

	trusted := peer.IsPrivate() || peer.IsLoopback()

	return trusted && r.Header.Get("X-Forwarded-Proto") == "https"
}

// IsHtmxRequest reports whether r was issued by htmx.
func IsHtmxRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// RedirectTo sends the client to path with 303 See Other. htmx gets
// HX-Redirect so that the whole page is replaced.
func RedirectTo(w http.ResponseWriter, r *http.Request, path string) {
	if !IsHtmxRequest(r) {
		http.Redirect(w, r, path, http.StatusSeeOther)

		return
	}

	w.Header().Set("HX-Redirect", path)
	w.WriteHeader(http.StatusOK)
}
