// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package limiter is a middleware that rate limits requests which change feed settings.

Clients are grouped by network: IPv4 addresses by their /24 and IPv6 addresses
by their /48 unless configured otherwise. Each network gets a token bucket.
Safe methods are never limited.
*/
package limiter
