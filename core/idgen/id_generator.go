// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package idgen makes short identifiers for requests and devices.
package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Make makes a short ID with a 6 character timestamp and 3 bytes of entropy.
//
// Good enough to correlate log lines; not unique across days.
func Make() string {
	var entropy [3]byte

	_, _ = rand.Read(entropy[:])

	return maketime(time.Now()) + base64.RawURLEncoding.EncodeToString(entropy[:])
}

// MakeDeviceID makes a random, URL-safe identifier for a browser.
func MakeDeviceID() string {
	var entropy [12]byte

	_, _ = rand.Read(entropy[:])

	return base64.RawURLEncoding.EncodeToString(entropy[:])
}

func maketime(t time.Time) string {
	return t.Format("150405")
}
