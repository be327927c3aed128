// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package untrusted reads and writes cookies, which the user agent controls
// entirely. The Access cookie is believed only after its signature verifies.
package untrusted
