// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package assets exposes the embedded static files and message catalogues.
package assets

import "io/fs"

// FS is set by main from its embed directives. Tests swap in an
// fstest.MapFS.
var FS fs.FS
