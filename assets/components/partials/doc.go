// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package partials has the components that route handlers render on their
// own as htmx responses, next to their use inside full pages.
package partials
