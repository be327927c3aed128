// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"

	"codeberg.org/dailyfe/dailyfe/assets/components/partials"
	"codeberg.org/dailyfe/dailyfe/core/requests"
)

// WarmTagPage generates the page of tag ahead of the first request.
func WarmTagPage(ctx context.Context, tag string) error {
	_, err := TagPages.Generate(ctx, partials.TagPath(tag), tagPropsGenerator(requests.Default, tag))

	return err
}

var (
	SetupPages       = setupPages
	BlockingFallback = blockingFallback
)
