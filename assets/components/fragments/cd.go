// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fragments

import (
	"context"

	"codeberg.org/dailyfe/dailyfe/server/request_context"
	"codeberg.org/dailyfe/dailyfe/server/template/commondata"
)

// CommonData returns the page data of the request being rendered.
func CommonData(ctx context.Context) commondata.PageCommonData {
	return request_context.FromContext(ctx).CommonData
}
