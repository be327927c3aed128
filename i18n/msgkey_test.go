// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMsgKeyRendersEscaped(t *testing.T) {
	t.Parallel()

	var component templ.Component = MsgKey("Tags <b>&</b> sources")

	var sb strings.Builder
	require.NoError(t, component.Render(context.Background(), &sb))

	assert.Equal(t, "Tags &lt;b&gt;&amp;&lt;/b&gt; sources", sb.String())
}
