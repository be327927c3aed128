// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package idgen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaketime(t *testing.T) {
	t.Parallel()

	now := time.Now()

	assert.Equal(t, strings.ReplaceAll(now.Format("15:04:05"), ":", ""), maketime(now))
}

func TestMake(t *testing.T) {
	t.Parallel()

	id := Make()

	assert.Len(t, id, 10)
	assert.NotEqual(t, id, Make())
}

func TestMakeDeviceID(t *testing.T) {
	t.Parallel()

	id := MakeDeviceID()

	assert.Len(t, id, 16)
	assert.NotContains(t, id, "=")
	assert.NotEqual(t, id, MakeDeviceID())
}
