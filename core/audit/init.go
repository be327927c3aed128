// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package audit records HTTP exchanges in both directions: requests served to
// viewers and requests sent to the upstream GraphQL API.
package audit

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	SetDefaultLogger()
}

// SetDefaultLogger writes human readable lines to stderr until the
// configured outputs take over.
func SetDefaultLogger() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
