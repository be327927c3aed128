// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

// print logs the build and dumps the effective configuration to stderr.
func (cfg *ServerConfig) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", cfg.Build.Revision()).
		Str("cacheid", cfg.Instance.FileServerCacheID).
		Msg("Starting DailyFE")

	out, err := cfg.redactedYAML()
	if err != nil {
		log.Err(err).Msg("Failed to print configuration")

		return
	}

	log.Info().Msg("Application configuration:")
	fmt.Fprintln(os.Stderr, string(out))
}

// redactedYAML leaves cfg untouched and masks secrets in a copy.
func (cfg *ServerConfig) redactedYAML() ([]byte, error) {
	shown := *cfg
	if shown.Basic.SessionSecret != "" {
		shown.Basic.SessionSecret = redactedValue
	}

	return yaml.MarshalWithOptions(shown, GetDurationEncoderOption())
}
