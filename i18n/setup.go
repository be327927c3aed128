// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/server/assets"
)

// Logger is the logger of package i18n. Set by Setup.
var Logger = log.Logger

// active is the catalogue used by the package-level helpers.
var active atomic.Pointer[Catalog]

// Setup loads the catalogues under po/ in assets.FS and makes them active.
// Strict mode follows config.Global.Internationalization.StrictMissingKeys.
//
// Calling Setup again replaces the active catalogue.
func Setup() error {
	Logger = log.With().Str("sys", "i18n").Logger()

	c, err := Load(assets.FS, "po")
	if err != nil {
		return err
	}

	c.Strict = config.Global.Internationalization.StrictMissingKeys

	active.Store(c)

	Logger.Info().
		Int("locales", len(c.tags)).
		Msg("Initialized i18n engine")

	return nil
}

// Languages lists the supported tags of the active catalogue.
// It panics before Setup.
func Languages() []language.Tag {
	c := active.Load()
	if c == nil {
		panic("i18n: Setup must be called before calling Languages")
	}

	return c.Languages()
}
