// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/core/feature"
	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// validation errors.
var (
	errUnixSocketWithHostPort       = errors.New("unix socket configured - cannot specify Host and Port simultaneously")
	errUnixSocketInvalidPermissions = errors.New("invalid Basic.UnixSocketPermissions value")
	errUnixSocketUserDoesNotExist   = errors.New("user does not exist")
	errUnixSocketGroupDoesNotExist  = errors.New("group does not exist")
	errSessionSecretInvalid         = errors.New("basic.secret is not a valid paseto key")
	errInvalidFallback              = errors.New(`pages.fallback must be empty, "true" or "blocking"`)
	errInvalidPagesSize             = errors.New("pages.size must be positive")
	errInvalidCacheSize             = errors.New("cache.cacheSize must be positive when the cache is enabled")
	errInvalidRequestTimeout        = errors.New("request.timeout must be positive")
	errInvalidLimiterRate           = errors.New("limiter.requestsPerMinute and limiter.burst must be positive")
	errInvalidIPv4Prefix            = errors.New("IPv4 prefix must be between 0 and 32")
	errInvalidIPv6Prefix            = errors.New("IPv6 prefix must be between 0 and 128")
	errInvalidRollout               = errors.New("feature rollout percent must be between 0 and 100")
)

var (
	fileModeOctalRegexp  = regexp.MustCompile(`^0?[0-7]{3}$`)
	fileModeStringRegexp = regexp.MustCompile(`^(?:[r-][w-][x-]){3}$`)
	digitsRegexp         = regexp.MustCompile(`^[0-9]+$`)
)

// validateAndSet validates the server configuration and populates derived fields.
func (cfg *ServerConfig) validateAndSet() error {
	if err := cfg.validateListener(); err != nil {
		return err
	}

	graphqlURL, err := utils.ParseURL(cfg.API.GraphQLURL, "GraphQL")
	if err != nil {
		return fmt.Errorf("invalid GraphQL URL: %w", err)
	}

	cfg.API.GraphQLURL = graphqlURL.String()

	webappURL, err := utils.ParseURL(cfg.API.WebappURL, "Webapp")
	if err != nil {
		return fmt.Errorf("invalid webapp URL: %w", err)
	}

	// Footer links are resolved relative to the webapp root.
	cfg.API.WebappURL = webappURL.String() + "/"

	if _, err := utils.ParseURL(cfg.API.ContentGuidelinesURL, "Content guidelines"); err != nil {
		return fmt.Errorf("invalid content guidelines URL: %w", err)
	}

	repoURL, err := utils.ParseURL(cfg.Instance.RepoURL, "Repo")
	if err != nil {
		return fmt.Errorf("invalid repo URL: %w", err)
	}

	cfg.Instance.RepoURL = repoURL.String()

	if cfg.Request.Timeout <= 0 {
		return errInvalidRequestTimeout
	}

	if cfg.Cache.Enabled && cfg.Cache.Size <= 0 {
		return errInvalidCacheSize
	}

	switch cfg.Pages.Fallback {
	case FallbackDefault, FallbackTrue, FallbackBlocking:
		// valid
	default:
		return errInvalidFallback
	}

	if cfg.Pages.Size <= 0 {
		return errInvalidPagesSize
	}

	for id, rule := range cfg.Feature.Flags {
		if rule.RolloutPercent < 0 || rule.RolloutPercent > 100 {
			return fmt.Errorf("%w: %s", errInvalidRollout, id)
		}
	}

	Flags = feature.NewAssigner(cfg.Feature.Flags, cfg.Feature.AllowOverrides)

	if err := cfg.loadSessionSecret(); err != nil {
		return err
	}

	// Skip validating Limiter configuration if it's not enabled
	if !cfg.Limiter.Enabled {
		return nil
	}

	if cfg.Limiter.RequestsPerMinute <= 0 || cfg.Limiter.Burst <= 0 {
		return errInvalidLimiterRate
	}

	if cfg.Limiter.IPv4Prefix < 0 || cfg.Limiter.IPv4Prefix > 32 {
		return errInvalidIPv4Prefix
	}

	if cfg.Limiter.IPv6Prefix < 0 || cfg.Limiter.IPv6Prefix > 128 {
		return errInvalidIPv6Prefix
	}

	return nil
}

// loadSessionSecret prepares Sessions from Basic.SessionSecret.
//
// Without a configured secret an ephemeral key is generated, so sign-ins do not survive restarts.
func (cfg *ServerConfig) loadSessionSecret() error {
	if cfg.Basic.SessionSecret == "" {
		log.Warn().
			Msg("basic.secret is not set; generated an ephemeral session key. Viewers will be signed out on restart")

		Sessions = session.NewSigner(session.NewSecretKey())

		return nil
	}

	key, err := session.ParseSecretKeyHex(cfg.Basic.SessionSecret)
	if err != nil {
		log.Error().
			Err(err).
			Msgf("Generated secret key (put this in config.yaml)\nbasic:\n  secret: %q", session.NewSecretKeyHex())

		return errSessionSecretInvalid
	}

	Sessions = session.NewSigner(key)

	// remove key. no longer needed.
	cfg.Basic.SessionSecret = ""

	return nil
}

func (cfg *ServerConfig) validateListener() error {
	if cfg.Basic.UnixSocket == "" {
		if cfg.Basic.Host == "" {
			cfg.Basic.Host = "localhost"
			log.Info().
				Str("host", cfg.Basic.Host).
				Msg("Binding to default host")
		}

		if cfg.Basic.Port == "" {
			cfg.Basic.Port = "8383"
			log.Info().
				Str("port", cfg.Basic.Port).
				Msg("Using default port")
		}

		return nil
	}

	if cfg.Basic.Host != "" || cfg.Basic.Port != "" {
		return errUnixSocketWithHostPort
	}

	mode, err := parseFileMode(cfg.Basic.RawUnixSocketPermissions)
	if err != nil {
		return err
	}

	cfg.Basic.UnixSocketPermissions = mode

	if u := cfg.Basic.UnixSocketUser; u != "" {
		lookup := user.Lookup
		if digitsRegexp.MatchString(u) {
			lookup = user.LookupId
		}

		if _, err := lookup(u); err != nil {
			return errUnixSocketUserDoesNotExist
		}
	}

	if g := cfg.Basic.UnixSocketGroup; g != "" {
		lookup := user.LookupGroup
		if digitsRegexp.MatchString(g) {
			lookup = user.LookupGroupId
		}

		if _, err := lookup(g); err != nil {
			return errUnixSocketGroupDoesNotExist
		}
	}

	return nil
}

// parseFileMode accepts "660", "0660" or "rw-rw----". Empty means 0o666.
func parseFileMode(raw string) (os.FileMode, error) {
	switch {
	case raw == "":
		return 0o666, nil
	case fileModeOctalRegexp.MatchString(raw):
		mode, _ := strconv.ParseUint(raw, 8, 32)

		return os.FileMode(mode), nil
	case fileModeStringRegexp.MatchString(raw):
		const highestBit = 8

		mode := os.FileMode(0)

		for i, c := range raw {
			if c != '-' {
				mode |= 1 << (highestBit - i)
			}
		}

		return mode, nil
	default:
		return 0, errUnixSocketInvalidPermissions
	}
}
