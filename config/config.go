// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/core/feature"
	"codeberg.org/dailyfe/dailyfe/core/idgen"
	"codeberg.org/dailyfe/dailyfe/core/session"
)

// Global exposes the server configuration.
var Global ServerConfig

// Sessions signs and verifies the Access cookie. Set by LoadConfig.
var Sessions *session.Signer

// Flags assigns feature flag values to viewers. Set by LoadConfig.
var Flags = feature.Default

// Possible values for Pages.Fallback.
const (
	// FallbackDefault follows the fallback of the generated tag paths.
	FallbackDefault FallbackMode = ""
	// FallbackTrue serves an empty shell while the page is generated in the background.
	FallbackTrue FallbackMode = "true"
	// FallbackBlocking makes the first request wait for generation.
	FallbackBlocking FallbackMode = "blocking"
)

// FallbackMode decides what a request for a not-yet-generated page receives.
type FallbackMode string

// UnmarshalYAML accepts both the bare `true` scalar and quoted strings.
func (m *FallbackMode) UnmarshalYAML(b []byte) error {
	*m = FallbackMode(strings.Trim(strings.TrimSpace(string(b)), `"'`))

	return nil
}

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host                     string      `env:"DAILYFE_HOST,overwrite" yaml:"host"`
		Port                     string      `env:"DAILYFE_PORT,overwrite" yaml:"port"`
		UnixSocket               string      `env:"DAILYFE_UNIXSOCKET" yaml:"unixSocket"`
		RawUnixSocketPermissions string      `env:"DAILYFE_UNIXSOCKET_PERMISSIONS" yaml:"unixSocketPermissions"`
		UnixSocketPermissions    os.FileMode `yaml:"-"`
		UnixSocketUser           string      `env:"DAILYFE_UNIXSOCKET_USER" yaml:"unixSocketUser"`
		UnixSocketGroup          string      `env:"DAILYFE_UNIXSOCKET_GROUP" yaml:"unixSocketGroup"`
		// hex encoded v4.public secret key
		SessionSecret string `env:"DAILYFE_SECRET" yaml:"secret"`
	} `yaml:"basic"`

	API struct {
		GraphQLURL           string `env:"DAILYFE_GRAPHQL_URL,overwrite" yaml:"graphqlUrl"`
		WebappURL            string `env:"DAILYFE_WEBAPP_URL,overwrite" yaml:"webappUrl"`
		ContentGuidelinesURL string `env:"DAILYFE_CONTENT_GUIDELINES_URL,overwrite" yaml:"contentGuidelinesUrl"`
	} `yaml:"api"`

	Site struct {
		Name        string `env:"DAILYFE_SITE_NAME,overwrite" yaml:"name"`
		Description string `env:"DAILYFE_SITE_DESCRIPTION,overwrite" yaml:"description"`
		Image       string `env:"DAILYFE_SITE_IMAGE,overwrite" yaml:"image"`
		Twitter     string `env:"DAILYFE_SITE_TWITTER,overwrite" yaml:"twitter"`
	} `yaml:"site"`

	Request struct {
		Timeout        time.Duration `env:"DAILYFE_REQUEST_TIMEOUT,overwrite" yaml:"timeout"`
		UserAgent      string        `env:"DAILYFE_USER_AGENT,overwrite" yaml:"userAgent"`
		AcceptLanguage string        `env:"DAILYFE_ACCEPTLANGUAGE,overwrite" yaml:"acceptLanguage"`
	} `yaml:"request"`

	Cache struct {
		Enabled  bool          `env:"DAILYFE_CACHE,overwrite" yaml:"enabled"`
		Size     int           `env:"DAILYFE_CACHE_SIZE,overwrite" yaml:"cacheSize"`
		TTL      time.Duration `env:"DAILYFE_CACHE_TTL,overwrite" yaml:"cacheTTL"`
		Compress bool          `env:"DAILYFE_CACHE_COMPRESS,overwrite" yaml:"compress"`
	} `yaml:"cache"`

	Pages struct {
		Fallback        FallbackMode  `env:"DAILYFE_PAGES_FALLBACK,overwrite" yaml:"fallback"`
		GenerateTimeout time.Duration `env:"DAILYFE_PAGES_GENERATE_TIMEOUT,overwrite" yaml:"generateTimeout"`
		Size            int           `env:"DAILYFE_PAGES_SIZE,overwrite" yaml:"size"`
	} `yaml:"pages"`

	HTTPCache struct {
		MaxAge               time.Duration `env:"DAILYFE_CACHE_CONTROL_MAX_AGE,overwrite" yaml:"cacheControlMaxAge"`
		StaleWhileRevalidate time.Duration `env:"DAILYFE_CACHE_CONTROL_STALE_WHILE_REVALIDATE,overwrite" yaml:"cacheControlStaleWhileRevalidate"`
	} `yaml:"httpCache"`

	Feature struct {
		// AllowOverrides lets viewers pin flag values through the Flags cookie.
		AllowOverrides bool                    `env:"DAILYFE_FEATURE_OVERRIDES,overwrite" yaml:"allowOverrides"`
		Flags          map[string]feature.Rule `yaml:"flags"`
	} `yaml:"feature"`

	Instance struct {
		StartingTime      string `yaml:"-"`
		FileServerCacheID string `yaml:"-"`
		RepoURL           string `env:"DAILYFE_REPO_URL,overwrite" yaml:"repoUrl"`
	} `yaml:"instance"`

	Development struct {
		InDevelopment        bool   `env:"DAILYFE_DEV" yaml:"inDevelopment"`
		SaveResponses        bool   `env:"DAILYFE_SAVE_RESPONSES,overwrite" yaml:"saveResponses"`
		ResponseSaveLocation string `env:"DAILYFE_RESPONSE_SAVE_LOCATION,overwrite" yaml:"responseSaveLocation"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"DAILYFE_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"DAILYFE_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"DAILYFE_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`

	Limiter struct {
		Enabled bool `env:"DAILYFE_LIMITER,overwrite" yaml:"enabled"`
		// RequestsPerMinute is the sustained rate of mutating requests allowed per network.
		RequestsPerMinute int      `env:"DAILYFE_LIMITER_RATE,overwrite" yaml:"requestsPerMinute"`
		Burst             int      `env:"DAILYFE_LIMITER_BURST,overwrite" yaml:"burst"`
		PassIPs           []string `env:"DAILYFE_LIMITER_PASS_IPS,overwrite" yaml:"passList"`
		IPv4Prefix        int      `env:"DAILYFE_LIMITER_IPV4_PREFIX,overwrite" yaml:"ipv4Prefix"`
		IPv6Prefix        int      `env:"DAILYFE_LIMITER_IPV6_PREFIX,overwrite" yaml:"ipv6Prefix"`
	} `yaml:"limiter"`

	Internationalization struct {
		// Strict mode for missing keys.
		//
		// When enabled, missing keys are logged (deduplicated per locale+key) and
		// visibly wrapped using markers.
		StrictMissingKeys bool `env:"DAILYFE_STRICT_MISSING_KEYS" yaml:"strictMissingKeys"`
	} `yaml:"internationalization"`
}

// LoadConfig loads the configuration from various sources.
func (cfg *ServerConfig) LoadConfig() error {
	configFilePath := configFile()

	cfg.SetDefaults()

	cfg.Build.load()

	cfg.Instance.FileServerCacheID = idgen.Make()
	cfg.Instance.StartingTime = time.Now().UTC().Format("2006-01-02 15:04")

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	if err := cfg.setupAudit(); err != nil {
		return err
	}

	cfg.print()

	if isContainerized() && cfg.Basic.Host != "0.0.0.0" && cfg.Basic.Host != "::" {
		log.Warn().
			Str("host", cfg.Basic.Host).
			Msg("Running in a containerized environment but host is not a wildcard address (e.g., '0.0.0.0' or '::'). This may prevent the service from being accessible outside the container.")
	}

	return nil
}

var staticSkippedPathPrefixes = []string{"/css/", "/icons/", "/robots.txt"}

// ShouldSkipServerLogging determines if a request should bypass the logging middleware.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	if cfg.Development.InDevelopment {
		return false
	}

	for _, prefix := range staticSkippedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// WebappLink joins a path onto the configured webapp base URL.
func (cfg *ServerConfig) WebappLink(path string) string {
	return strings.TrimSuffix(cfg.API.WebappURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// isContainerized checks for common indicators of a containerized environment.
//
// This is a heuristic and may not be 100% accurate.
func isContainerized() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}

	for _, marker := range []string{"/.dockerenv", "/.containerenv"} {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}

	// #nosec G304 -- well-known system file read for heuristics.
	cgroup, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}

	content := string(cgroup)

	for _, keyword := range []string{"docker", "kubepods", "containerd", "lxc", "crio", ".machine"} {
		if strings.Contains(content, keyword) {
			return true
		}
	}

	return false
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}
