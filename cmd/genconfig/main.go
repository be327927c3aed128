// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes the example configuration files under deploy/
// from the defaults of config.ServerConfig.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/audit"
)

const generatedBy = "# This file was auto-generated using go run ./cmd/genconfig.\n"

// secretLines document the session secret in both formats.
var secretLines = []string{
	"-- Hex encoded v4.public secret key that signs the Access cookie.",
	"A random key is generated at startup when unset, which signs everyone out on restart.",
}

// activeEnv are written uncommented so that a copied file starts a server.
var activeEnv = map[string]bool{"DAILYFE_HOST": true, "DAILYFE_PORT": true}

type example struct {
	path   string
	render func(*config.ServerConfig) (string, error)
}

var examples = []example{
	{"deploy/.env.example", envExample},
	{"deploy/config.yaml.example", yamlExample},
}

func main() {
	audit.SetDefaultLogger()

	var cfg config.ServerConfig
	cfg.SetDefaults()

	for _, ex := range examples {
		if err := write(ex, &cfg); err != nil {
			log.Fatal().Err(err).Str("path", ex.path).Msg("Failed to generate example")
		}

		log.Info().Str("path", ex.path).Msg("Generated example")
	}
}

func write(ex example, cfg *config.ServerConfig) error {
	body, err := ex.render(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(ex.path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(ex.path, []byte(body), 0o644) //nolint:gosec // example files are public
}

// envExample lists every env variable, grouped by config section.
func envExample(cfg *config.ServerConfig) (string, error) {
	var b strings.Builder

	b.WriteString("# dailyfe configuration (via environment variables)\n#\n")
	b.WriteString("# Copy this file to .env and customize the values below.\n#\n")
	b.WriteString(generatedBy + "\n")

	root := reflect.ValueOf(cfg).Elem()

	for i := range root.NumField() {
		section, name := root.Field(i), root.Type().Field(i).Name
		if section.Kind() != reflect.Struct || name == "Build" {
			continue
		}

		fmt.Fprintf(&b, "## %s\n", name)

		for j := range section.NumField() {
			tag, ok := section.Type().Field(j).Tag.Lookup("env")
			if !ok {
				continue
			}

			b.WriteString(envLine(strings.Split(tag, ",")[0], section.Field(j)))
		}

		b.WriteString("\n")
	}

	b.WriteString("## Network proxy settings\n")
	b.WriteString("## ref: https://pkg.go.dev/net/http#ProxyFromEnvironment\n")
	b.WriteString("# HTTPS_PROXY=\n# HTTP_PROXY=\n\n")

	return b.String(), nil
}

func envLine(name string, value reflect.Value) string {
	switch {
	case name == "DAILYFE_SECRET":
		return comment("", secretLines) + "# " + name + "=\n"
	case activeEnv[name]:
		return fmt.Sprintf("%s=%q\n", name, fmt.Sprint(value.Interface()))
	case value.Kind() == reflect.Slice, value.Kind() == reflect.String && value.Len() == 0:
		return "# " + name + "=\n"
	}

	return fmt.Sprintf("# %s=%v\n", name, value.Interface())
}

// yamlExample is the default config as YAML, with every setting commented
// out below its section key.
func yamlExample(cfg *config.ServerConfig) (string, error) {
	raw, err := yaml.MarshalWithOptions(cfg, config.GetDurationEncoderOption(), yaml.Indent(2))
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	var b strings.Builder

	b.WriteString("# dailyfe configuration (via configuration file)\n#\n")
	b.WriteString("# Copy this file to config.yaml and customize the values below.\n#\n")
	b.WriteString(generatedBy)

	for line := range strings.Lines(string(raw)) {
		line = strings.TrimRight(line, "\n")

		body := strings.TrimLeft(line, " ")
		if body == "" {
			continue
		}

		indent := line[:len(line)-len(body)]
		if indent == "" {
			b.WriteString("\n" + line + "\n")

			continue
		}

		if strings.HasPrefix(body, "secret:") {
			b.WriteString(comment(indent, secretLines))
		}

		b.WriteString(indent + "# " + body + "\n")
	}

	return b.String(), nil
}

func comment(indent string, lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(indent + "# " + l + "\n")
	}

	return b.String()
}
