// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/core/audit"
)

// requestLineKeys are folded into the message of an http log line.
var requestLineKeys = []string{"sys", "destination", "status_code", "method", "url", "request_id"}

// setupAudit points the global logger at Log.Outputs and configures
// response saving.
func (cfg *ServerConfig) setupAudit() error {
	zerolog.SetGlobalLevel(cfg.logLevel())

	var (
		writers []io.Writer
		failed  []error
	)

	for _, output := range cfg.Log.Outputs {
		w, err := cfg.logOutput(output)
		if err != nil {
			failed = append(failed, err)

			continue
		}

		writers = append(writers, w)
	}

	if len(writers) == 0 {
		writers = append(writers, terminalWriter(os.Stderr))
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(writers...))

	for _, err := range failed {
		log.Warn().Err(err).Msg("Skipping log output")
	}

	audit.SaveResponses = cfg.Development.SaveResponses
	audit.ResponseDirectory = cfg.Development.ResponseSaveLocation

	if !audit.SaveResponses {
		return nil
	}

	if err := os.MkdirAll(audit.ResponseDirectory, 0o700); err != nil {
		return fmt.Errorf("failed to create response directory: %w", err)
	}

	log.Info().Str("path", audit.ResponseDirectory).Msg("Saving upstream responses")

	return nil
}

func (cfg *ServerConfig) logLevel() zerolog.Level {
	if cfg.Development.InDevelopment {
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return level
}

// logOutput opens one entry of Log.Outputs. Files get JSON lines when
// Log.Format is "json".
func (cfg *ServerConfig) logOutput(output string) (io.Writer, error) {
	switch output {
	case "/dev/stdout":
		return terminalWriter(os.Stdout), nil
	case "/dev/stderr":
		return terminalWriter(os.Stderr), nil
	}

	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666) // #nosec:G302,G304
	if err != nil {
		return nil, fmt.Errorf("log output %s: %w", output, err)
	}

	if cfg.Log.Format == "json" {
		return f, nil
	}

	return terminalWriter(f), nil
}

// terminalWriter is a console writer that colours only real terminals and
// compacts request logs there.
func terminalWriter(f *os.File) io.Writer {
	w := zerolog.ConsoleWriter{
		Out:        f,
		TimeFormat: time.DateTime,
		NoColor:    !isatty.IsTerminal(f.Fd()),
	}

	if !w.NoColor {
		w.FormatPrepare = compactRequestLine
	}

	return w
}

// compactRequestLine turns an http log event into one readable message.
func compactRequestLine(m map[string]any) error {
	if m["sys"] != "http" {
		return nil
	}

	m[zerolog.MessageFieldName] = fmt.Sprintf("[%s] %s %-5s %s", m["destination"], m["status_code"], m["method"], m["url"])

	for _, key := range requestLineKeys {
		delete(m, key)
	}

	return nil
}
