// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
DailyFE serves the daily.dev tag feed pages: the posts of one tag, with
follow and block controls for signed-in viewers.
*/
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core/audit"
	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/i18n"
	"codeberg.org/dailyfe/dailyfe/server/assets"
	"codeberg.org/dailyfe/dailyfe/server/router"
	"codeberg.org/dailyfe/dailyfe/server/routes"
)

// http.Server timeouts (gosec G112).
const (
	readHeaderTimeout = 15 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Stylesheet, icons, robots.txt and gettext catalogues.
//
//go:embed assets/css assets/icons assets/robots.txt
//go:embed all:po
var embeddedContent embed.FS

//nolint:gochecknoinits // assets.FS must be set before any package reads it
func init() {
	assets.FS = embeddedContent
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run starts the server and blocks until it fails or SIGINT/SIGTERM asks it
// to stop. In-flight requests get shutdownTimeout to finish.
func run() error {
	audit.SetDefaultLogger()

	if err := setup(); err != nil {
		return err
	}

	listener, err := listen()
	if err != nil {
		return err
	}

	r := router.NewRouter()
	r.DefineRoutes()
	r.RegisterMiddleware()

	server := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	served := make(chan error, 1)

	go func() {
		served <- server.Serve(listener)
	}()

	select {
	case err := <-served:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}

// setup initializes the global state the handlers read, in dependency order.
func setup() error {
	if err := config.Global.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := i18n.Setup(); err != nil {
		return fmt.Errorf("failed to initialize i18n engine: %w", err)
	}

	requests.Setup()

	if err := routes.Setup(); err != nil {
		return fmt.Errorf("failed to initialize page store: %w", err)
	}

	return nil
}
