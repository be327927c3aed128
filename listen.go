// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"

	"github.com/rs/zerolog/log"

	"codeberg.org/dailyfe/dailyfe/config"
)

var (
	errChmodSocket = errors.New("failed to change unix socket permissions")
	errChownSocket = errors.New("failed to change unix socket ownership")
)

// listen opens basic.unixSocket when set, else a TCP socket on basic.host
// and basic.port.
func listen() (net.Listener, error) {
	basic := config.Global.Basic

	if basic.UnixSocket != "" {
		l, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", basic.UnixSocket)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on unix socket %s: %w", basic.UnixSocket, err)
		}

		if err := prepareSocket(basic.UnixSocket, basic.UnixSocketPermissions, basic.UnixSocketUser, basic.UnixSocketGroup); err != nil {
			_ = l.Close()

			return nil, err
		}

		log.Info().Str("address", basic.UnixSocket).Msg("Listening on unix socket")

		return l, nil
	}

	l, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", net.JoinHostPort(basic.Host, basic.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s:%s: %w", basic.Host, basic.Port, err)
	}

	port := l.Addr().(*net.TCPAddr).Port //nolint:forcetypeassert // a tcp listener has a tcp address

	log.Info().
		Str("address", l.Addr().String()).
		Str("url", fmt.Sprintf("http://dailyfe.localhost:%d/tags/webdev", port)).
		Msg("Listening")

	return l, nil
}

// prepareSocket hands the socket file to owner and group, when set, and
// applies perm.
func prepareSocket(path string, perm os.FileMode, owner, group string) error {
	uid, err := lookupID(owner, func(name string) (string, error) {
		u, err := user.Lookup(name)
		if err != nil {
			return "", err
		}

		return u.Uid, nil
	})
	if err != nil {
		return fmt.Errorf("%w: user %q: %w", errChownSocket, owner, err)
	}

	gid, err := lookupID(group, func(name string) (string, error) {
		g, err := user.LookupGroup(name)
		if err != nil {
			return "", err
		}

		return g.Gid, nil
	})
	if err != nil {
		return fmt.Errorf("%w: group %q: %w", errChownSocket, group, err)
	}

	if uid != -1 || gid != -1 {
		if err := os.Chown(path, uid, gid); err != nil {
			return fmt.Errorf("%w: %w", errChownSocket, err)
		}
	}

	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("%w: %w", errChmodSocket, err)
	}

	return nil
}

// lookupID resolves a numeric id or a name. An empty value is -1, which
// os.Chown leaves unchanged.
func lookupID(value string, byName func(string) (string, error)) (int, error) {
	if value == "" {
		return -1, nil
	}

	if id, err := strconv.Atoi(value); err == nil {
		return id, nil
	}

	raw, err := byName(value)
	if err != nil {
		return -1, err
	}

	return strconv.Atoi(raw)
}
