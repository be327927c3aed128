// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/core/session"
)

// ErrInvalidToken is returned when the API does not recognize a token.
var ErrInvalidToken = errors.New("token was not accepted by the API")

// FetchViewer asks the API who token belongs to.
func FetchViewer(ctx context.Context, client *requests.Client, token string) (session.Viewer, error) {
	if token == "" {
		return session.Viewer{}, ErrInvalidToken
	}

	data, err := client.Do(ctx, requests.RequestOptions{
		OperationName: "Whoami",
		Query:         whoamiQuery,
		Token:         token,
	})
	if err != nil {
		if requests.IsUnauthenticated(err) {
			return session.Viewer{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}

		return session.Viewer{}, fmt.Errorf("failed to fetch viewer: %w", err)
	}

	whoami := gjson.GetBytes(data, "whoami")

	viewer := session.Viewer{
		ID:       whoami.Get("id").String(),
		Username: whoami.Get("username").String(),
	}
	if !viewer.LoggedIn() {
		return session.Viewer{}, ErrInvalidToken
	}

	return viewer, nil
}
