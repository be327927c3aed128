// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package session signs and verifies the viewer identity stored in the Access cookie.
//
// The cookie is a paseto v4.public token. Its subject is the upstream user ID and
// the "name" claim is the username. Anything that fails verification is treated as
// an anonymous viewer by callers.
package session

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

// domain separation key. if you change it, past tokens will become invalid.
const implicit = "DailyFE viewer session"

const (
	audience    = "dailyfe"
	usernameKey = "name"

	// Lifetime of an Access token.
	DefaultLifetime = 30 * 24 * time.Hour
)

var errEmptyViewerID = errors.New("cannot sign a session for an anonymous viewer")

// Viewer is the signed-in user as far as this server knows. The zero value is anonymous.
type Viewer struct {
	ID       string
	Username string
}

// LoggedIn reports whether the viewer is authenticated.
func (v Viewer) LoggedIn() bool {
	return v.ID != ""
}

// Trigger names the action that made the login prompt appear.
type Trigger string

const (
	// TriggerFilter is used when an anonymous viewer tries to change their feed filters.
	TriggerFilter Trigger = "filter"
	// TriggerMainButton is used for the plain sign in link.
	TriggerMainButton Trigger = "main button"
)

// NewSecretKey makes a fresh v4.public secret key.
func NewSecretKey() paseto.V4AsymmetricSecretKey {
	return paseto.NewV4AsymmetricSecretKey()
}

// NewSecretKeyHex makes a fresh secret key in the hex form accepted by ParseSecretKeyHex.
func NewSecretKeyHex() string {
	return NewSecretKey().ExportHex()
}

// ParseSecretKeyHex decodes a hex encoded v4.public secret key.
func ParseSecretKeyHex(hex string) (paseto.V4AsymmetricSecretKey, error) {
	key, err := paseto.NewV4AsymmetricSecretKeyFromHex(hex)
	if err != nil {
		return paseto.V4AsymmetricSecretKey{}, fmt.Errorf("invalid session secret key: %w", err)
	}

	return key, nil
}

// Signer issues and checks Access tokens. It is safe for concurrent use.
type Signer struct {
	secret   paseto.V4AsymmetricSecretKey
	public   paseto.V4AsymmetricPublicKey
	parser   paseto.Parser
	lifetime time.Duration
}

// NewSigner returns a Signer using key and DefaultLifetime.
func NewSigner(key paseto.V4AsymmetricSecretKey) *Signer {
	return &Signer{
		secret: key,
		// public key can be derived from the secret key, so it is only computed once here
		public: key.Public(),
		parser: paseto.MakeParser([]paseto.Rule{
			paseto.NotExpired(),
			paseto.ForAudience(audience),
		}),
		lifetime: DefaultLifetime,
	}
}

// Lifetime is how long issued tokens stay valid.
func (s *Signer) Lifetime() time.Duration {
	return s.lifetime
}

// Sign issues a token for v, valid from now for the signer's lifetime.
func (s *Signer) Sign(v Viewer, now time.Time) (string, error) {
	if !v.LoggedIn() {
		return "", errEmptyViewerID
	}

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.lifetime))
	token.SetAudience(audience)
	token.SetSubject(v.ID)
	token.SetString(usernameKey, v.Username)

	return token.V4Sign(s.secret, []byte(implicit)), nil
}

// Verify checks the signature and expiry of signed and returns the viewer inside.
func (s *Signer) Verify(signed string) (Viewer, error) {
	token, err := s.parser.ParseV4Public(s.public, signed, []byte(implicit))
	if err != nil {
		return Viewer{}, fmt.Errorf("invalid session token: %w", err)
	}

	id, err := token.GetSubject()
	if err != nil || id == "" {
		return Viewer{}, fmt.Errorf("session token has no subject: %w", errEmptyViewerID)
	}

	username, _ := token.GetString(usernameKey)

	return Viewer{ID: id, Username: username}, nil
}
