// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package htb

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned for access tokens without an exp claim.
var ErrNoExpiry = errors.New("access token has no exp claim")

// Credential is an HTB access token and its expiry.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// ParseCredential reads the exp claim of an HTB access token.
// The signature is not verified: the token is only ever sent back to the
// issuer, and its expiry decides when to log in again.
func ParseCredential(token string) (*Credential, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return nil, ErrNoExpiry
	}
	return &Credential{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// IsValid reports whether the credential can still be used at now.
// A credential is valid strictly before its expiry.
func (c *Credential) IsValid(now time.Time) bool {
	return c != nil && c.Token != "" && now.Before(c.ExpiresAt)
}

// TTL returns how long the credential remains valid after now.
func (c *Credential) TTL(now time.Time) time.Duration {
	if !c.IsValid(now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
