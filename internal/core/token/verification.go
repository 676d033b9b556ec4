// Package token implements the two credential formats minted by the auth
// core: compound one-time verification tokens (email confirmation, password
// reset) and signed JWT access tokens paired with opaque refresh tokens.
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Purpose tags a verification token with the flow it belongs to.
type Purpose string

const (
	PurposeEmail    Purpose = "email"
	PurposePassword Purpose = "password"
)

const verificationSep = "::"

// Verification is a one-time, time-bounded credential stored verbatim on the
// user record. Wire format: "<nonce>::<purpose>::<RFC 3339 expiry>".
type Verification struct {
	Nonce     string
	Purpose   Purpose
	ExpiresAt time.Time
}

// NewVerification mints a fresh token for the given purpose, expiring ttl
// from now.
func NewVerification(purpose Purpose, ttl time.Duration, now time.Time) Verification {
	return Verification{
		Nonce:     uuid.NewString(),
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl).UTC(),
	}
}

// Encode serializes the token into its wire format.
func (v Verification) Encode() string {
	return v.Nonce + verificationSep + string(v.Purpose) + verificationSep + v.ExpiresAt.UTC().Format(time.RFC3339)
}

// ExpiredAt reports whether the token is past its expiry at the given instant.
func (v Verification) ExpiredAt(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// ParseVerification decodes a wire-format token. It fails on a wrong part
// count, an unknown purpose, or an unparseable expiry; expiry itself is not
// checked here.
func ParseVerification(s string) (Verification, error) {
	parts := strings.Split(s, verificationSep)
	if len(parts) != 3 {
		return Verification{}, fmt.Errorf("verification token: expected 3 parts, got %d", len(parts))
	}

	purpose := Purpose(parts[1])
	if purpose != PurposeEmail && purpose != PurposePassword {
		return Verification{}, fmt.Errorf("verification token: unknown purpose %q", parts[1])
	}

	expiresAt, err := time.Parse(time.RFC3339, parts[2])
	if err != nil {
		return Verification{}, fmt.Errorf("verification token: bad expiry: %w", err)
	}

	return Verification{Nonce: parts[0], Purpose: purpose, ExpiresAt: expiresAt}, nil
}
