package token

import (
	"strings"
	"testing"
	"time"
)

func TestVerification_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v := NewVerification(PurposeEmail, 24*time.Hour, now)

	if v.Nonce == "" {
		t.Fatalf("expected non-empty nonce")
	}
	if !v.ExpiresAt.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected expiry: %v", v.ExpiresAt)
	}

	encoded := v.Encode()
	if !strings.HasPrefix(encoded, v.Nonce+"::email::") {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	parsed, err := ParseVerification(encoded)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.Nonce != v.Nonce || parsed.Purpose != PurposeEmail || !parsed.ExpiresAt.Equal(v.ExpiresAt) {
		t.Fatalf("round trip mismatch: %+v vs %+v", parsed, v)
	}
}

func TestParseVerification_Failures(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no separators", "just-a-nonce"},
		{"two parts", "nonce::email"},
		{"four parts", "nonce::email::2024-05-01T12:00:00Z::extra"},
		{"unknown purpose", "nonce::session::2024-05-01T12:00:00Z"},
		{"bad expiry", "nonce::email::yesterday"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseVerification(tc.input); err == nil {
				t.Fatalf("expected parse error for %q", tc.input)
			}
		})
	}
}

func TestVerification_ExpiredAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v := NewVerification(PurposePassword, 15*time.Minute, now)

	if v.ExpiredAt(now.Add(14 * time.Minute)) {
		t.Fatalf("token should still be valid")
	}
	if !v.ExpiredAt(now.Add(16 * time.Minute)) {
		t.Fatalf("token should be expired")
	}
}
