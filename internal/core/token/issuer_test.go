package token

import (
	"testing"
	"time"
)

func TestIssuer_MintAndVerify(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute)

	access, err := issuer.MintAccess("user_1", BindingHash("a@x.com", "hash"), time.Now())
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := issuer.Verify(access)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "user_1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Hash != BindingHash("a@x.com", "hash") {
		t.Fatalf("unexpected binding hash: %s", claims.Hash)
	}
}

func TestIssuer_Verify_RejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute)

	access, err := issuer.MintAccess("user_1", "h", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := issuer.Verify(access); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestIssuer_VerifyExpired_AcceptsExpiredSignatureValid(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute)

	access, err := issuer.MintAccess("user_1", "h", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := issuer.VerifyExpired(access)
	if err != nil {
		t.Fatalf("expected expired-but-signed token to be accepted: %v", err)
	}
	if claims.Subject != "user_1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
}

func TestIssuer_VerifyExpired_RejectsBadSignature(t *testing.T) {
	issuer := NewIssuer("secret", 15*time.Minute)
	other := NewIssuer("other-secret", 15*time.Minute)

	access, err := other.MintAccess("user_1", "h", time.Now())
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := issuer.VerifyExpired(access); err == nil {
		t.Fatalf("expected bad signature to be rejected")
	}
}

func TestIssuer_NewRefresh_Unique(t *testing.T) {
	issuer := NewIssuer("secret", 0)
	if issuer.NewRefresh() == issuer.NewRefresh() {
		t.Fatalf("refresh tokens must be unique")
	}
}

func TestBindingHash_Deterministic(t *testing.T) {
	a := BindingHash("a@x.com", "hash1")
	if a != BindingHash("a@x.com", "hash1") {
		t.Fatalf("binding hash must be deterministic")
	}
	if a == BindingHash("a@x.com", "hash2") {
		t.Fatalf("binding hash must change with the password hash")
	}
	if a == BindingHash("b@x.com", "hash1") {
		t.Fatalf("binding hash must change with the email")
	}
}
