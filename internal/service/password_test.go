package service

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	for _, pw := range []string{"secret1", "a much longer passphrase", "ñandú-123"} {
		hash, err := h.Hash(pw)
		if err != nil {
			t.Fatalf("hash %q: %v", pw, err)
		}
		if hash == pw {
			t.Fatalf("hash must not equal the password")
		}
		if !h.Verify(pw, hash) {
			t.Fatalf("expected %q to verify", pw)
		}
		if h.Verify(pw+"x", hash) {
			t.Fatalf("expected wrong password to fail for %q", pw)
		}
	}
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	a, _ := h.Hash("secret1")
	b, _ := h.Hash("secret1")
	if a == b {
		t.Fatalf("expected different hashes for the same password")
	}
}

func TestBcryptHasher_EmptyInputs(t *testing.T) {
	h := NewBcryptHasher(0)
	if _, err := h.Hash(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
	if h.Verify("secret1", "") {
		t.Fatalf("empty hash must never verify")
	}
}
