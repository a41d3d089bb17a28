package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTService_IssueDecodeAccess(t *testing.T) {
	svc := NewJWTService("secret", 0, 0)

	token, err := svc.IssueAccess("u1", 0)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	subject, err := svc.DecodeAccess(token)
	if err != nil {
		t.Fatalf("decode access: %v", err)
	}
	if subject != "u1" {
		t.Fatalf("expected subject u1, got %s", subject)
	}
}

func TestJWTService_IssueDecodeEmailToken(t *testing.T) {
	svc := NewJWTService("secret", 0, 0)

	token, err := svc.IssueEmailToken("a@x.com", 0)
	if err != nil {
		t.Fatalf("issue email token: %v", err)
	}
	email, err := svc.DecodeEmailToken(token)
	if err != nil {
		t.Fatalf("decode email token: %v", err)
	}
	if email != "a@x.com" {
		t.Fatalf("expected a@x.com, got %s", email)
	}
}

func TestJWTService_DefaultTTLs(t *testing.T) {
	svc := NewJWTService("secret", 0, 0)
	if svc.accessTTL != 15*time.Minute || svc.emailTTL != 60*time.Minute {
		t.Fatalf("unexpected default ttls: %v/%v", svc.accessTTL, svc.emailTTL)
	}
}

func TestJWTService_AccessTokenExpires(t *testing.T) {
	svc := NewJWTService("secret", 0, 0)
	issuedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.IssueAccess("u1", time.Minute)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(30 * time.Second) }
	if _, err := svc.DecodeAccess(token); err != nil {
		t.Fatalf("expected token valid before ttl, got %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := svc.DecodeAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after ttl, got %v", err)
	}
}

func TestJWTService_EmailTokenExpires(t *testing.T) {
	svc := NewJWTService("secret", 0, 0)
	issuedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.IssueEmailToken("a@x.com", 0)
	if err != nil {
		t.Fatalf("issue email token: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	if _, err := svc.DecodeEmailToken(token); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestJWTService_TokenClassesAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("secret", 0, 0)

	emailToken, _ := svc.IssueEmailToken("a@x.com", 0)
	if _, err := svc.DecodeAccess(emailToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("email token must not authenticate, got %v", err)
	}

	accessToken, _ := svc.IssueAccess("u1", 0)
	if _, err := svc.DecodeEmailToken(accessToken); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("access token must not verify email, got %v", err)
	}
}

func TestJWTService_RejectsTamperedAndForeignTokens(t *testing.T) {
	svc := NewJWTService("secret", 0, 0)
	other := NewJWTService("other-secret", 0, 0)

	foreign, _ := other.IssueAccess("u1", 0)
	if _, err := svc.DecodeAccess(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	token, _ := svc.IssueAccess("u1", 0)
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := svc.DecodeAccess(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered payload, got %v", err)
	}

	for _, bad := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := svc.DecodeAccess(bad); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", bad, err)
		}
	}
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	svc := NewJWTService("secret", 0, 0)
	now := time.Now().UTC()
	claims := Claims{
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "other-issuer",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.DecodeAccess(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestJWTService_RejectsEmptySecret(t *testing.T) {
	svc := NewJWTService("", 0, 0)
	if _, err := svc.IssueAccess("u1", 0); !errors.Is(err, ErrSecretNotConfigured) {
		t.Fatalf("expected ErrSecretNotConfigured, got %v", err)
	}
}
