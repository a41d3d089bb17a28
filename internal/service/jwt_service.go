package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService emite y valida los dos tipos de token: acceso y verificacion de email.
// Comparten secreto pero el claim "typ" impide usar uno en lugar del otro.
type JWTService struct {
	secret    []byte
	accessTTL time.Duration
	emailTTL  time.Duration
	issuer    string
	now       func() time.Time
}

type Claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

const (
	tokenTypeAccess = "access"
	tokenTypeEmail  = "email_verification"

	DefaultAccessTTL     = 15 * time.Minute
	DefaultEmailTokenTTL = 60 * time.Minute
)

var (
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrSecretNotConfigured   = errors.New("jwt secret not configured")
)

func NewJWTService(secret string, accessTTL, emailTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if emailTTL <= 0 {
		emailTTL = DefaultEmailTokenTTL
	}
	return &JWTService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		emailTTL:  emailTTL,
		issuer:    "contact-book",
		now:       time.Now,
	}
}

// IssueAccess firma un access token cuyo subject es el id del usuario.
// ttl <= 0 usa el TTL configurado.
func (s *JWTService) IssueAccess(subjectID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.accessTTL
	}
	return s.sign(subjectID, tokenTypeAccess, ttl)
}

// IssueEmailToken firma un token de verificacion cuyo subject es el email.
func (s *JWTService) IssueEmailToken(email string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.emailTTL
	}
	return s.sign(email, tokenTypeEmail, ttl)
}

// DecodeAccess devuelve el id del usuario. Firma invalida, expiracion o
// payload malformado producen el mismo ErrInvalidToken.
func (s *JWTService) DecodeAccess(token string) (string, error) {
	subject, ok := s.decode(token, tokenTypeAccess)
	if !ok {
		return "", ErrInvalidToken
	}
	return subject, nil
}

func (s *JWTService) DecodeEmailToken(token string) (string, error) {
	subject, ok := s.decode(token, tokenTypeEmail)
	if !ok {
		return "", ErrInvalidOrExpiredToken
	}
	return subject, nil
}

func (s *JWTService) sign(subject, tokenType string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSecretNotConfigured
	}
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("token subject is required")
	}
	now := s.now().UTC()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) decode(tokenString, tokenType string) (string, bool) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return "", false
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", false
	}
	if claims.TokenType != tokenType || strings.TrimSpace(claims.Subject) == "" {
		return "", false
	}
	return claims.Subject, true
}
