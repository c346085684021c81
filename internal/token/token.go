// Package token signs and verifies the JWT bearer tokens used for login
// sessions and email verification. Tokens are HS256-signed with a shared
// secret; there is no refresh or rotation, a token is valid for its whole
// signed lifetime or not at all.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid covers bad signatures, malformed tokens and expired exp claims.
// Callers must not distinguish between those cases.
var ErrInvalid = errors.New("invalid or expired token")

// Claims is the signed claim set: subject carries the user id, Email the
// account email.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and validates signed tokens with a default expiry policy.
type Service struct {
	secret     []byte
	issuer     string
	defaultTTL time.Duration
	now        func() time.Time // injectable clock for testing
}

// NewService creates a token service. defaultTTL applies to Generate;
// GenerateWithTTL overrides it per call.
func NewService(secret string, issuer string, defaultTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		issuer:     issuer,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Generate signs a token for the given subject and email using the default
// expiry policy.
func (s *Service) Generate(subject, email string) (string, error) {
	return s.GenerateWithTTL(subject, email, s.defaultTTL)
}

// GenerateWithTTL signs a token with an explicit lifetime. The returned
// expiry is the signed exp claim, so callers that persist it share a single
// source of truth with the token itself.
func (s *Service) GenerateWithTTL(subject, email string, ttl time.Duration) (string, error) {
	signed, _, err := s.generate(subject, email, ttl)
	return signed, err
}

// GenerateWithExpiry is GenerateWithTTL but also returns the exp claim.
func (s *Service) GenerateWithExpiry(subject, email string, ttl time.Duration) (string, time.Time, error) {
	return s.generate(subject, email, ttl)
}

func (s *Service) generate(subject, email string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(ttl)

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Validate parses and verifies a token string. Every failure mode collapses
// to ErrInvalid.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	if err != nil {
		return nil, ErrInvalid
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
