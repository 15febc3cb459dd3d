// Package auth provides JWT tokens, password hashing, and the HTTP
// middleware that turns a bearer token into a caller identity.
//
// Tokens are stateless HMAC-SHA256 JWTs: the userID rides in the standard
// "sub" claim and the admin flag in a private "adm" claim, so no session
// store or DB lookup is needed to authenticate a request.
//
// Two independent secrets are in play:
//   - the access secret signs login tokens (1 hour lifetime)
//   - the reset secret signs password-reset tokens (also 1 hour), so a
//     leaked access token can never be replayed as a reset token or vice
//     versa
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer         = "travelmate"
	accessTokenTTL = time.Hour
	resetTokenTTL  = time.Hour

	// resetAudience tags reset tokens so the two token kinds can't be
	// confused even if the secrets were ever set to the same value.
	resetAudience = "password-reset"
)

// TokenService handles JWT creation and validation for both access and
// password-reset tokens.
type TokenService struct {
	secret      []byte
	resetSecret []byte
}

// NewTokenService creates a TokenService. Both secrets should be at least
// 32 bytes of random data in production (openssl rand -hex 32).
func NewTokenService(secret, resetSecret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if len(resetSecret) < 16 {
		return nil, errors.New("auth: JWT reset secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), resetSecret: []byte(resetSecret)}, nil
}

// claims is the JWT payload: standard registered claims plus the admin flag.
type claims struct {
	Admin bool `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates and signs an access token for the given user.
func (s *TokenService) Generate(userID string, isAdmin bool) (string, error) {
	return s.GenerateWithDuration(userID, isAdmin, accessTokenTTL)
}

// GenerateWithDuration creates an access token with a custom expiry.
// Used by tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, isAdmin bool, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Admin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies an access token, returning the userID and
// admin flag it encodes.
//
// The jwt library checks signature, expiry, and issuer; WithValidMethods
// pins HS256 so an attacker can't downgrade the algorithm.
func (s *TokenService) Validate(tokenStr string) (string, bool, error) {
	c, err := s.parse(tokenStr, s.secret, nil)
	if err != nil {
		return "", false, err
	}
	return c.Subject, c.Admin, nil
}

// GenerateReset creates a password-reset token for the given user, signed
// with the dedicated reset secret and tagged with the reset audience.
func (s *TokenService) GenerateReset(userID string) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{resetAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(resetTokenTTL)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.resetSecret)
	if err != nil {
		return "", fmt.Errorf("auth: signing reset token: %w", err)
	}

	return signed, nil
}

// ValidateReset verifies a password-reset token and returns the userID it
// was issued for. Access tokens fail here: wrong secret, wrong audience.
func (s *TokenService) ValidateReset(tokenStr string) (string, error) {
	c, err := s.parse(tokenStr, s.resetSecret, []jwt.ParserOption{jwt.WithAudience(resetAudience)})
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

func (s *TokenService) parse(tokenStr string, key []byte, extra []jwt.ParserOption) (*claims, error) {
	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	}, extra...)

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return c, nil
}
