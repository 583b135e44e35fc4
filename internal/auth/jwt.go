// Package auth provides session-token issuance, password hashing, and the
// middleware that guards protected routes.
//
// Session flow:
//  1. POST /signin-password verifies the password and mints a signed JWT
//  2. The handler stores the JWT in an HttpOnly "token" cookie
//  3. On protected routes, RequireAuth reads the cookie, validates the JWT,
//     and installs the caller's Identity in the request context
//
// Tokens are stateless: everything needed (user id, username, expiry) lives
// inside the signed payload, so validation needs no store lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed session lifetime. The cookie's MaxAge matches it.
const TokenTTL = 4 * 24 * time.Hour

const issuer = "credcloud"

// Identity is the authenticated caller asserted by a session token.
type Identity struct {
	UserID   string
	Username string
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_USER_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: the standard registered claims plus the
// username, so protected handlers know who is calling without a DB lookup.
// The "sub" claim carries the internal user ID.
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given identity.
//
// Token lifetime: 4 days (TokenTTL). After expiry the client must sign in
// again; there is no refresh flow.
//
// Signing algorithm: HS256 (HMAC-SHA256), symmetric — the same key signs
// and verifies.
func (s *TokenService) Generate(id Identity) (string, error) {
	return s.GenerateWithDuration(id, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to mint already-expired or short-lived tokens.
func (s *TokenService) GenerateWithDuration(id Identity, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
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

// Validate parses and verifies a JWT string, returning the identity it
// asserts.
//
// Checks performed by the jwt library: signature integrity, expiry, issuer,
// and signing algorithm (restricted to HS256 via WithValidMethods so an
// attacker cannot substitute a weaker algorithm).
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return Identity{}, fmt.Errorf("auth: token has no subject")
	}

	return Identity{UserID: c.Subject, Username: c.Username}, nil
}
