// Package auth provides JWT issuing/validation, the identity-provider
// client, and the HTTP middleware that guards protected routes.
//
// AUTH FLOW:
//  1. The client obtains an access token from the identity provider.
//  2. POST /users exchanges it: we fetch the provider profile, upsert the
//     user, and issue a signed JWT whose subject is the internal user ID.
//  3. Subsequent requests carry "Authorization: Bearer <jwt>"; middleware
//     validates it and puts the claims in the request context.
//
// The JWT is stateless; there is no session storage. The signature (HMAC-SHA256
// over the secret) is what prevents tampering.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "betpool"

// tokenLifetime is deliberately long: the mobile client has no refresh
// flow, so users re-authenticate weekly.
const tokenLifetime = 7 * 24 * time.Hour

// Claims is the JWT payload. Subject carries the internal user ID; name
// and avatar ride along so /me can answer without a database lookup.
type Claims struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens with an HMAC secret. The
// same secret must be used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Generate creates and signs a token for the user.
func (s *TokenService) Generate(userID, name, avatarURL string) (string, error) {
	return s.generate(userID, name, avatarURL, tokenLifetime)
}

// GenerateWithDuration creates a token with a custom expiry. Used in tests.
func (s *TokenService) GenerateWithDuration(userID, name, avatarURL string, d time.Duration) (string, error) {
	return s.generate(userID, name, avatarURL, d)
}

func (s *TokenService) generate(userID, name, avatarURL string, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Name:      name,
		AvatarURL: avatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string, returning its claims.
//
// The algorithm is pinned to HS256 (WithValidMethods) so a token signed
// with "none" or an asymmetric scheme is rejected, and the issuer is
// pinned so tokens minted by other apps sharing a secret do not pass.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return c, nil
}
