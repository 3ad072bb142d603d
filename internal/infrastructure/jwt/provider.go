package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/drughub-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields. Permissions are baked in at mint
// time; revoking a role does not touch tokens already issued.
type Claims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 access tokens. The signing key is
// process-wide configuration injected at construction; swapping it requires
// a restart, not a code change.
type Provider struct {
	secret []byte
	expiry time.Duration
}

func NewProvider(secret string, expiry time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &Provider{secret: []byte(secret), expiry: expiry}, nil
}

// Mint produces a signed token for subject expiring after ttl. A ttl of 0
// uses the provider's configured default.
func (p *Provider) Mint(subject string, ttl time.Duration, permissions []string) (string, error) {
	if ttl == 0 {
		ttl = p.expiry
	}
	if permissions == nil {
		permissions = []string{}
	}
	claims := Claims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify parses and validates a signed token, discriminating expiry,
// signature mismatch and structural corruption.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q: %w", t.Method.Alg(), domain.ErrMalformed)
		}
		return p.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", domain.ErrExpired)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("token signature mismatch: %w", domain.ErrBadSignature)
		case errors.Is(err, domain.ErrMalformed):
			return nil, err
		default:
			return nil, fmt.Errorf("token parse: %v: %w", err, domain.ErrMalformed)
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrMalformed)
	}
	return claims, nil
}
