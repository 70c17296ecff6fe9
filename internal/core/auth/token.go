// Package auth holds the credential primitives: bcrypt password hashing and
// HS256 bearer tokens. Nothing here performs I/O.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/switchserver/identity/internal/core/domain"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// tokenClaims is the JWT payload: the identity triple plus registered claims.
type tokenClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with a server-held secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager. A non-positive ttl means DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token manager: secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of m reading time from now. Used by tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for claims. The expiry is always now+ttl; any
// ExpiresAt on the input is ignored.
func (m *TokenManager) Issue(claims domain.Claims) (string, error) {
	now := m.now()
	tc := tokenClaims{
		ID:    claims.ID,
		Email: claims.Email,
		Role:  string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and returns its claims. Every failure (bad signature,
// unexpected algorithm, malformed input, missing or past expiry) collapses
// into domain.ErrInvalidToken.
func (m *TokenManager) Verify(token string) (*domain.Claims, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	role := domain.Role(tc.Role)
	if tc.ID == "" || !role.Valid() {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Claims{
		ID:        tc.ID,
		Email:     tc.Email,
		Role:      role,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}
