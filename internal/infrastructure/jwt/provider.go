package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-storefront-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsData is the identity snapshot embedded in a session token. It mirrors
// the user row at issuance time; a verified token is trusted without
// re-querying the user store unless the caller asks for role freshness.
type ClaimsData struct {
	Email    string `json:"email"`
	UserID   string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// Claims holds the JWT payload fields.
type Claims struct {
	Data ClaimsData `json:"data"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session tokens with a single
// process-wide secret injected at construction. Rotating the secret
// invalidates all outstanding tokens; expiry is the only other bound on
// token lifetime — there is no revocation list.
type Provider struct {
	secret []byte
	expiry time.Duration
}

// NewProvider builds a Provider. The secret must be non-empty; expiry
// defaults to 10 minutes when zero.
func NewProvider(secret string, expiry time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}
	if expiry <= 0 {
		expiry = 10 * time.Minute
	}
	return &Provider{secret: []byte(secret), expiry: expiry}, nil
}

func (p *Provider) Sign(data ClaimsData) (string, error) {
	now := time.Now()
	claims := Claims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify checks signature integrity and expiry. An expired but otherwise
// well-formed token yields domain.ErrTokenExpired; any signature mismatch,
// malformed payload, or tampering yields domain.ErrTokenInvalid.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%v: %w", err, domain.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%v: %w", err, domain.ErrTokenInvalid)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrTokenInvalid)
	}
	return claims, nil
}
