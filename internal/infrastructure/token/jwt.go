// Package token issues and verifies the HS256 session tokens handed out at
// login. Tokens are stateless: any process holding the secret can verify them.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sweetshop/sweet-api/internal/core/domain"
)

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by a session token. Subject holds the user ID.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// JWT signs and verifies session tokens with a shared secret.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

// NewJWT returns a JWT issuer. A non-positive ttl falls back to DefaultTTL.
func NewJWT(secret string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWT{secret: []byte(secret), ttl: ttl}
}

// TTL reports how long issued tokens stay valid.
func (j *JWT) TTL() time.Duration {
	return j.ttl
}

// Issue signs a token for user valid from now until now+ttl.
func (j *JWT) Issue(user *domain.User, now time.Time) (string, error) {
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm and expiry and returns the claims.
func (j *JWT) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
