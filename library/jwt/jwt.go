// Package jwt signs and parses session tokens.
package jwt

import (
	"time"

	"github.com/Laisky/errors/v2"
	jwtLib "github.com/golang-jwt/jwt/v5"
)

// JWT signs and verifies HS256 tokens with a shared secret.
type JWT struct {
	secret []byte
}

// New creates a signer, the secret must not be empty.
func New(secret []byte) (*JWT, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}

	return &JWT{secret: secret}, nil
}

// Sign signs claims and returns the compact token.
func (j *JWT) Sign(claims *SessionClaims) (string, error) {
	token := jwtLib.NewWithClaims(jwtLib.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return signed, nil
}

// Parse verifies the token signature and expiry and returns its claims.
func (j *JWT) Parse(token string) (*SessionClaims, error) {
	claims := new(SessionClaims)
	_, err := jwtLib.ParseWithClaims(token, claims,
		func(t *jwtLib.Token) (any, error) {
			return j.secret, nil
		},
		jwtLib.WithValidMethods([]string{jwtLib.SigningMethodHS256.Alg()}),
		jwtLib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}

	return claims, nil
}

// NewSessionClaims builds claims for subject that expire after ttl.
func NewSessionClaims(subject, email string, isAdmin bool, now time.Time, ttl time.Duration) *SessionClaims {
	return &SessionClaims{
		RegisteredClaims: jwtLib.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwtLib.NewNumericDate(now),
			ExpiresAt: jwtLib.NewNumericDate(now.Add(ttl)),
		},
		Email:   email,
		IsAdmin: isAdmin,
	}
}
