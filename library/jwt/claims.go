package jwt

import (
	jwtLib "github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the admin session cookie.
type SessionClaims struct {
	jwtLib.RegisteredClaims
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}
