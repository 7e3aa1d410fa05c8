package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestSignAndParse verifies a signed token parses back to the same claims.
func TestSignAndParse(t *testing.T) {
	j, err := New([]byte("secret"))
	require.NoError(t, err)

	claims := NewSessionClaims("uid-1", "admin@example.com", true, time.Now(), time.Hour)
	token, err := j.Sign(claims)
	require.NoError(t, err)

	got, err := j.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "uid-1", got.Subject)
	require.Equal(t, "admin@example.com", got.Email)
	require.True(t, got.IsAdmin)
}

// TestParseExpired verifies expired tokens are rejected.
func TestParseExpired(t *testing.T) {
	j, err := New([]byte("secret"))
	require.NoError(t, err)

	claims := NewSessionClaims("uid-1", "", true, time.Now().Add(-2*time.Hour), time.Hour)
	token, err := j.Sign(claims)
	require.NoError(t, err)

	_, err = j.Parse(token)
	require.Error(t, err)
}

// TestParseWrongSecret verifies tokens signed by another secret are rejected.
func TestParseWrongSecret(t *testing.T) {
	a, err := New([]byte("secret-a"))
	require.NoError(t, err)
	b, err := New([]byte("secret-b"))
	require.NoError(t, err)

	token, err := a.Sign(NewSessionClaims("uid", "", true, time.Now(), time.Hour))
	require.NoError(t, err)

	_, err = b.Parse(token)
	require.Error(t, err)
}

// TestNewEmptySecret verifies an empty secret is refused.
func TestNewEmptySecret(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
