package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	token := signedToken(t, jwt.MapClaims{
		"id":    42,
		"email": "jane@example.com",
		"name":  "Jane",
		"role":  "user",
		"exp":   exp,
	})

	claims, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "42", claims.Identity())
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "Jane", claims.Name)
	assert.Equal(t, exp, claims.ExpiresAt.Unix())
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(time.Now().Add(2*time.Hour)))
}

func TestDecodeTokenWithoutExp(t *testing.T) {
	claims, err := DecodeToken(signedToken(t, jwt.MapClaims{"email": "jane@example.com", "role": map[string]interface{}{"name": "admin"}}))
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.IsZero())
	assert.False(t, claims.Expired(time.Now().Add(100*24*time.Hour)))
	assert.Equal(t, "jane@example.com", claims.Identity())
	assert.Equal(t, "admin", claims.Role)
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	_, err := DecodeToken("")
	assert.Error(t, err)

	_, err = DecodeToken("not.a.jwt")
	assert.Error(t, err)
}
