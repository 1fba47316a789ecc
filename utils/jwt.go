package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenClaims is the part of the backend token payload the front end reads.
// The token is issued and verified by the backend; here it is only decoded.
type TokenClaims struct {
	Subject   string
	Email     string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an exp claim that has passed.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Identity returns a stable per-user key: the subject, or the email.
func (c *TokenClaims) Identity() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.Email
}

// DecodeToken reads the payload of a JWT without verifying its signature.
func DecodeToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	parser := new(jwt.Parser)
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	out := &TokenClaims{
		Subject: claimString(claims, "sub"),
		Email:   claimString(claims, "email"),
		Name:    claimString(claims, "name"),
		Role:    claimString(claims, "role"),
	}
	if out.Subject == "" {
		out.Subject = claimString(claims, "id")
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}

// claimString handles both string and numeric claim values.
func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]interface{}:
		if name, ok := v["name"].(string); ok {
			return name
		}
	}
	return ""
}
