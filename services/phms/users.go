package phms

import (
	"context"
	"errors"
	"net/http"

	"mindbloom/models"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/users/login", "", req, &resp)
	if errors.Is(err, ErrUnauthorized) {
		// On this endpoint a 401 means bad credentials, not an expired session.
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	}
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{Status: http.StatusBadGateway, Message: "Login failed"}
	}
	return &resp, nil
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, req models.SignupRequest) error {
	return c.do(ctx, http.MethodPost, "/api/users/register", "", req, nil)
}
