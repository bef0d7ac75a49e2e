package client

import (
	"context"
	"fmt"
	"net/http"
)

// LoginRequest is the credential payload of POST /login
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the session token granted by the backend
type LoginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the admin password for a session token
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var result LoginResponse
	if err := c.call(ctx, http.MethodPost, "/login", LoginRequest{Password: password}, &result); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("login failed: empty token in response")
	}
	return result.Token, nil
}

// Logout revokes the session token on the backend
func (c *Client) Logout(ctx context.Context) error {
	if err := c.call(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}
