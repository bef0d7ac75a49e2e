package server

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dastanaron/bookmarks/internal/session"
)

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is returned by a successful POST /login
type LoginResponse struct {
	Token string `json:"token"`
}

// Authenticator checks the admin password and issues session tokens
type Authenticator struct {
	password string
	store    SessionStore
	ttl      time.Duration
}

// NewAuthenticator creates an authenticator. With an empty password every login fails.
func NewAuthenticator(password string, store SessionStore, ttl time.Duration) *Authenticator {
	return &Authenticator{password: password, store: store, ttl: ttl}
}

// generateToken returns 32 random bytes as hex
func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Login returns a new session token for the right password
func (a *Authenticator) Login(ctx context.Context, password string) (string, error) {
	if a.password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", session.ErrUnauthorized
	}
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := a.store.Create(ctx, token, a.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Logout forgets the token; unknown tokens are ignored
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.store.Delete(ctx, token)
}

// Authorized reports whether the request carries a live session token
func (a *Authenticator) Authorized(r *http.Request) (bool, error) {
	token := getTokenFromHeader(r)
	if token == "" {
		return false, nil
	}
	return a.store.Valid(r.Context(), token)
}

func getTokenFromHeader(r *http.Request) string {
	const bearerPrefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimSpace(auth[len(bearerPrefix):])
	}
	return strings.TrimSpace(auth)
}
