// ABOUTME: Auth request/response models for the session cookie flow
// ABOUTME: Defines login contracts and the per-request authentication state

package models

import "time"

// LoginRequest represents credentials sent to the backend
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the backend's reply to a successful credential exchange.
// Backends differ on the token key; both are accepted.
type LoginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	User        *User  `json:"user,omitempty"`
}

// BearerToken returns whichever token field the backend populated
func (r LoginResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// LoginResult is the normalized outcome of a login attempt
type LoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"-"`
	User    *User  `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Session is the client-held proof of authentication
type Session struct {
	Token     string    `json:"-"` // Never expose to client
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user,omitempty"`
}

// AuthState is resolved once per request and read by every handler
type AuthState struct {
	Token           string `json:"-"`
	User            *User  `json:"user,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// HasToken reports whether a token cookie was presented
func (s AuthState) HasToken() bool {
	return s.Token != ""
}
