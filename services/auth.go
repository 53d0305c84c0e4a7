// ABOUTME: Auth gateway: the single writer of the browser session
// ABOUTME: Performs credential exchange, logout and once-per-request session resolution

package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MohamedIjlal27/LMS/models"
)

// AuthBackend is the subset of the backend API the gateway needs.
type AuthBackend interface {
	Login(ctx context.Context, creds models.LoginRequest) (models.LoginResponse, error)
	Me(ctx context.Context, token string) (models.User, error)
	Logout(ctx context.Context, token string) error
}

type Gateway struct {
	api          AuthBackend
	store        *SessionStore
	sessionDays  int
	rememberDays int
}

func NewGateway(api AuthBackend, store *SessionStore, sessionDays, rememberDays int) *Gateway {
	return &Gateway{
		api:          api,
		store:        store,
		sessionDays:  sessionDays,
		rememberDays: rememberDays,
	}
}

// Store exposes the read side of the session for middleware.
func (g *Gateway) Store() *SessionStore {
	return g.store
}

// Login exchanges credentials for a token. Cookies are written only when
// both the token and the profile are known.
func (g *Gateway) Login(ctx context.Context, w http.ResponseWriter, email, password string, remember bool) models.LoginResult {
	resp, err := g.api.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return models.LoginResult{Error: loginMessage(err)}
	}

	token := resp.BearerToken()
	if token == "" {
		slog.Error("Login response carried no token")
		return models.LoginResult{Error: MsgGenericFailure}
	}

	user := resp.User
	if user == nil || user.ID == "" {
		me, err := g.api.Me(ctx, token)
		if err != nil {
			slog.Warn("Profile fetch after login failed", "error", err)
			return models.LoginResult{Error: loginMessage(err)}
		}
		user = &me
	}

	days := g.sessionDays
	if remember {
		days = g.rememberDays
	}
	g.store.SetSession(w, token, days, user)

	slog.Info("Login succeeded", "user_id", user.ID, "role", user.Role, "remember", remember)
	return models.LoginResult{Success: true, Token: token, User: user}
}

func loginMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return MsgInvalidCredentials
	case errors.Is(err, ErrTransport), errors.Is(err, ErrUnavailable):
		return MsgGenericFailure
	default:
		return UserMessage(err)
	}
}

// Logout tells the backend (best effort) and clears the session.
func (g *Gateway) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if token, ok := g.store.Token(r); ok {
		if err := g.api.Logout(ctx, token); err != nil {
			slog.Debug("Backend logout failed, clearing session anyway", "error", err)
		}
	}
	g.store.ClearSession(w)
}

// Resolve computes the request's AuthState. A token without a cached profile
// is repaired from /auth/me; a 401 there clears the session.
func (g *Gateway) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) models.AuthState {
	token, ok := g.store.Token(r)
	if !ok {
		if g.store.HasProfile(r) {
			g.store.ClearSession(w)
		}
		return models.AuthState{}
	}

	if user, ok := g.store.User(r); ok {
		return models.AuthState{Token: token, User: user, IsAuthenticated: true}
	}

	me, err := g.api.Me(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			slog.Info("Stored token rejected, clearing session")
			g.store.ClearSession(w)
			return models.AuthState{}
		}
		// Keep the token and retry on the next request
		slog.Warn("Profile fetch failed", "error", err)
		return models.AuthState{Token: token, IsAuthenticated: true}
	}

	g.store.SetUser(w, token, g.sessionDays, &me)
	return models.AuthState{Token: token, User: &me, IsAuthenticated: true}
}

// HandleUnauthorized clears the session after a user-initiated action got a
// 401 and returns the message to surface on the login page.
func (g *Gateway) HandleUnauthorized(w http.ResponseWriter) string {
	g.store.ClearSession(w)
	return MsgSessionExpired
}
