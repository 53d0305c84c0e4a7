// ABOUTME: Per-request session resolution middleware
// ABOUTME: Resolves the AuthState once and exposes it read-only through the request context

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MohamedIjlal27/LMS/models"
)

const authStateKey contextKey = "authState"

// Resolver computes the AuthState for a request. Implemented by services.Gateway.
type Resolver interface {
	Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) models.AuthState
}

// Session resolves the session for every request and stores it in the context.
func Session(res Resolver) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if skipsSession(r.URL.Path) {
				next(w, r)
				return
			}
			state := res.Resolve(r.Context(), w, r)
			next(w, r.WithContext(WithAuthState(r.Context(), state)))
		}
	}
}

// WithAuthState returns a context carrying state.
func WithAuthState(ctx context.Context, state models.AuthState) context.Context {
	return context.WithValue(ctx, authStateKey, state)
}

// FromContext returns the resolved AuthState, or the zero value when the
// request did not pass through Session.
func FromContext(ctx context.Context) models.AuthState {
	state, _ := ctx.Value(authStateKey).(models.AuthState)
	return state
}

// skipsSession reports whether path never needs the caller's identity.
func skipsSession(path string) bool {
	return exemptPaths[path] || strings.HasPrefix(path, "/static/")
}
