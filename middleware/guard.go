// ABOUTME: Route guard evaluated before any page handler runs
// ABOUTME: Pure path classification plus a redirect decision on token presence

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
)

type Access int

const (
	Public Access = iota
	Private
)

func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "private"
}

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// exemptPrefixes are never guarded: JSON endpoints, assets and probes.
var exemptPrefixes = []string{"/api/", "/static/"}

var exemptPaths = map[string]bool{
	"/healthz":     true,
	"/favicon.ico": true,
}

// IsExempt reports whether path bypasses the guard entirely.
func IsExempt(path string) bool {
	if exemptPaths[path] {
		return true
	}
	for _, p := range exemptPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Classify returns Public for "/", any path starting with "/courses",
// "/login" and "/register"; everything else is Private.
func Classify(path string) Access {
	switch {
	case path == "/", path == LoginPath, path == "/register":
		return Public
	case strings.HasPrefix(path, "/courses"):
		return Public
	default:
		return Private
	}
}

// IsAuthPage reports whether path is a login or registration page.
func IsAuthPage(path string) bool {
	return path == LoginPath || path == "/register"
}

// Decide returns the redirect target for a navigation, or "" to allow it.
// It checks token presence only, never validity.
func Decide(path string, hasToken bool) string {
	switch {
	case IsAuthPage(path) && hasToken:
		return DashboardPath
	case Classify(path) == Private && !hasToken:
		return LoginPath
	default:
		return ""
	}
}

// TokenSource reports whether a request carries a session token.
type TokenSource interface {
	Token(r *http.Request) (string, bool)
}

// Guard redirects before render according to Decide.
func Guard(tokens TokenSource) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if IsExempt(r.URL.Path) {
				next(w, r)
				return
			}
			_, hasToken := tokens.Token(r)
			if target := Decide(r.URL.Path, hasToken); target != "" {
				slog.Debug("Route guard redirect", "path", r.URL.Path, "to", target)
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}
