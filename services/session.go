// ABOUTME: Cookie-backed session store for the browser credential
// ABOUTME: Holds the bearer token cookie and a signed profile cookie, written only by the Gateway

package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"

	"github.com/MohamedIjlal27/LMS/models"
)

const (
	TokenCookie = "token"
	UserCookie  = "user"

	day = 24 * time.Hour
)

// profile is the signed user cookie. Binding ties it to the token cookie it
// was issued with, so it is ignored next to any other token.
type profile struct {
	User    models.User `json:"user"`
	Binding string      `json:"bnd"`
}

func tokenBinding(token string) string {
	sum := sha256.Sum256([]byte("token-binding:" + token))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}

// SessionStore persists the token and cached profile across page loads.
// The profile cookie is signed, not encrypted.
type SessionStore struct {
	codec  *securecookie.SecureCookie
	secure bool
	now    func() time.Time
}

// NewSessionStore derives the signing key from secret.
func NewSessionStore(secret string, secure bool) *SessionStore {
	hashKey := deriveKey("profile", secret)
	codec := securecookie.New(hashKey, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	// Cookie Max-Age governs lifetime; the codec only rejects year-old values
	codec.MaxAge(int((365 * day).Seconds()))
	return &SessionStore{codec: codec, secure: secure, now: time.Now}
}

func deriveKey(purpose, secret string) []byte {
	sum := sha256.Sum256([]byte(purpose + ":" + secret))
	return sum[:]
}

// SetSession writes both cookies. Lifetime is ttlDays, capped at the token's
// own expiry when it is a JWT. An already expired token is not persisted.
func (s *SessionStore) SetSession(w http.ResponseWriter, token string, ttlDays int, user *models.User) {
	maxAge, ok := s.maxAge(token, ttlDays)
	if !ok {
		slog.Warn("Refusing to persist expired token")
		return
	}
	http.SetCookie(w, s.cookie(TokenCookie, token, maxAge))
	s.writeUser(w, token, user, maxAge)
}

// SetUser repairs a missing profile cookie next to an existing token.
func (s *SessionStore) SetUser(w http.ResponseWriter, token string, ttlDays int, user *models.User) {
	maxAge, ok := s.maxAge(token, ttlDays)
	if !ok {
		return
	}
	s.writeUser(w, token, user, maxAge)
}

func (s *SessionStore) writeUser(w http.ResponseWriter, token string, user *models.User, maxAge int) {
	if user == nil {
		return
	}
	encoded, err := s.codec.Encode(UserCookie, profile{User: *user, Binding: tokenBinding(token)})
	if err != nil {
		slog.Warn("Failed to encode profile cookie", "error", err)
		return
	}
	http.SetCookie(w, s.cookie(UserCookie, encoded, maxAge))
}

// Token returns the raw token cookie. It is never validated here.
func (s *SessionStore) Token(r *http.Request) (string, bool) {
	c, err := r.Cookie(TokenCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// HasProfile reports whether a profile cookie was sent, valid or not.
func (s *SessionStore) HasProfile(r *http.Request) bool {
	c, err := r.Cookie(UserCookie)
	return err == nil && c.Value != ""
}

// User returns the cached profile issued with the current token cookie. A
// bad signature, a missing token or a profile bound to another token all
// count as absent.
func (s *SessionStore) User(r *http.Request) (*models.User, bool) {
	token, ok := s.Token(r)
	if !ok || !s.HasProfile(r) {
		return nil, false
	}
	c, _ := r.Cookie(UserCookie)
	var p profile
	if err := s.codec.Decode(UserCookie, c.Value, &p); err != nil {
		slog.Debug("Ignoring invalid profile cookie", "error", err)
		return nil, false
	}
	if subtle.ConstantTimeCompare([]byte(p.Binding), []byte(tokenBinding(token))) != 1 {
		slog.Debug("Ignoring profile cookie issued for another token")
		return nil, false
	}
	if p.User.ID == "" || !p.User.Role.Valid() {
		return nil, false
	}
	return &p.User, true
}

// Session assembles the stored session, reading issue and expiry times from
// the token claims when available.
func (s *SessionStore) Session(r *http.Request) (models.Session, bool) {
	token, ok := s.Token(r)
	if !ok {
		return models.Session{}, false
	}
	sess := models.Session{Token: token}
	sess.User, _ = s.User(r)
	if claims, ok := parseClaims(token); ok {
		if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
			sess.IssuedAt = iat.Time
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			sess.ExpiresAt = exp.Time
		}
	}
	return sess, true
}

// ClearSession expires both cookies. Safe to call with no session.
func (s *SessionStore) ClearSession(w http.ResponseWriter) {
	for _, name := range []string{TokenCookie, UserCookie} {
		http.SetCookie(w, s.cookie(name, "", -1))
	}
}

func (s *SessionStore) cookie(name, value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
	if maxAge > 0 {
		c.Expires = s.now().Add(time.Duration(maxAge) * time.Second)
	}
	return c
}

func (s *SessionStore) maxAge(token string, ttlDays int) (int, bool) {
	ttl := time.Duration(ttlDays) * day
	if claims, ok := parseClaims(token); ok {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			remaining := exp.Sub(s.now())
			if remaining <= 0 {
				return 0, false
			}
			if remaining < ttl {
				ttl = remaining
			}
		}
	}
	seconds := int(ttl.Seconds())
	if seconds < 1 {
		return 0, false
	}
	return seconds, true
}

// parseClaims reads JWT claims without verifying the signature; the backend
// is the only party that can verify the token.
func parseClaims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
