// ABOUTME: Login throttling with fixed-window attempt counters
// ABOUTME: An attempt is charged to the client IP and to the account it names

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// sweepEvery is how many new windows are opened between expiry sweeps
const sweepEvery = 100

type attempts struct {
	count   int
	resetAt time.Time
}

// RateLimiter allows limit attempts per key within each fixed window.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*attempts
	limit   int
	window  time.Duration
	now     func() time.Time
	opened  int
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*attempts),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow charges one attempt to every key. When any key has no attempts
// left the whole attempt is refused, nothing is charged, and the returned
// duration is the longest wait among the exhausted keys.
func (rl *RateLimiter) Allow(keys ...string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	var wait time.Duration
	for _, key := range keys {
		a := rl.current(key, now)
		if a != nil && a.count >= rl.limit {
			wait = max(wait, a.resetAt.Sub(now))
		}
	}
	if wait > 0 {
		return false, wait
	}

	for _, key := range keys {
		if a := rl.current(key, now); a != nil {
			a.count++
			continue
		}
		rl.windows[key] = &attempts{count: 1, resetAt: now.Add(rl.window)}
		rl.opened++
	}
	if rl.opened >= sweepEvery {
		rl.sweep(now)
		rl.opened = 0
	}
	return true, 0
}

// current returns the live window for key, or nil once it has reset.
// Callers hold rl.mu.
func (rl *RateLimiter) current(key string, now time.Time) *attempts {
	a, ok := rl.windows[key]
	if !ok || !now.Before(a.resetAt) {
		return nil
	}
	return a
}

func (rl *RateLimiter) sweep(now time.Time) {
	for k, a := range rl.windows {
		if !now.Before(a.resetAt) {
			delete(rl.windows, k)
		}
	}
}

// ClientIP keys by the leftmost X-Forwarded-For address, falling back to
// RemoteAddr. The header is only trustworthy behind a proxy that sets it.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return "ip:" + ip
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "ip:" + host
}

// LoginKeys returns the client IP key plus, when the form names one, an
// account key for the trimmed lowercase email. Guessing one account's
// password from many addresses still exhausts the account key.
func LoginKeys(r *http.Request) []string {
	keys := []string{ClientIP(r)}
	if email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))); email != "" {
		keys = append(keys, "account:"+email)
	}
	return keys
}

// LimitedFunc renders the response for a refused attempt. Retry-After is
// already set when it runs.
type LimitedFunc func(w http.ResponseWriter, r *http.Request, retrySeconds int)

// RateLimit refuses requests once any of their keys is exhausted. A nil
// limiter or keyFunc disables it, and requests with no keys pass through.
// A nil onLimited answers with a plain 429.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) []string, onLimited LimitedFunc) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if limiter == nil || keyFunc == nil {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			keys := keyFunc(r)
			if len(keys) == 0 {
				next(w, r)
				return
			}

			allowed, wait := limiter.Allow(keys...)
			if allowed {
				next(w, r)
				return
			}

			retrySeconds := int(math.Ceil(wait.Seconds()))
			slog.Warn("Rate limit exceeded", "client", keys[0], "path", r.URL.Path, "retry_after", retrySeconds)
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds))
			if onLimited != nil {
				onLimited(w, r, retrySeconds)
				return
			}
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
		}
	}
}
