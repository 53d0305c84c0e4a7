// ABOUTME: Unit tests for login throttling
// ABOUTME: Covers multi-key windows, IP and account keys, and the middleware

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func byClientIP(r *http.Request) []string {
	return []string{ClientIP(r)}
}

// --- RateLimiter core tests ---

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("test-key")
		if !allowed {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	rl.Allow("test-key")
	rl.Allow("test-key")

	allowed, retryAfter := rl.Allow("test-key")
	if allowed {
		t.Fatal("Third request should be rejected")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("Expected retryAfter between 0 and 60s, got %v", retryAfter)
	}
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	allowed, _ := rl.Allow("key-a")
	if !allowed {
		t.Fatal("First request for key-a should be allowed")
	}

	allowed, _ = rl.Allow("key-b")
	if !allowed {
		t.Fatal("First request for key-b should be allowed (separate quota)")
	}

	allowed, _ = rl.Allow("key-a")
	if allowed {
		t.Fatal("Second request for key-a should be rejected")
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if allowed, _ := rl.Allow("test-key"); !allowed {
		t.Fatal("First request should be allowed")
	}
	if allowed, wait := rl.Allow("test-key"); allowed || wait != time.Minute {
		t.Fatalf("Second request allowed=%v wait=%v, want refused with 1m", allowed, wait)
	}

	now = now.Add(time.Minute)
	if allowed, _ := rl.Allow("test-key"); !allowed {
		t.Fatal("Request at the window boundary should start a new window")
	}
}

func TestRateLimiter_AnyExhaustedKeyRefuses(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	rl.Allow("ip:a", "account:x")
	rl.Allow("ip:b", "account:x")

	if allowed, _ := rl.Allow("ip:c", "account:x"); allowed {
		t.Fatal("Account key at its limit should refuse a new address")
	}
	// The refused attempt charged nothing to ip:c
	rl.Allow("ip:c", "account:y")
	if allowed, _ := rl.Allow("ip:c", "account:z"); !allowed {
		t.Fatal("ip:c should still have one attempt left")
	}
	if allowed, _ := rl.Allow("ip:c"); allowed {
		t.Fatal("ip:c should now be exhausted")
	}
}

func TestRateLimiter_SweepDropsExpiredWindows(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("stale")
	now = now.Add(2 * time.Minute)
	for i := 0; i < sweepEvery; i++ {
		rl.Allow("fresh-" + strconv.Itoa(i))
	}
	if _, ok := rl.windows["stale"]; ok {
		t.Error("expired window survived the sweep")
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(100, time.Minute)

	var wg sync.WaitGroup
	allowed := make([]bool, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			allowed[idx], _ = rl.Allow("concurrent-key")
		}(i)
	}

	wg.Wait()

	allowedCount := 0
	for _, a := range allowed {
		if a {
			allowedCount++
		}
	}

	if allowedCount != 100 {
		t.Errorf("Expected exactly 100 allowed requests, got %d", allowedCount)
	}
}

func TestRateLimiter_RetryAfterValue(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Allow("test-key")

	_, retryAfter := rl.Allow("test-key")
	// retryAfter should be positive and <= window duration
	if retryAfter <= 0 {
		t.Error("retryAfter should be positive")
	}
	if retryAfter > time.Minute {
		t.Errorf("retryAfter should not exceed window duration, got %v", retryAfter)
	}
}

// --- Key extraction tests ---

func TestClientIP_XForwardedFor(t *testing.T) {
	tests := []struct {
		name     string
		xff      string
		remote   string
		expected string
	}{
		{
			name:     "single IP",
			xff:      "203.0.113.1",
			expected: "ip:203.0.113.1",
		},
		{
			name:     "multiple IPs takes leftmost",
			xff:      "203.0.113.1, 198.51.100.1, 10.0.0.1",
			expected: "ip:203.0.113.1",
		},
		{
			name:     "no XFF falls back to RemoteAddr",
			remote:   "192.168.1.1:12345",
			expected: "ip:192.168.1.1",
		},
		{
			name:     "RemoteAddr without port",
			remote:   "192.168.1.1",
			expected: "ip:192.168.1.1",
		},
		{
			name:     "XFF with spaces",
			xff:      "  203.0.113.1 , 10.0.0.1 ",
			expected: "ip:203.0.113.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}

			key := ClientIP(r)
			if key != tt.expected {
				t.Errorf("ClientIP() = %q, want %q", key, tt.expected)
			}
		})
	}
}

func TestClientIP_EmptyXFF(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "")
	r.RemoteAddr = "10.0.0.5:9999"

	key := ClientIP(r)
	if key != "ip:10.0.0.5" {
		t.Errorf("ClientIP() with empty XFF = %q, want %q (should fallback to RemoteAddr)", key, "ip:10.0.0.5")
	}
}

func TestLoginKeys(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want []string
	}{
		{"email normalized", url.Values{"email": {"  Student@Example.COM "}}, []string{"ip:203.0.113.50", "account:student@example.com"}},
		{"no email", url.Values{"password": {"secret"}}, []string{"ip:203.0.113.50"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.form.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			r.Header.Set("X-Forwarded-For", "203.0.113.50")

			got := LoginKeys(r)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("LoginKeys() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Middleware factory tests ---

func TestRateLimitMiddleware_NilLimiter(t *testing.T) {
	called := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}

	mw := RateLimit(nil, byClientIP, nil)
	wrapped := mw(handler)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	wrapped(w, r)

	if !called {
		t.Fatal("Handler should be called when limiter is nil (disabled mode)")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestRateLimitMiddleware_EmptyKey(t *testing.T) {
	called := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}

	// Key function that never identifies the client
	noKeys := func(r *http.Request) []string { return nil }
	rl := NewRateLimiter(1, time.Minute)
	mw := RateLimit(rl, noKeys, nil)
	wrapped := mw(handler)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	wrapped(w, r)

	if !called {
		t.Fatal("Handler should be called when no keys identify the client")
	}
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	mw := RateLimit(rl, byClientIP, nil)
	wrapped := mw(handler)

	// First request: OK
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	wrapped(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("First request should be 200, got %d", w.Code)
	}

	// Second request: 429
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w = httptest.NewRecorder()
	wrapped(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Second request should be 429, got %d", w.Code)
	}

	// Check Retry-After header
	retryAfter := w.Header().Get("Retry-After")
	if retryAfter == "" {
		t.Fatal("Expected Retry-After header")
	}

	if !strings.Contains(w.Body.String(), "Too many requests") {
		t.Errorf("Body = %q, want plain 429 text", w.Body.String())
	}
}

func TestRateLimitMiddleware_CustomLimitedHandler(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	var gotRetry int
	onLimited := func(w http.ResponseWriter, r *http.Request, retrySeconds int) {
		gotRetry = retrySeconds
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("Too many login attempts"))
	}
	wrapped := RateLimit(rl, byClientIP, onLimited)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = "10.0.0.9:4321"
		w := httptest.NewRecorder()
		wrapped(w, r)
		if i == 1 {
			if w.Code != http.StatusTooManyRequests {
				t.Fatalf("Status = %d, want %d", w.Code, http.StatusTooManyRequests)
			}
			if w.Header().Get("Retry-After") == "" {
				t.Error("Expected Retry-After header before custom handler runs")
			}
			if w.Body.String() != "Too many login attempts" {
				t.Errorf("Body = %q, want custom handler output", w.Body.String())
			}
		}
	}
	if gotRetry < 1 || gotRetry > 60 {
		t.Errorf("retrySeconds = %d, want 1..60", gotRetry)
	}
}
