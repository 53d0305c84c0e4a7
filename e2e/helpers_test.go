// ABOUTME: Test helpers for e2e tests
// ABOUTME: Boots the full router from environment config against the fake backend with a cookie-jar client

package e2e

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/MohamedIjlal27/LMS/apitest"
	"github.com/MohamedIjlal27/LMS/cache"
	"github.com/MohamedIjlal27/LMS/config"
	"github.com/MohamedIjlal27/LMS/handlers"
)

var csrfFieldPattern = regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`)

// app is one running front-end plus its fake backend and a browser-like client.
type app struct {
	t      *testing.T
	api    *apitest.Server
	server *httptest.Server
	client *http.Client
}

// withTestEnv points the config at apiURL and applies extra vars for the
// duration of the test.
func withTestEnv(t *testing.T, apiURL string, extra map[string]string) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("API_URL", apiURL)
	t.Setenv("SESSION_SECRET", "e2e-secret-e2e-secret-e2e-secret-42")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("CATALOG_CACHE_TTL", "0")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	for key, value := range extra {
		t.Setenv(key, value)
	}
}

func newApp(t *testing.T, extra map[string]string) *app {
	t.Helper()
	api := apitest.New()
	t.Cleanup(api.Close)

	withTestEnv(t, api.URL, extra)
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	h, err := handlers.NewHandler(cfg, cache.NewMemory(time.Minute))
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	server := httptest.NewServer(h.Router())
	t.Cleanup(server.Close)

	return &app{t: t, api: api, server: server, client: newClient(t)}
}

// newClient keeps cookies and does not follow redirects so tests can assert them.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 10 * time.Second,
	}
}

type response struct {
	Status   int
	Location string
	Header   http.Header
	Body     string
}

func (a *app) send(req *http.Request) response {
	a.t.Helper()
	resp, err := a.client.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return response{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Header:   resp.Header,
		Body:     string(body),
	}
}

func (a *app) get(path string) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	if err != nil {
		a.t.Fatalf("NewRequest: %v", err)
	}
	return a.send(req)
}

func (a *app) post(path string, form url.Values) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		a.t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.send(req)
}

// submit loads the page holding a form, copies its CSRF token and posts form.
func (a *app) submit(formPage, action string, form url.Values) response {
	a.t.Helper()
	page := a.get(formPage)
	m := csrfFieldPattern.FindStringSubmatch(page.Body)
	if m == nil {
		a.t.Fatalf("no CSRF field on %s (status %d)", formPage, page.Status)
	}
	form.Set("gorilla.csrf.Token", m[1])
	return a.post(action, form)
}

func (a *app) login(email string) response {
	a.t.Helper()
	return a.submit("/login", "/login", url.Values{"email": {email}, "password": {apitest.Password}})
}
