// ABOUTME: Configuration loader for the LMS web front-end
// ABOUTME: Loads settings from environment variables (and optional .env) with defaults

package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// minSecretLength is the minimum SESSION_SECRET length accepted in production
	minSecretLength = 32
)

type Config struct {
	// Server
	Port               string
	Env                string   // development, production (default: development)
	CORSAllowedOrigins []string // allowed origins for /api JSON endpoints (empty = block cross-origin)
	CSRFEnabled        bool     // Protect form posts with CSRF tokens (default: true)
	MetricsAddr        string   // separate listener for /metrics (default: 127.0.0.1:9090)

	// Backend REST API
	APIURL          string
	BreakerFailures int // consecutive failures before the backend breaker opens (default: 5)

	// Session
	SessionSecret     string
	CookieSecure      bool // Set Secure flag on cookies (default: true in production)
	SessionTTLDays    int  // token cookie lifetime without "remember me" (default: 1)
	RememberMeTTLDays int  // token cookie lifetime with "remember me" (default: 7)

	// Catalog cache
	CatalogCacheTTL int    // seconds (default: 60)
	RedisURL        string // optional; in-memory cache when empty

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting on login (default: true)
	RateLimitLogin   int  // Login attempts per minute per client IP and per account (default: 5)

	// Course image uploads (optional)
	UploadBucket    string
	UploadRegion    string
	UploadEndpoint  string // custom S3-compatible endpoint
	UploadPublicURL string // base URL objects are served from
	UploadMaxBytes  int64  // default 4MB
}

// IsProduction reports whether the service runs with production defaults
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// UploadConfigured returns true if an upload bucket is set
func (c *Config) UploadConfigured() bool {
	return c.UploadBucket != ""
}

// CatalogTTL returns the catalog cache TTL as a duration
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTL) * time.Second
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded .env file")
	}

	env := strings.ToLower(getEnv("APP_ENV", EnvDevelopment))

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                env,
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		CSRFEnabled:        getEnvBool("CSRF_ENABLED", true),
		MetricsAddr:        getEnv("METRICS_ADDR", "127.0.0.1:9090"),

		APIURL:          strings.TrimRight(ensureScheme(os.Getenv("API_URL")), "/"),
		BreakerFailures: getEnvInt("BACKEND_BREAKER_FAILURES", 5),

		SessionSecret:     os.Getenv("SESSION_SECRET"),
		CookieSecure:      getEnvBool("COOKIE_SECURE", env == EnvProduction),
		SessionTTLDays:    getEnvInt("SESSION_TTL_DAYS", 1),
		RememberMeTTLDays: getEnvInt("REMEMBER_ME_TTL_DAYS", 7),

		CatalogCacheTTL: getEnvInt("CATALOG_CACHE_TTL", 60),
		RedisURL:        os.Getenv("REDIS_URL"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitLogin:   getEnvInt("RATE_LIMIT_LOGIN", 5),

		UploadBucket:    os.Getenv("UPLOAD_BUCKET"),
		UploadRegion:    getEnv("UPLOAD_REGION", "us-east-1"),
		UploadEndpoint:  os.Getenv("UPLOAD_ENDPOINT"),
		UploadPublicURL: strings.TrimRight(os.Getenv("UPLOAD_PUBLIC_URL"), "/"),
		UploadMaxBytes:  int64(getEnvInt("UPLOAD_MAX_BYTES", 4<<20)),
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}

	// Validate required fields
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("API_URL is required")
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = randomSecret()
		slog.Warn("SESSION_SECRET not set, using a random secret; sessions will not survive restarts")
	}
	if cfg.IsProduction() && len(cfg.SessionSecret) < minSecretLength {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d characters", minSecretLength)
	}

	for _, ttl := range []struct {
		name  string
		value int
	}{
		{"SESSION_TTL_DAYS", cfg.SessionTTLDays},
		{"REMEMBER_ME_TTL_DAYS", cfg.RememberMeTTLDays},
	} {
		if ttl.value < 1 || ttl.value > 365 {
			return nil, fmt.Errorf("%s must be between 1 and 365, got %d", ttl.name, ttl.value)
		}
	}

	if cfg.RateLimitLogin < 1 || cfg.RateLimitLogin > 10000 {
		return nil, fmt.Errorf("RATE_LIMIT_LOGIN must be between 1 and 10000, got %d", cfg.RateLimitLogin)
	}
	if cfg.BreakerFailures < 1 {
		return nil, fmt.Errorf("BACKEND_BREAKER_FAILURES must be positive, got %d", cfg.BreakerFailures)
	}
	if cfg.CatalogCacheTTL < 0 {
		return nil, fmt.Errorf("CATALOG_CACHE_TTL must not be negative, got %d", cfg.CatalogCacheTTL)
	}
	if _, port, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
		return nil, fmt.Errorf("METRICS_ADDR must be host:port, got %q", cfg.MetricsAddr)
	} else if port == cfg.Port {
		return nil, fmt.Errorf("METRICS_ADDR must not share PORT %s", cfg.Port)
	}
	if cfg.UploadMaxBytes < 1 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", cfg.UploadMaxBytes)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}

func randomSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
