// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"strings"
	"testing"
)

// withCleanEnv clears the environment, sets API_URL to a test value, and
// registers a cleanup that restores the original environment.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    withCleanEnv(t, map[string]string{"APP_ENV": "production"})
//	}
func withCleanEnv(t *testing.T, extra map[string]string) {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()

	os.Setenv("API_URL", "http://api.test.local")
	for key, value := range extra {
		os.Setenv(key, value)
	}

	t.Cleanup(func() {
		os.Clearenv()
		for _, env := range originalEnv {
			if key, value, ok := strings.Cut(env, "="); ok {
				os.Setenv(key, value)
			}
		}
	})
}
