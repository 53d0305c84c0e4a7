// ABOUTME: Input validation for identifiers interpolated into backend URLs
// ABOUTME: Prevents path injection via entity ids taken from browser requests

package services

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern matches backend entity ids: Mongo ObjectIDs, numeric ids and slugs
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1 // Remove control characters
		}
		return r
	}, s)
}

// ValidateID validates that an entity id is safe to place in a URL path.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: invalid id format: %s", ErrNotFound, sanitizeForLog(id))
	}
	return nil
}
