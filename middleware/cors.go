// ABOUTME: CORS middleware for the JSON endpoints under /api
// ABOUTME: Wraps go-chi/cors with an explicit origin allow-list

package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware that answers preflight requests and adds CORS
// headers for the configured origins. With no origins configured,
// cross-origin requests get no CORS headers at all.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", csrfHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
