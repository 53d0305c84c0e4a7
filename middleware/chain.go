// ABOUTME: Middleware chaining utility for composing HTTP middleware
// ABOUTME: Applies middleware in declaration order (first is outermost)

package middleware

import "net/http"

// Middleware wraps a handler function.
type Middleware = func(http.HandlerFunc) http.HandlerFunc

// Chain applies middleware functions to a handler in order.
// The first middleware in the list is the outermost (executes first).
// Example: Chain(handler, logging, cors) applies as: logging(cors(handler))
func Chain(h http.HandlerFunc, middlewares ...Middleware) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Std converts a Middleware into the func(http.Handler) http.Handler form
// routers expect.
func Std(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

