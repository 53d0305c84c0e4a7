// ABOUTME: Role-based access control middleware for admin pages
// ABOUTME: Gates routes by minimum role taken from the resolved session profile

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MohamedIjlal27/LMS/models"
)

// roleHierarchy defines the privilege level for each role.
// Higher value means more privilege. Unknown caller roles resolve to 0,
// which denies access to any protected route (fail-closed).
var roleHierarchy = map[models.Role]int{
	models.RoleStudent: 1,
	models.RoleAdmin:   2,
}

// RequireRole returns middleware that enforces a minimum role.
// Panics if requiredRole is not in the role hierarchy (catches config errors at startup).
// Pages redirect: anonymous callers to /login, insufficient roles to /dashboard.
// JSON callers get 401 or 403.
func RequireRole(requiredRole models.Role) Middleware {
	requiredLevel, ok := roleHierarchy[requiredRole]
	if !ok {
		panic(fmt.Sprintf("RequireRole: unknown role %q; valid roles: %v", requiredRole, []models.Role{models.RoleStudent, models.RoleAdmin}))
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			state := FromContext(r.Context())

			if !state.IsAuthenticated {
				if wantsJSON(r) {
					writeJSONError(w, "Authentication required", http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			if state.User == nil {
				// Token present but the profile could not be fetched
				if wantsJSON(r) {
					writeJSONError(w, "Profile unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "Your profile could not be loaded. Please try again.", http.StatusServiceUnavailable)
				return
			}

			if roleHierarchy[state.User.Role] < requiredLevel {
				slog.Warn("RBAC authorization denied",
					"path", r.URL.Path,
					"method", r.Method,
					"required_role", requiredRole,
					"user_role", state.User.Role,
					"user_id", state.User.ID,
				)
				if wantsJSON(r) {
					writeJSONError(w, "Insufficient permissions", http.StatusForbidden)
					return
				}
				http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
				return
			}

			next(w, r)
		}
	}
}
