// ABOUTME: Declarative route table and router assembly
// ABOUTME: Defines every page and JSON endpoint with its method, handler and required role

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MohamedIjlal27/LMS/middleware"
	"github.com/MohamedIjlal27/LMS/models"
	"github.com/MohamedIjlal27/LMS/views"
)

// Route defines an endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // chi pattern (e.g., "/admin/courses/{id}")
	Handler http.HandlerFunc // Handler function
	Role    models.Role      // minimum role; empty for anonymous access
}

// Routes returns all page and API routes for registration.
func (h *Handler) Routes() []Route {
	login := middleware.Chain(h.Login, middleware.RateLimit(h.loginLimiter, middleware.LoginKeys, h.loginLimited))
	admin := models.RoleAdmin
	student := models.RoleStudent

	return []Route{
		// Public
		{Method: http.MethodGet, Path: "/", Handler: h.Home},
		{Method: http.MethodGet, Path: "/courses", Handler: h.Catalog},
		{Method: http.MethodGet, Path: "/courses/{id}", Handler: h.CourseDetail},
		{Method: http.MethodGet, Path: "/courses/{id}/enroll", Handler: h.EnrollPage, Role: student},
		{Method: http.MethodPost, Path: "/courses/{id}/enroll", Handler: h.Enroll, Role: student},

		// Auth
		{Method: http.MethodGet, Path: "/login", Handler: h.LoginPage},
		{Method: http.MethodPost, Path: "/login", Handler: login},
		{Method: http.MethodGet, Path: "/register", Handler: h.RegisterPage},
		{Method: http.MethodPost, Path: "/register", Handler: h.Register},
		{Method: http.MethodPost, Path: "/logout", Handler: h.Logout},

		// Dashboards
		{Method: http.MethodGet, Path: "/dashboard", Handler: h.Dashboard, Role: student},
		{Method: http.MethodGet, Path: "/admin/dashboard", Handler: h.AdminDashboard, Role: admin},

		// Admin courses
		{Method: http.MethodGet, Path: "/admin/courses", Handler: h.AdminCourses, Role: admin},
		{Method: http.MethodGet, Path: "/admin/courses/new", Handler: h.NewCourse, Role: admin},
		{Method: http.MethodPost, Path: "/admin/courses/new", Handler: h.CreateCourse, Role: admin},
		{Method: http.MethodGet, Path: "/admin/courses/{id}", Handler: h.AdminCourse, Role: admin},
		{Method: http.MethodGet, Path: "/admin/courses/{id}/edit", Handler: h.EditCourse, Role: admin},
		{Method: http.MethodPost, Path: "/admin/courses/{id}/edit", Handler: h.UpdateCourse, Role: admin},
		{Method: http.MethodGet, Path: "/admin/courses/{id}/delete", Handler: h.ConfirmDeleteCourse, Role: admin},
		{Method: http.MethodPost, Path: "/admin/courses/{id}/delete", Handler: h.DeleteCourse, Role: admin},

		// Admin students
		{Method: http.MethodGet, Path: "/admin/students", Handler: h.AdminStudents, Role: admin},
		{Method: http.MethodGet, Path: "/admin/students/new", Handler: h.NewStudent, Role: admin},
		{Method: http.MethodPost, Path: "/admin/students/new", Handler: h.CreateStudent, Role: admin},
		{Method: http.MethodGet, Path: "/admin/students/{id}", Handler: h.AdminStudent, Role: admin},
		{Method: http.MethodGet, Path: "/admin/students/{id}/edit", Handler: h.EditStudent, Role: admin},
		{Method: http.MethodPost, Path: "/admin/students/{id}/edit", Handler: h.UpdateStudent, Role: admin},
		{Method: http.MethodGet, Path: "/admin/students/{id}/delete", Handler: h.ConfirmDeleteStudent, Role: admin},
		{Method: http.MethodPost, Path: "/admin/students/{id}/delete", Handler: h.DeleteStudent, Role: admin},

		// Admin enrollments
		{Method: http.MethodGet, Path: "/admin/enrollments", Handler: h.AdminEnrollments, Role: admin},
		{Method: http.MethodGet, Path: "/admin/enrollments/new", Handler: h.NewEnrollment, Role: admin},
		{Method: http.MethodPost, Path: "/admin/enrollments/new", Handler: h.CreateEnrollment, Role: admin},
		{Method: http.MethodGet, Path: "/admin/enrollments/{id}/delete", Handler: h.ConfirmDeleteEnrollment, Role: admin},
		{Method: http.MethodPost, Path: "/admin/enrollments/{id}/delete", Handler: h.DeleteEnrollment, Role: admin},

		// JSON
		{Method: http.MethodGet, Path: "/api/session", Handler: h.Session},
		{Method: http.MethodPost, Path: "/api/uploads/course-image", Handler: h.UploadCourseImage, Role: admin},
	}
}

// Router assembles the middleware stack and registers every route.
// Order: logging, metrics, CORS (API only), guard, CSRF, session.
// The guard runs before the session so an anonymous redirect never reaches the backend.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Std(middleware.LogRequest))
	r.Use(middleware.Std(h.metrics.Instrument))
	r.Use(apiOnly(middleware.CORS(h.cfg.CORSAllowedOrigins)))
	r.Use(middleware.Std(middleware.Guard(h.gateway.Store())))
	r.Use(middleware.Std(middleware.CSRF(middleware.CSRFConfig{
		Enabled: h.cfg.CSRFEnabled,
		Secret:  h.cfg.SessionSecret,
		Secure:  h.cfg.CookieSecure,
	})))
	r.Use(middleware.Std(middleware.Session(h.gateway)))

	r.Handle("/static/*", views.Static())
	r.Get("/healthz", h.Healthz)

	for _, route := range h.Routes() {
		handler := route.Handler
		if route.Role != "" {
			handler = middleware.Chain(handler, middleware.RequireRole(route.Role))
		}
		r.MethodFunc(route.Method, route.Path, handler)
	}

	r.NotFound(h.NotFound)
	return r
}

// apiOnly applies mw to /api/ paths and passes everything else through.
func apiOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
