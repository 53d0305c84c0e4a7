// ABOUTME: Route table of the fake backend
// ABOUTME: Mirrors the REST surface the web front-end consumes

package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MohamedIjlal27/LMS/models"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record, s.inject)

	r.Post("/auth/login", s.login)
	r.Post("/auth/register", s.register)
	r.With(s.authed).Get("/auth/me", s.me)
	r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	r.Get("/courses", s.listCourses)
	r.Get("/courses/{id}", s.getCourse)
	r.Group(func(r chi.Router) {
		r.Use(s.authed, s.admin)
		r.Post("/courses", s.createCourse)
		r.Patch("/courses/{id}", s.updateCourse)
		r.Delete("/courses/{id}", s.deleteCourse)

		r.Get("/students", s.listStudents)
		r.Post("/students", s.createStudent)
		r.Get("/students/{id}", s.getStudent)
		r.Patch("/students/{id}", s.updateStudent)
		r.Delete("/students/{id}", s.deleteStudent)

		r.Get("/enrollments", s.listEnrollments)
		r.Delete("/enrollments/{id}", s.deleteEnrollment)

		r.Get("/dashboard/stats", s.dashboardStats)
		r.Get("/dashboard/recent-students", s.recentStudents)
		r.Get("/dashboard/popular-courses", s.popularCourses)
		r.Get("/dashboard/recent-enrollments", s.recentEnrollments)
		r.Get("/dashboard/system-status", s.systemStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.authed)
		r.Post("/enrollments", s.createEnrollment)
		r.Get("/enrollments/check", s.checkEnrollment)
		r.Post("/enrollments/{id}/payment", s.pay)
		r.Get("/enrollments/user/{id}", s.userEnrollments)
		r.Get("/enrollments/user/{id}/stats", s.userStats)
		r.Get("/events/upcoming", s.events)
		r.Get("/achievements/user/{id}", s.achievements)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Token: bearer(r), Body: body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			writeMessage(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type userKey struct{}

func (s *Server) authed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		u, ok := s.tokens[bearer(r)]
		s.mu.Unlock()
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

func (s *Server) admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := userFrom(r.Context()); u.Role != models.RoleAdmin {
			writeMessage(w, http.StatusForbidden, "Forbidden resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// Auth

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || acct.password != req.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": s.issue(acct.user), "user": acct.user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.StudentInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(in.Email)
	if _, exists := s.accounts[email]; exists {
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	}
	id := s.id()
	s.accounts[email] = account{user: models.User{ID: id, Name: in.Name, Email: email, Role: models.RoleStudent}, password: in.Password}
	s.students = append(s.students, models.Student{ID: id, Name: in.Name, Email: email, IsActive: true})
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}
