// ABOUTME: In-memory fake of the LMS REST backend for tests
// ABOUTME: Serves seeded users, courses, students and enrollments and records every request

package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MohamedIjlal27/LMS/models"
)

const (
	AdminEmail   = "admin@example.com"
	StudentEmail = "student@example.com"
	Password     = "password"
)

// Request is one call the fake received.
type Request struct {
	Method string
	Path   string
	Query  string
	Token  string
	Body   []byte
}

type account struct {
	user     models.User
	password string
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	requests    []Request
	accounts    map[string]account // by email
	tokens      map[string]models.User
	courses     []models.Course
	students    []models.Student
	enrollments []models.Enrollment
	payments    map[string]models.PaymentRequest
	failures    map[string]int
	nextID      int
}

// New starts a fake backend seeded with two accounts, seven courses (two
// drafts), three students and two enrollments.
func New() *Server {
	s := &Server{
		accounts: map[string]account{
			AdminEmail:   {user: models.User{ID: "u-admin", Name: "Ada Admin", Email: AdminEmail, Role: models.RoleAdmin}, password: Password},
			StudentEmail: {user: models.User{ID: "s1", Name: "Sam Student", Email: StudentEmail, Role: models.RoleStudent}, password: Password},
		},
		tokens:   make(map[string]models.User),
		payments: make(map[string]models.PaymentRequest),
		failures: make(map[string]int),
		nextID:   100,
	}
	s.courses = SeedCourses()
	s.students = []models.Student{
		{ID: "s1", Name: "Sam Student", Email: StudentEmail, IsActive: true, CreatedAt: "2024-01-10"},
		{ID: "s2", Name: "Grace Hopper", Email: "grace@example.com", IsActive: true, CreatedAt: "2024-02-01"},
		{ID: "s3", Name: "Linus Idle", Email: "linus@example.com", IsActive: false, CreatedAt: "2024-03-05"},
	}
	s.enrollments = []models.Enrollment{
		{ID: "e1", Student: models.Ref{ID: "s1", Name: "Sam Student"}, Course: models.Ref{ID: "1", Title: "Go Fundamentals"}, Progress: 40, Status: models.EnrollmentInProgress},
		{ID: "e2", Student: models.Ref{ID: "s2", Name: "Grace Hopper"}, Course: models.Ref{ID: "2", Title: "UX Design Basics"}, Progress: 100, Status: models.EnrollmentCompleted},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// SeedCourses returns the seven fixture courses; ids 4 and 6 are drafts.
func SeedCourses() []models.Course {
	course := func(id, title, category, level, instructor string, price float64, published bool) models.Course {
		return models.Course{
			ID: id, Title: title, Category: category, Level: level, Price: price,
			Description: title + " from first principles, with hands-on exercises.",
			Instructor:  models.Instructor{Name: instructor},
			Duration:    "8 hours", Rating: 4.5, Students: 120, IsPublished: published,
		}
	}
	return []models.Course{
		course("1", "Go Fundamentals", "Development", "Beginner", "Rob Pike", 49.99, true),
		course("2", "UX Design Basics", "Design", "Beginner", "Don Norman", 39.99, true),
		course("3", "Data Analysis with Python", "Data Science", "Intermediate", "Wes McKinney", 59.99, true),
		course("4", "Advanced Concurrency", "Development", "Advanced", "Rob Pike", 89.99, false),
		course("5", "Marketing Analytics", "Marketing", "Intermediate", "Seth Godin", 29.99, true),
		course("6", "Startup Finance", "Business", "All Levels", "Paul Graham", 0, false),
		course("7", "Web Development Bootcamp", "Development", "Beginner", "Angela Yu", 99.99, true),
	}
}

// Fail makes the next matching calls ("GET /courses") answer with status.
// Pass status 0 to clear.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = status
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// TokenFor issues a token for a seeded account without going through login.
func (s *Server) TokenFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(s.accounts[email].user)
}

// Revoke invalidates every issued token, so /auth/me answers 401.
func (s *Server) Revoke() {
	s.mu.Lock()
	s.tokens = make(map[string]models.User)
	s.mu.Unlock()
}

// Payments returns the payment recorded for an enrollment.
func (s *Server) Payments(enrollmentID string) (models.PaymentRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[enrollmentID]
	return p, ok
}

func (s *Server) issue(u models.User) string {
	s.nextID++
	claims := jwt.MapClaims{
		"sub": u.ID,
		"jti": fmt.Sprintf("t%d", s.nextID),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("apitest"))
	s.tokens[token] = u
	return token
}

func (s *Server) id() string {
	s.nextID++
	return fmt.Sprintf("n%d", s.nextID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg, "statusCode": status})
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
