// ABOUTME: Tests for the backend REST client
// ABOUTME: Uses httptest servers to verify auth headers, error mapping and the breaker

package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MohamedIjlal27/LMS/models"
)

func TestAPIClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]map[string]any{{"_id": "c1", "title": "Go"}})
	}))
	defer server.Close()

	c := NewAPIClient(server.URL, 5)
	courses, err := c.ListCourses(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("ListCourses failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
	if len(courses) != 1 || courses[0].ID != "c1" {
		t.Errorf("courses = %+v", courses)
	}
}

func TestAPIClient_NoTokenNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("Unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	if _, err := NewAPIClient(server.URL, 5).ListCourses(context.Background(), ""); err != nil {
		t.Fatalf("ListCourses failed: %v", err)
	}
}

func TestAPIClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Unauthorized"}`, ErrUnauthorized, "Unauthorized"},
		{"not found", http.StatusNotFound, `{"error":"Course not found"}`, ErrNotFound, "Course not found"},
		{"forbidden", http.StatusForbidden, ``, ErrForbidden, ""},
		{"business list message", http.StatusBadRequest, `{"message":["email must be an email","name too short"]}`, nil, "email must be an email; name too short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewAPIClient(server.URL, 5).GetCourse(context.Background(), "t", "c1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *APIError, got %v", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.message {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.message)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(err, %v) = false", tt.sentinel)
			}
		})
	}
}

func TestAPIClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewAPIClient(url, 5).ListStudents(context.Background(), "t")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport, got %v", err)
	}
}

func TestAPIClient_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewAPIClient(server.URL, 5).ListCourses(ctx, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestAPIClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewAPIClient(server.URL, 2)
	ctx := context.Background()
	c.ListCourses(ctx, "")
	c.ListCourses(ctx, "")

	_, err := c.ListCourses(ctx, "")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable after breaker trips, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("Backend hit %d times, want 2", hits.Load())
	}
	if c.BreakerState() != "open" {
		t.Errorf("BreakerState = %q, want open", c.BreakerState())
	}
}

func TestAPIClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewAPIClient(server.URL, 1)
	for i := 0; i < 3; i++ {
		_, err := c.GetCourse(context.Background(), "", "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Attempt %d: expected ErrNotFound, got %v", i, err)
		}
	}
}

func TestAPIClient_EncodeErrorsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := NewAPIClient(server.URL, 1)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.CreateCourse(ctx, "token", models.CourseInput{Title: "Go", Price: math.Inf(1)})
		if err == nil {
			t.Fatalf("Attempt %d: expected marshal error", i)
		}
		if errors.Is(err, ErrUnavailable) {
			t.Fatalf("Attempt %d: encode error reported as unavailable: %v", i, err)
		}
	}
	if c.BreakerState() != "closed" {
		t.Errorf("BreakerState = %q, want closed", c.BreakerState())
	}
	if _, err := c.ListCourses(ctx, ""); err != nil {
		t.Errorf("ListCourses after encode errors: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("Backend hit %d times, want 1", hits.Load())
	}
}

func TestAPIClient_CheckEnrollmentQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enrollments/check" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("courseId") != "c1" || r.URL.Query().Get("studentId") != "s1" {
			t.Errorf("Query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"isEnrolled":true}`))
	}))
	defer server.Close()

	check, err := NewAPIClient(server.URL, 5).CheckEnrollment(context.Background(), "t", "c1", "s1")
	if err != nil {
		t.Fatalf("CheckEnrollment failed: %v", err)
	}
	if !check.IsEnrolled {
		t.Error("Expected isEnrolled true")
	}
}

func TestAPIClient_UpdateUsesPatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/students/s1" {
			t.Errorf("Got %s %s, want PATCH /students/s1", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["password"]; ok {
			t.Error("Empty password should be omitted from the update")
		}
		w.Write([]byte(`{"_id":"s1","name":"Jo"}`))
	}))
	defer server.Close()

	_, err := NewAPIClient(server.URL, 5).UpdateStudent(context.Background(), "t", "s1", models.StudentInput{Name: "Jo", Email: "jo@example.com"})
	if err != nil {
		t.Fatalf("UpdateStudent failed: %v", err)
	}
}

func TestAPIClient_RejectsUnsafeIDs(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	err := NewAPIClient(server.URL, 5).DeleteCourse(context.Background(), "t", "../students")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if hits.Load() != 0 {
		t.Error("Backend should not be called for an unsafe id")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&APIError{Status: 401}, MsgSessionExpired},
		{&APIError{Status: 409, Message: "email already in use"}, "email already in use"},
		{&APIError{Status: 500, Message: "stack trace"}, MsgGenericFailure},
		{ErrTransport, MsgGenericFailure},
		{ErrUnavailable, "The service is temporarily unavailable. Please try again shortly."},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
