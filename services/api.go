// ABOUTME: REST client for the LMS backend API
// ABOUTME: Attaches bearer tokens, maps failures onto the error taxonomy, and trips a circuit breaker

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/sony/gobreaker"

	"github.com/MohamedIjlal27/LMS/models"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

type APIClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewAPIClient creates a client for baseURL. The breaker opens after
// failures consecutive transport or 5xx failures and probes again after 30s.
func NewAPIClient(baseURL string, failures int) *APIClient {
	if failures < 1 {
		failures = 5
	}
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			// Client errors are the caller's fault, not the backend's
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Backend circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	return c
}

// BaseURL returns the backend URL the client talks to
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// BreakerState reports the circuit breaker state for health checks
func (c *APIClient) BreakerState() string {
	return c.breaker.State().String()
}

// call is one backend request. Query is encoded with go-querystring url tags.
type call struct {
	method string
	path   string
	token  string
	query  any
	body   any
	out    any
}

func (c *APIClient) do(ctx context.Context, cl call) error {
	// Local encoding failures never reach the breaker
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return err
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.send(ctx, req, cl)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s: %w", cl.method, cl.path, ErrUnavailable)
	}
	return err
}

func (c *APIClient) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	target := c.baseURL + cl.path
	if cl.query != nil {
		values, err := query.Values(cl.query)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query: %w", err)
		}
		if encoded := values.Encode(); encoded != "" {
			target += "?" + encoded
		}
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	return req, nil
}

func (c *APIClient) send(ctx context.Context, req *http.Request, cl call) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	slog.Debug("Backend call",
		"method", cl.method,
		"path", cl.path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp)
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

func (c *APIClient) handleRequestError(ctx context.Context, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		return fmt.Errorf("request canceled: %w", context.Canceled)
	case context.DeadlineExceeded:
		return fmt.Errorf("%w: request timed out", ErrTransport)
	}
	return fmt.Errorf("%w: cannot connect to backend at %s: %w", ErrTransport, c.baseURL, err)
}

// handleErrorResponse builds an APIError from the backend's "message" or
// "error" member. NestJS-style backends send "message" as a list.
func handleErrorResponse(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Message = decodeMessage(payload.Message)
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}

func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

func getJSON[T any](ctx context.Context, c *APIClient, token, path string, q any) (T, error) {
	var out T
	err := c.do(ctx, call{method: http.MethodGet, path: path, token: token, query: q, out: &out})
	return out, err
}

// entityPath joins a collection with a validated id.
func entityPath(collection, id string, rest ...string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return "/" + strings.Join(append([]string{collection, id}, rest...), "/"), nil
}

// Auth

func (c *APIClient) Login(ctx context.Context, creds models.LoginRequest) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: creds, out: &out})
	return out, err
}

// Register creates a student account. The new account signs in separately.
func (c *APIClient) Register(ctx context.Context, in models.StudentInput) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: in})
}

func (c *APIClient) Me(ctx context.Context, token string) (models.User, error) {
	return getJSON[models.User](ctx, c, token, "/auth/me", nil)
}

func (c *APIClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/auth/logout", token: token})
}

// Courses

func (c *APIClient) ListCourses(ctx context.Context, token string) ([]models.Course, error) {
	return getJSON[[]models.Course](ctx, c, token, "/courses", nil)
}

func (c *APIClient) GetCourse(ctx context.Context, token, id string) (models.Course, error) {
	path, err := entityPath("courses", id)
	if err != nil {
		return models.Course{}, err
	}
	return getJSON[models.Course](ctx, c, token, path, nil)
}

func (c *APIClient) CreateCourse(ctx context.Context, token string, in models.CourseInput) (models.Course, error) {
	var out models.Course
	err := c.do(ctx, call{method: http.MethodPost, path: "/courses", token: token, body: in, out: &out})
	return out, err
}

func (c *APIClient) UpdateCourse(ctx context.Context, token, id string, in models.CourseInput) (models.Course, error) {
	var out models.Course
	path, err := entityPath("courses", id)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, call{method: http.MethodPatch, path: path, token: token, body: in, out: &out})
	return out, err
}

func (c *APIClient) DeleteCourse(ctx context.Context, token, id string) error {
	path, err := entityPath("courses", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodDelete, path: path, token: token})
}

// Students

func (c *APIClient) ListStudents(ctx context.Context, token string) ([]models.Student, error) {
	return getJSON[[]models.Student](ctx, c, token, "/students", nil)
}

func (c *APIClient) GetStudent(ctx context.Context, token, id string) (models.Student, error) {
	path, err := entityPath("students", id)
	if err != nil {
		return models.Student{}, err
	}
	return getJSON[models.Student](ctx, c, token, path, nil)
}

func (c *APIClient) CreateStudent(ctx context.Context, token string, in models.StudentInput) (models.Student, error) {
	var out models.Student
	err := c.do(ctx, call{method: http.MethodPost, path: "/students", token: token, body: in, out: &out})
	return out, err
}

func (c *APIClient) UpdateStudent(ctx context.Context, token, id string, in models.StudentInput) (models.Student, error) {
	var out models.Student
	path, err := entityPath("students", id)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, call{method: http.MethodPatch, path: path, token: token, body: in, out: &out})
	return out, err
}

func (c *APIClient) DeleteStudent(ctx context.Context, token, id string) error {
	path, err := entityPath("students", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodDelete, path: path, token: token})
}

// Enrollments

func (c *APIClient) ListEnrollments(ctx context.Context, token string) ([]models.Enrollment, error) {
	return getJSON[[]models.Enrollment](ctx, c, token, "/enrollments", nil)
}

func (c *APIClient) CreateEnrollment(ctx context.Context, token string, in models.EnrollmentInput) (models.Enrollment, error) {
	var out models.Enrollment
	err := c.do(ctx, call{method: http.MethodPost, path: "/enrollments", token: token, body: in, out: &out})
	return out, err
}

func (c *APIClient) DeleteEnrollment(ctx context.Context, token, id string) error {
	path, err := entityPath("enrollments", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodDelete, path: path, token: token})
}

type enrollmentCheckQuery struct {
	CourseID  string `url:"courseId"`
	StudentID string `url:"studentId"`
}

func (c *APIClient) CheckEnrollment(ctx context.Context, token, courseID, studentID string) (models.EnrollmentCheck, error) {
	return getJSON[models.EnrollmentCheck](ctx, c, token, "/enrollments/check",
		enrollmentCheckQuery{CourseID: courseID, StudentID: studentID})
}

func (c *APIClient) Pay(ctx context.Context, token, enrollmentID string, payment models.PaymentRequest) error {
	path, err := entityPath("enrollments", enrollmentID, "payment")
	if err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodPost, path: path, token: token, body: payment})
}

func (c *APIClient) UserEnrollments(ctx context.Context, token, userID string) ([]models.EnrolledCourse, error) {
	path, err := entityPath("enrollments/user", userID)
	if err != nil {
		return nil, err
	}
	return getJSON[[]models.EnrolledCourse](ctx, c, token, path, nil)
}

func (c *APIClient) UserStats(ctx context.Context, token, userID string) (models.UserStats, error) {
	path, err := entityPath("enrollments/user", userID, "stats")
	if err != nil {
		return models.UserStats{}, err
	}
	return getJSON[models.UserStats](ctx, c, token, path, nil)
}

func (c *APIClient) UpcomingEvents(ctx context.Context, token string) ([]models.Event, error) {
	return getJSON[[]models.Event](ctx, c, token, "/events/upcoming", nil)
}

func (c *APIClient) UserAchievements(ctx context.Context, token, userID string) ([]models.Achievement, error) {
	path, err := entityPath("achievements/user", userID)
	if err != nil {
		return nil, err
	}
	return getJSON[[]models.Achievement](ctx, c, token, path, nil)
}

// Dashboard

func (c *APIClient) DashboardStats(ctx context.Context, token string) (models.DashboardStats, error) {
	return getJSON[models.DashboardStats](ctx, c, token, "/dashboard/stats", nil)
}

func (c *APIClient) RecentStudents(ctx context.Context, token string) ([]models.Student, error) {
	return getJSON[[]models.Student](ctx, c, token, "/dashboard/recent-students", nil)
}

func (c *APIClient) PopularCourses(ctx context.Context, token string) ([]models.Course, error) {
	return getJSON[[]models.Course](ctx, c, token, "/dashboard/popular-courses", nil)
}

func (c *APIClient) RecentEnrollments(ctx context.Context, token string) ([]models.Enrollment, error) {
	return getJSON[[]models.Enrollment](ctx, c, token, "/dashboard/recent-enrollments", nil)
}

func (c *APIClient) SystemStatus(ctx context.Context, token string) (models.SystemStatus, error) {
	return getJSON[models.SystemStatus](ctx, c, token, "/dashboard/system-status", nil)
}
