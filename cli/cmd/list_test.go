// ABOUTME: Tests for the courses, students and enrollments commands
// ABOUTME: Verifies filters, JSON output and the signed-in requirement

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/MohamedIjlal27/LMS/apitest"
	"github.com/MohamedIjlal27/LMS/models"
)

func signInAs(t *testing.T, email string) {
	t.Helper()
	if err := runLogin(context.Background(), &bytes.Buffer{}, loginOptions{email: email, password: apitest.Password}); err != nil {
		t.Fatalf("runLogin: %v", err)
	}
}

func TestCourses_TableOutput(t *testing.T) {
	useConfig(t, "")
	useBackend(t)

	var buf bytes.Buffer
	if err := runCourses(context.Background(), &buf, models.CourseFilter{Category: "Development"}); err != nil {
		t.Fatalf("runCourses: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Go Fundamentals") {
		t.Error("expected a Development course in output")
	}
	if strings.Contains(out, "UX Design Basics") {
		t.Error("filter let through a Design course")
	}
	if !strings.Contains(out, "$49.99") {
		t.Error("expected formatted price")
	}
}

func TestCourses_JSONDraftFilter(t *testing.T) {
	useConfig(t, "")
	useBackend(t)
	jsonOutput = true

	var buf bytes.Buffer
	if err := runCourses(context.Background(), &buf, models.CourseFilter{Status: models.StatusDraft}); err != nil {
		t.Fatalf("runCourses: %v", err)
	}
	var courses []models.Course
	if err := json.Unmarshal(buf.Bytes(), &courses); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("draft courses = %d, want 2", len(courses))
	}
}

func TestCourses_NoResults(t *testing.T) {
	useConfig(t, "")
	useBackend(t)

	var buf bytes.Buffer
	runCourses(context.Background(), &buf, models.CourseFilter{Query: "no such course anywhere"})
	if !strings.Contains(buf.String(), "No results.") {
		t.Errorf("expected the empty message, got %q", buf.String())
	}
}

func TestStudents_RequiresLogin(t *testing.T) {
	useConfig(t, "")
	useBackend(t)

	err := runStudents(context.Background(), &bytes.Buffer{}, models.StudentFilter{})
	if !errors.Is(err, errNotLoggedIn) {
		t.Errorf("err = %v, want errNotLoggedIn", err)
	}
}

func TestStudents_StatusFilter(t *testing.T) {
	useConfig(t, "")
	useBackend(t)
	signInAs(t, apitest.AdminEmail)

	var buf bytes.Buffer
	if err := runStudents(context.Background(), &buf, models.StudentFilter{Status: models.StatusInactive}); err != nil {
		t.Fatalf("runStudents: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Linus Idle") {
		t.Error("expected the inactive student")
	}
	if strings.Contains(out, "Grace Hopper") {
		t.Error("active student shown under the inactive filter")
	}
}

func TestStudents_StudentTokenForbidden(t *testing.T) {
	useConfig(t, "")
	useBackend(t)
	signInAs(t, apitest.StudentEmail)

	if err := runStudents(context.Background(), &bytes.Buffer{}, models.StudentFilter{}); err == nil {
		t.Error("expected an error for a student token")
	}
}

func TestEnrollments_QueryFilter(t *testing.T) {
	useConfig(t, "")
	useBackend(t)
	signInAs(t, apitest.AdminEmail)

	var buf bytes.Buffer
	if err := runEnrollments(context.Background(), &buf, models.EnrollmentFilter{Query: "grace"}); err != nil {
		t.Fatalf("runEnrollments: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "UX Design Basics") {
		t.Error("expected Grace's enrollment")
	}
	if strings.Contains(out, "Go Fundamentals") {
		t.Error("enrollment for another student shown")
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "Free"},
		{49.99, "$49.99"},
		{100, "$100.00"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.in); got != tt.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCourses_QueryIgnoresDescription(t *testing.T) {
	useConfig(t, "")
	useBackend(t)

	var buf bytes.Buffer
	if err := runCourses(context.Background(), &buf, models.CourseFilter{Query: "hands-on"}); err != nil {
		t.Fatalf("runCourses: %v", err)
	}
	if !strings.Contains(buf.String(), "No results.") {
		t.Errorf("description-only query matched courses:\n%s", buf.String())
	}

	usage := coursesCmd.Flags().Lookup("query").Usage
	if strings.Contains(usage, "description") {
		t.Errorf("--query help %q promises description matching", usage)
	}
}
