// ABOUTME: Tests for template parsing and rendering
// ABOUTME: Verifies the three fetch states render and user content is escaped

package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MohamedIjlal27/LMS/fetch"
	"github.com/MohamedIjlal27/LMS/models"
	"github.com/MohamedIjlal27/LMS/services"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestNew_ParsesAllPages(t *testing.T) {
	r := newRenderer(t)
	for _, name := range []string{
		"home", "catalog", "course", "enroll", "login", "register", "dashboard",
		"admin_dashboard", "admin_courses", "admin_course", "admin_course_form",
		"admin_students", "admin_student", "admin_student_form",
		"admin_enrollments", "admin_enrollment_form", "confirm_delete", "error",
	} {
		if !r.Has(name) {
			t.Errorf("Missing page template %q", name)
		}
	}
	if r.Has("layout") || r.Has("partials") {
		t.Error("Layout and partials should not be pages")
	}
}

type catalogData struct {
	Courses fetch.Result[[]models.Course]
	Filter  models.CatalogFilter
}

func render(t *testing.T, name string, page Page) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	newRenderer(t).Render(rec, http.StatusOK, name, page)
	return rec
}

func TestRender_FetchStates(t *testing.T) {
	courses := []models.Course{{ID: "1", Title: "Go <script>alert(1)</script>", Price: 0}}

	tests := []struct {
		name   string
		result fetch.Result[[]models.Course]
		want   string
	}{
		{"loading", fetch.Result[[]models.Course]{}, "Loading..."},
		{"error", fetch.Fail[[]models.Course](services.ErrTransport), services.MsgGenericFailure},
		{"loaded", fetch.Ok(courses), "Go &lt;script&gt;alert(1)&lt;/script&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := render(t, "catalog", Page{Title: "Courses", Data: catalogData{Courses: tt.result}})
			if rec.Code != http.StatusOK {
				t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
			}
			if body := rec.Body.String(); !strings.Contains(body, tt.want) {
				t.Errorf("Body missing %q", tt.want)
			}
		})
	}
}

func TestRender_NavigationReflectsSession(t *testing.T) {
	data := catalogData{Courses: fetch.Ok([]models.Course{})}

	anon := render(t, "catalog", Page{Data: data}).Body.String()
	if !strings.Contains(anon, `href="/login"`) {
		t.Error("Anonymous navigation should link to login")
	}

	admin := models.AuthState{IsAuthenticated: true, User: &models.User{ID: "1", Name: "Ada Lovelace", Role: models.RoleAdmin}}
	body := render(t, "catalog", Page{Auth: admin, Data: data}).Body.String()
	if !strings.Contains(body, `href="/admin/dashboard"`) {
		t.Error("Admin navigation should link to the admin dashboard")
	}
	if !strings.Contains(body, `action="/logout"`) {
		t.Error("Signed-in navigation should include the logout form")
	}
	if !strings.Contains(body, ">AL<") {
		t.Error("Avatar should show initials")
	}
}

func TestRender_FlashesAndUnknownTemplate(t *testing.T) {
	page := Page{
		Flashes: []services.Notification{{Kind: services.NotifySuccess, Message: "Course created successfully."}},
		Data:    catalogData{Courses: fetch.Ok([]models.Course{})},
	}
	if body := render(t, "catalog", page).Body.String(); !strings.Contains(body, "flash-success") {
		t.Error("Flash notification should render")
	}

	rec := render(t, "missing", Page{})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestFuncs(t *testing.T) {
	if got := price(0); got != "Free" {
		t.Errorf("price(0) = %q, want Free", got)
	}
	if got := price(49.99); got != "$49.99" {
		t.Errorf("price(49.99) = %q, want $49.99", got)
	}
	if got := growth(12.5); got != "+12.5%" {
		t.Errorf("growth(12.5) = %q, want +12.5%%", got)
	}
	if got := initials("grace brewster hopper"); got != "GB" {
		t.Errorf("initials = %q, want GB", got)
	}
	html := string(markdown("**bold** <script>x</script>"))
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("markdown = %q, want strong tag", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("markdown should not pass raw HTML through: %q", html)
	}
}

func TestStatic_ServesAssets(t *testing.T) {
	rec := httptest.NewRecorder()
	Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
}
