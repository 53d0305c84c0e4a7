// ABOUTME: Tests for role-based access control middleware
// ABOUTME: Verifies admin-only pages redirect or reject non-admin sessions

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MohamedIjlal27/LMS/models"
)

func requestAs(method, path string, state models.AuthState) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	return req.WithContext(WithAuthState(req.Context(), state))
}

var (
	adminState   = models.AuthState{Token: "t", IsAuthenticated: true, User: &models.User{ID: "1", Role: models.RoleAdmin}}
	studentState = models.AuthState{Token: "t", IsAuthenticated: true, User: &models.User{ID: "2", Role: models.RoleStudent}}
)

func TestRequireRole_AdminPasses(t *testing.T) {
	handler := RequireRole(models.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, requestAs(http.MethodGet, "/admin/courses", adminState))

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireRole_StudentRedirectedToDashboard(t *testing.T) {
	handler := RequireRole(models.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for a student on an admin page")
	})

	rec := httptest.NewRecorder()
	handler(rec, requestAs(http.MethodGet, "/admin/students", studentState))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != DashboardPath {
		t.Errorf("Location = %q, want %q", loc, DashboardPath)
	}
}

func TestRequireRole_StudentOnJSONEndpointReturns403(t *testing.T) {
	handler := RequireRole(models.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	rec := httptest.NewRecorder()
	handler(rec, requestAs(http.MethodPost, "/api/uploads/course-image", studentState))

	if rec.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	var errResp struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Response body is not valid JSON: %v; body: %s", err, rec.Body.String())
	}
	if errResp.Code != http.StatusForbidden {
		t.Errorf("Error code = %d, want %d", errResp.Code, http.StatusForbidden)
	}
}

func TestRequireRole_AnonymousRedirectedToLogin(t *testing.T) {
	handler := RequireRole(models.RoleStudent)(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called without a session")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != LoginPath {
		t.Errorf("Location = %q, want %q", loc, LoginPath)
	}
}

func TestRequireRole_TokenWithoutProfileReturns503(t *testing.T) {
	handler := RequireRole(models.RoleStudent)(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called without a profile")
	})

	state := models.AuthState{Token: "t", IsAuthenticated: true}
	rec := httptest.NewRecorder()
	handler(rec, requestAs(http.MethodGet, "/dashboard", state))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRequireRole_UnknownRolePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("RequireRole should panic for an unknown role")
		}
	}()
	RequireRole(models.Role("superuser"))
}
