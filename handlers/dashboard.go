// ABOUTME: Student and admin dashboards
// ABOUTME: Each joins several concurrent backend reads into one result

package handlers

import (
	"context"
	"net/http"

	"github.com/MohamedIjlal27/LMS/fetch"
	"github.com/MohamedIjlal27/LMS/middleware"
	"github.com/MohamedIjlal27/LMS/models"
)

type studentDashboardData struct {
	Dashboard fetch.Result[models.StudentDashboard]
}

type adminDashboardData struct {
	Dashboard fetch.Result[models.AdminDashboard]
}

// joined wraps the outcome of fetch.All: any failure is one error state.
func joined[T any](data T, err error) fetch.Result[T] {
	if err != nil {
		return fetch.Fail[T](err)
	}
	return fetch.Ok(data)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	state := middleware.FromContext(r.Context())
	if state.User.IsAdmin() {
		http.Redirect(w, r, models.RoleAdmin.LandingPath(), http.StatusSeeOther)
		return
	}
	tok, uid := state.Token, state.User.ID

	var d models.StudentDashboard
	err := fetch.All(r.Context(),
		fetch.Into(&d.Courses, func(ctx context.Context) ([]models.EnrolledCourse, error) {
			return h.api.UserEnrollments(ctx, tok, uid)
		}),
		fetch.Into(&d.Events, func(ctx context.Context) ([]models.Event, error) {
			return h.api.UpcomingEvents(ctx, tok)
		}),
		fetch.Into(&d.Achievements, func(ctx context.Context) ([]models.Achievement, error) {
			return h.api.UserAchievements(ctx, tok, uid)
		}),
		fetch.Into(&d.Stats, func(ctx context.Context) (models.UserStats, error) {
			return h.api.UserStats(ctx, tok, uid)
		}),
	)
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r.Context(), "Student dashboard", err)
	}
	h.render(w, r, statusFor(err), "dashboard", "Dashboard", studentDashboardData{Dashboard: joined(d, err)})
}

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	tok := token(r)

	var d models.AdminDashboard
	err := fetch.All(r.Context(),
		fetch.Into(&d.Stats, func(ctx context.Context) (models.DashboardStats, error) {
			return h.api.DashboardStats(ctx, tok)
		}),
		fetch.Into(&d.RecentStudents, func(ctx context.Context) ([]models.Student, error) {
			return h.api.RecentStudents(ctx, tok)
		}),
		fetch.Into(&d.PopularCourses, func(ctx context.Context) ([]models.Course, error) {
			return h.api.PopularCourses(ctx, tok)
		}),
		fetch.Into(&d.RecentEnrollments, func(ctx context.Context) ([]models.Enrollment, error) {
			return h.api.RecentEnrollments(ctx, tok)
		}),
		fetch.Into(&d.SystemStatus, func(ctx context.Context) (models.SystemStatus, error) {
			return h.api.SystemStatus(ctx, tok)
		}),
	)
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r.Context(), "Admin dashboard", err)
	}
	h.render(w, r, statusFor(err), "admin_dashboard", "Admin dashboard", adminDashboardData{Dashboard: joined(d, err)})
}
