// ABOUTME: Public catalog pages and the enrollment payment flow
// ABOUTME: Course reads go through the cached catalog; enrollment uses the caller's token

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MohamedIjlal27/LMS/fetch"
	"github.com/MohamedIjlal27/LMS/middleware"
	"github.com/MohamedIjlal27/LMS/models"
	"github.com/MohamedIjlal27/LMS/services"
)

const featuredCount = 3

type homeData struct {
	Featured fetch.Result[[]models.Course]
}

type catalogData struct {
	Courses fetch.Result[[]models.Course]
	Filter  models.CatalogFilter
}

type courseData struct {
	Course   fetch.Result[models.Course]
	Enrolled bool
}

type enrollData struct {
	Course models.Course
	Form   models.PaymentForm
	Errors models.ValidationErrors
	Error  string
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	featured := fetch.Load(r.Context(), func(ctx context.Context) ([]models.Course, error) {
		return h.catalog.Featured(ctx, featuredCount)
	})
	h.render(w, r, http.StatusOK, "home", "", homeData{Featured: featured})
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	filter := models.ParseCatalogFilter(r.URL.Query())
	courses := fetch.Load(r.Context(), h.catalog.Courses)
	if list, ok := courses.Get(); ok {
		courses = fetch.Ok(filter.Apply(list))
	}
	h.render(w, r, statusFor(courses.Err()), "catalog", "Courses", catalogData{Courses: courses, Filter: filter})
}

// publishedCourse loads a course for public pages; drafts are hidden from
// everyone but admins.
func (h *Handler) publishedCourse(ctx context.Context, id string) (models.Course, error) {
	course, err := h.catalog.Course(ctx, id)
	if err != nil {
		return course, err
	}
	state := middleware.FromContext(ctx)
	if !course.IsPublished && (state.User == nil || !state.User.IsAdmin()) {
		return models.Course{}, services.ErrNotFound
	}
	return course, nil
}

func (h *Handler) CourseDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data := courseData{
		Course: fetch.Load(r.Context(), func(ctx context.Context) (models.Course, error) {
			return h.publishedCourse(ctx, id)
		}),
	}

	state := middleware.FromContext(r.Context())
	if data.Course.IsLoaded() && state.User != nil && !state.User.IsAdmin() {
		check, err := h.api.CheckEnrollment(r.Context(), state.Token, id, state.User.ID)
		if h.expired(w, r, err) {
			return
		}
		data.Enrolled = err == nil && check.IsEnrolled
	}

	title := "Course"
	if c, ok := data.Course.Get(); ok {
		title = c.Title
	}
	h.render(w, r, statusFor(data.Course.Err()), "course", title, data)
}

// enrollable loads the course and sends already-enrolled users to their
// dashboard. It returns false when a response has been written.
func (h *Handler) enrollable(w http.ResponseWriter, r *http.Request) (models.Course, bool) {
	id := chi.URLParam(r, "id")
	state := middleware.FromContext(r.Context())

	course, err := h.publishedCourse(r.Context(), id)
	if err != nil {
		h.renderError(w, r, failureStatus(err), services.UserMessage(err))
		return course, false
	}

	check, err := h.api.CheckEnrollment(r.Context(), state.Token, course.ID, state.User.ID)
	if h.expired(w, r, err) {
		return course, false
	}
	if err != nil {
		logFailure(r.Context(), "Enrollment check", err)
		h.renderError(w, r, http.StatusBadGateway, services.UserMessage(err))
		return course, false
	}
	if check.IsEnrolled {
		h.notifier.Add(w, r, services.NotifyInfo, "You are already enrolled in this course.")
		http.Redirect(w, r, middleware.DashboardPath, http.StatusSeeOther)
		return course, false
	}
	return course, true
}

func (h *Handler) EnrollPage(w http.ResponseWriter, r *http.Request) {
	course, ok := h.enrollable(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "enroll", "Enroll", enrollData{Course: course})
}

// Enroll creates the enrollment and then pays for it with the submitted card.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	form := models.ParsePaymentForm(r.PostForm)

	course, ok := h.enrollable(w, r)
	if !ok {
		return
	}

	if errs := models.Validate(form); errs != nil {
		form.CVV = ""
		h.render(w, r, http.StatusUnprocessableEntity, "enroll", "Enroll", enrollData{Course: course, Form: form, Errors: errs})
		return
	}

	state := middleware.FromContext(r.Context())
	enrollment, err := h.api.CreateEnrollment(r.Context(), state.Token, models.EnrollmentInput{
		StudentID: state.User.ID,
		CourseID:  course.ID,
	})
	if err == nil {
		err = h.api.Pay(r.Context(), state.Token, enrollment.ID, models.NewCardPayment(form))
	}
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r.Context(), "Enrollment", err)
		form.CVV = ""
		msg := services.UserMessage(err)
		var apiErr *services.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && apiErr.Message == "" {
			msg = "Payment failed. Please check your card details."
		}
		h.render(w, r, http.StatusOK, "enroll", "Enroll", enrollData{Course: course, Form: form, Error: msg})
		return
	}

	h.mutated(w, r, middleware.DashboardPath, "You are now enrolled in "+course.Title+".")
}
