// ABOUTME: Admin enrollment management pages
// ABOUTME: List with filters, create with concurrently loaded options, confirmed delete

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MohamedIjlal27/LMS/fetch"
	"github.com/MohamedIjlal27/LMS/models"
	"github.com/MohamedIjlal27/LMS/services"
)

const adminEnrollmentsPath = "/admin/enrollments"

type enrollmentListData struct {
	Enrollments fetch.Result[[]models.Enrollment]
	Filter      models.EnrollmentFilter
}

type enrollmentOptions struct {
	Students []models.Student
	Courses  []models.Course
}

type enrollmentFormData struct {
	Options fetch.Result[enrollmentOptions]
	Form    models.EnrollmentForm
	Errors  models.ValidationErrors
	Error   string
}

func (h *Handler) AdminEnrollments(w http.ResponseWriter, r *http.Request) {
	tok := token(r)
	filter := models.ParseEnrollmentFilter(r.URL.Query())
	enrollments := fetch.Load(r.Context(), func(ctx context.Context) ([]models.Enrollment, error) {
		return h.api.ListEnrollments(ctx, tok)
	})
	if h.expired(w, r, enrollments.Err()) {
		return
	}
	if list, ok := enrollments.Get(); ok {
		enrollments = fetch.Ok(filter.Apply(list))
	}
	h.render(w, r, statusFor(enrollments.Err()), "admin_enrollments", "Enrollments",
		enrollmentListData{Enrollments: enrollments, Filter: filter})
}

// loadOptions fetches students and courses concurrently.
func (h *Handler) loadOptions(r *http.Request) fetch.Result[enrollmentOptions] {
	tok := token(r)
	var opts enrollmentOptions
	err := fetch.All(r.Context(),
		fetch.Into(&opts.Students, func(ctx context.Context) ([]models.Student, error) {
			return h.api.ListStudents(ctx, tok)
		}),
		fetch.Into(&opts.Courses, func(ctx context.Context) ([]models.Course, error) {
			return h.api.ListCourses(ctx, tok)
		}),
	)
	return joined(opts, err)
}

func (h *Handler) NewEnrollment(w http.ResponseWriter, r *http.Request) {
	opts := h.loadOptions(r)
	if h.expired(w, r, opts.Err()) {
		return
	}
	h.render(w, r, statusFor(opts.Err()), "admin_enrollment_form", "Add enrollment", enrollmentFormData{Options: opts})
}

func (h *Handler) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	form := models.ParseEnrollmentForm(r.PostForm)

	if errs := models.Validate(form); errs != nil {
		opts := h.loadOptions(r)
		if h.expired(w, r, opts.Err()) {
			return
		}
		h.render(w, r, http.StatusUnprocessableEntity, "admin_enrollment_form", "Add enrollment",
			enrollmentFormData{Options: opts, Form: form, Errors: errs})
		return
	}

	_, err := h.api.CreateEnrollment(r.Context(), token(r), form.Input())
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r.Context(), "Creating enrollment", err)
		h.notifier.Error(w, r, services.UserMessage(err))
		http.Redirect(w, r, adminEnrollmentsPath, http.StatusSeeOther)
		return
	}
	h.mutated(w, r, adminEnrollmentsPath, "Enrollment created successfully.")
}

// ConfirmDeleteEnrollment finds the enrollment in the list; the backend has
// no single-enrollment read.
func (h *Handler) ConfirmDeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := services.ValidateID(id); err != nil {
		h.renderError(w, r, http.StatusNotFound, services.UserMessage(err))
		return
	}
	list, err := h.api.ListEnrollments(r.Context(), token(r))
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		h.renderError(w, r, failureStatus(err), services.UserMessage(err))
		return
	}
	for _, e := range list {
		if e.ID != id {
			continue
		}
		h.render(w, r, http.StatusOK, "confirm_delete", "Delete enrollment", confirmData{
			Kind:   "enrollment",
			Name:   e.Student.Label() + " in " + e.Course.Label(),
			Action: adminEnrollmentsPath + "/" + e.ID + "/delete",
			Cancel: adminEnrollmentsPath,
		})
		return
	}
	h.renderError(w, r, http.StatusNotFound, services.UserMessage(services.ErrNotFound))
}

func (h *Handler) DeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	err := h.api.DeleteEnrollment(r.Context(), token(r), chi.URLParam(r, "id"))
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r.Context(), "Deleting enrollment", err)
		h.notifier.Error(w, r, services.UserMessage(err))
		http.Redirect(w, r, adminEnrollmentsPath, http.StatusSeeOther)
		return
	}
	h.mutated(w, r, adminEnrollmentsPath, "Enrollment deleted successfully.")
}
