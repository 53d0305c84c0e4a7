// ABOUTME: Admin course management pages
// ABOUTME: List with filters, detail, create, edit and confirmed delete

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MohamedIjlal27/LMS/fetch"
	"github.com/MohamedIjlal27/LMS/models"
	"github.com/MohamedIjlal27/LMS/services"
)

const adminCoursesPath = "/admin/courses"

type courseListData struct {
	Courses fetch.Result[[]models.Course]
	Filter  models.CourseFilter
}

type courseDetailData struct {
	Course fetch.Result[models.Course]
}

type courseFormData struct {
	ID            string
	Action        string
	Form          models.CourseForm
	Errors        models.ValidationErrors
	Error         string
	UploadEnabled bool
	MaxUploadMB   int64
}

type confirmData struct {
	Kind   string
	Name   string
	Action string
	Cancel string
	Error  string
}

func (h *Handler) courseForm(id string, form models.CourseForm) courseFormData {
	data := courseFormData{ID: id, Action: adminCoursesPath + "/new", Form: form}
	if id != "" {
		data.Action = adminCoursesPath + "/" + id + "/edit"
	}
	if h.images != nil {
		data.UploadEnabled = true
		data.MaxUploadMB = h.images.MaxBytes() >> 20
	}
	return data
}

func (h *Handler) AdminCourses(w http.ResponseWriter, r *http.Request) {
	tok := token(r)
	filter := models.ParseCourseFilter(r.URL.Query())
	courses := fetch.Load(r.Context(), func(ctx context.Context) ([]models.Course, error) {
		return h.api.ListCourses(ctx, tok)
	})
	if h.expired(w, r, courses.Err()) {
		return
	}
	if list, ok := courses.Get(); ok {
		courses = fetch.Ok(filter.Apply(list))
	}
	h.render(w, r, statusFor(courses.Err()), "admin_courses", "Courses", courseListData{Courses: courses, Filter: filter})
}

func (h *Handler) loadCourse(r *http.Request) fetch.Result[models.Course] {
	tok, id := token(r), chi.URLParam(r, "id")
	return fetch.Load(r.Context(), func(ctx context.Context) (models.Course, error) {
		return h.api.GetCourse(ctx, tok, id)
	})
}

func (h *Handler) AdminCourse(w http.ResponseWriter, r *http.Request) {
	course := h.loadCourse(r)
	if h.expired(w, r, course.Err()) {
		return
	}
	h.render(w, r, statusFor(course.Err()), "admin_course", "Course", courseDetailData{Course: course})
}

func (h *Handler) NewCourse(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "admin_course_form", "Create course", h.courseForm("", models.CourseForm{}))
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	h.saveCourse(w, r, "")
}

func (h *Handler) EditCourse(w http.ResponseWriter, r *http.Request) {
	course := h.loadCourse(r)
	if h.expired(w, r, course.Err()) {
		return
	}
	c, ok := course.Get()
	if !ok {
		h.renderError(w, r, failureStatus(course.Err()), services.UserMessage(course.Err()))
		return
	}
	h.render(w, r, http.StatusOK, "admin_course_form", "Edit course", h.courseForm(c.ID, models.CourseFormFrom(c)))
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	h.saveCourse(w, r, chi.URLParam(r, "id"))
}

// saveCourse validates the form and creates (id empty) or updates a course.
// Invalid input re-renders the form without calling the backend.
func (h *Handler) saveCourse(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	form := models.ParseCourseForm(r.PostForm)
	title := "Create course"
	if id != "" {
		title = "Edit course"
	}

	if errs := models.Validate(form); errs != nil {
		data := h.courseForm(id, form)
		data.Errors = errs
		h.render(w, r, http.StatusUnprocessableEntity, "admin_course_form", title, data)
		return
	}

	var err error
	if id == "" {
		_, err = h.api.CreateCourse(r.Context(), token(r), form.Input())
	} else {
		_, err = h.api.UpdateCourse(r.Context(), token(r), id, form.Input())
	}
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r.Context(), "Saving course", err)
		h.notifier.Error(w, r, services.UserMessage(err))
		http.Redirect(w, r, adminCoursesPath, http.StatusSeeOther)
		return
	}

	h.catalog.Invalidate(r.Context(), id)
	if id == "" {
		h.mutated(w, r, adminCoursesPath, "Course created successfully.")
		return
	}
	h.mutated(w, r, adminCoursesPath, "Course updated successfully.")
}

// ConfirmDeleteCourse renders the confirmation page; it sends no request
// that changes anything.
func (h *Handler) ConfirmDeleteCourse(w http.ResponseWriter, r *http.Request) {
	course := h.loadCourse(r)
	if h.expired(w, r, course.Err()) {
		return
	}
	c, ok := course.Get()
	if !ok {
		h.renderError(w, r, failureStatus(course.Err()), services.UserMessage(course.Err()))
		return
	}
	h.render(w, r, http.StatusOK, "confirm_delete", "Delete course", confirmData{
		Kind:   "course",
		Name:   c.Title,
		Action: adminCoursesPath + "/" + c.ID + "/delete",
		Cancel: adminCoursesPath,
	})
}

// DeleteCourse issues exactly one DELETE.
func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.api.DeleteCourse(r.Context(), token(r), id)
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r.Context(), "Deleting course", err)
		h.notifier.Error(w, r, services.UserMessage(err))
		http.Redirect(w, r, adminCoursesPath, http.StatusSeeOther)
		return
	}
	h.catalog.Invalidate(r.Context(), id)
	h.mutated(w, r, adminCoursesPath, "Course deleted successfully.")
}
