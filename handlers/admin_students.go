// ABOUTME: Admin student management pages
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

const adminStudentsPath = "/admin/students"

type studentListData struct {
	Students fetch.Result[[]models.Student]
	Filter   models.StudentFilter
}

type studentDetailData struct {
	Student fetch.Result[models.Student]
}

type studentFormData struct {
	ID     string
	Action string
	Form   models.StudentForm
	Errors models.ValidationErrors
	Error  string
}

func studentForm(id string, form models.StudentForm) studentFormData {
	data := studentFormData{ID: id, Action: adminStudentsPath + "/new", Form: form}
	if id != "" {
		data.Action = adminStudentsPath + "/" + id + "/edit"
	}
	data.Form.Password = ""
	return data
}

func (h *Handler) AdminStudents(w http.ResponseWriter, r *http.Request) {
	tok := token(r)
	filter := models.ParseStudentFilter(r.URL.Query())
	students := fetch.Load(r.Context(), func(ctx context.Context) ([]models.Student, error) {
		return h.api.ListStudents(ctx, tok)
	})
	if h.expired(w, r, students.Err()) {
		return
	}
	if list, ok := students.Get(); ok {
		students = fetch.Ok(filter.Apply(list))
	}
	h.render(w, r, statusFor(students.Err()), "admin_students", "Students", studentListData{Students: students, Filter: filter})
}

func (h *Handler) loadStudent(r *http.Request) fetch.Result[models.Student] {
	tok, id := token(r), chi.URLParam(r, "id")
	return fetch.Load(r.Context(), func(ctx context.Context) (models.Student, error) {
		return h.api.GetStudent(ctx, tok, id)
	})
}

func (h *Handler) AdminStudent(w http.ResponseWriter, r *http.Request) {
	student := h.loadStudent(r)
	if h.expired(w, r, student.Err()) {
		return
	}
	h.render(w, r, statusFor(student.Err()), "admin_student", "Student", studentDetailData{Student: student})
}

func (h *Handler) NewStudent(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "admin_student_form", "Add student", studentForm("", models.StudentForm{IsActive: true}))
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	h.saveStudent(w, r, "")
}

func (h *Handler) EditStudent(w http.ResponseWriter, r *http.Request) {
	student := h.loadStudent(r)
	if h.expired(w, r, student.Err()) {
		return
	}
	st, ok := student.Get()
	if !ok {
		h.renderError(w, r, failureStatus(student.Err()), services.UserMessage(student.Err()))
		return
	}
	h.render(w, r, http.StatusOK, "admin_student_form", "Edit student", studentForm(st.ID, models.StudentFormFrom(st)))
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	h.saveStudent(w, r, chi.URLParam(r, "id"))
}

// saveStudent creates or updates a student. An empty password is left out
// of the request, so an edit keeps the stored one.
func (h *Handler) saveStudent(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	form := models.ParseStudentForm(r.PostForm)
	title := "Add student"
	if id != "" {
		title = "Edit student"
	}

	if errs := models.Validate(form); errs != nil {
		data := studentForm(id, form)
		data.Errors = errs
		h.render(w, r, http.StatusUnprocessableEntity, "admin_student_form", title, data)
		return
	}

	var err error
	if id == "" {
		_, err = h.api.CreateStudent(r.Context(), token(r), form.Input())
	} else {
		_, err = h.api.UpdateStudent(r.Context(), token(r), id, form.Input())
	}
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r.Context(), "Saving student", err)
		h.notifier.Error(w, r, services.UserMessage(err))
		http.Redirect(w, r, adminStudentsPath, http.StatusSeeOther)
		return
	}

	if id == "" {
		h.mutated(w, r, adminStudentsPath, "Student created successfully.")
		return
	}
	h.mutated(w, r, adminStudentsPath, "Student updated successfully.")
}

func (h *Handler) ConfirmDeleteStudent(w http.ResponseWriter, r *http.Request) {
	student := h.loadStudent(r)
	if h.expired(w, r, student.Err()) {
		return
	}
	st, ok := student.Get()
	if !ok {
		h.renderError(w, r, failureStatus(student.Err()), services.UserMessage(student.Err()))
		return
	}
	h.render(w, r, http.StatusOK, "confirm_delete", "Delete student", confirmData{
		Kind:   "student",
		Name:   st.Name,
		Action: adminStudentsPath + "/" + st.ID + "/delete",
		Cancel: adminStudentsPath,
	})
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	err := h.api.DeleteStudent(r.Context(), token(r), chi.URLParam(r, "id"))
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		logFailure(r.Context(), "Deleting student", err)
		h.notifier.Error(w, r, services.UserMessage(err))
		http.Redirect(w, r, adminStudentsPath, http.StatusSeeOther)
		return
	}
	h.mutated(w, r, adminStudentsPath, "Student deleted successfully.")
}
