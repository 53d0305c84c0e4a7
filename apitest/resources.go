// ABOUTME: Resource handlers of the fake backend
// ABOUTME: CRUD over the in-memory courses, students and enrollments

package apitest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MohamedIjlal27/LMS/models"
)

func withUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func userFrom(ctx context.Context) models.User {
	u, _ := ctx.Value(userKey{}).(models.User)
	return u
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func courseID(c models.Course) string         { return c.ID }
func studentID(st models.Student) string      { return st.ID }
func enrollmentID(e models.Enrollment) string { return e.ID }

// Courses

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.courses)
}

func (s *Server) getCourse(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.courses, chi.URLParam(r, "id"), courseID)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Course not found")
		return
	}
	writeJSON(w, http.StatusOK, s.courses[i])
}

func applyCourse(c *models.Course, in models.CourseInput) {
	c.Title = in.Title
	c.Description = in.Description
	c.Category = in.Category
	c.Level = in.Level
	c.Price = in.Price
	c.Instructor = models.Instructor{Name: in.Instructor}
	c.Duration = in.Duration
	c.IsPublished = in.IsPublished
	c.ImageURL = in.ImageURL
}

func (s *Server) createCourse(w http.ResponseWriter, r *http.Request) {
	var in models.CourseInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Course{ID: s.id()}
	applyCourse(&c, in)
	s.courses = append(s.courses, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCourse(w http.ResponseWriter, r *http.Request) {
	var in models.CourseInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.courses, chi.URLParam(r, "id"), courseID)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Course not found")
		return
	}
	applyCourse(&s.courses[i], in)
	writeJSON(w, http.StatusOK, s.courses[i])
}

func (s *Server) deleteCourse(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.courses, chi.URLParam(r, "id"), courseID)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Course not found")
		return
	}
	s.courses = append(s.courses[:i], s.courses[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

// Students

func (s *Server) listStudents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.students)
}

func (s *Server) getStudent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.students, chi.URLParam(r, "id"), studentID)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Student not found")
		return
	}
	writeJSON(w, http.StatusOK, s.students[i])
}

func (s *Server) createStudent(w http.ResponseWriter, r *http.Request) {
	var in models.StudentInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := models.Student{ID: s.id(), Name: in.Name, Email: in.Email, Bio: in.Bio, IsActive: in.IsActive}
	s.students = append(s.students, st)
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) updateStudent(w http.ResponseWriter, r *http.Request) {
	var in models.StudentInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.students, chi.URLParam(r, "id"), studentID)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Student not found")
		return
	}
	st := &s.students[i]
	st.Name, st.Email, st.Bio, st.IsActive = in.Name, in.Email, in.Bio, in.IsActive
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) deleteStudent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.students, chi.URLParam(r, "id"), studentID)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Student not found")
		return
	}
	s.students = append(s.students[:i], s.students[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

// Enrollments

func (s *Server) listEnrollments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.enrollments)
}

func (s *Server) createEnrollment(w http.ResponseWriter, r *http.Request) {
	var in models.EnrollmentInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ci := indexOf(s.courses, in.CourseID, courseID)
	si := indexOf(s.students, in.StudentID, studentID)
	if ci < 0 || si < 0 {
		writeMessage(w, http.StatusBadRequest, "Unknown student or course")
		return
	}
	e := models.Enrollment{
		ID:      s.id(),
		Student: models.Ref{ID: in.StudentID, Name: s.students[si].Name},
		Course:  models.Ref{ID: in.CourseID, Title: s.courses[ci].Title},
		Status:  models.EnrollmentNotStarted,
	}
	s.enrollments = append(s.enrollments, e)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) deleteEnrollment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.enrollments, chi.URLParam(r, "id"), enrollmentID)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Enrollment not found")
		return
	}
	s.enrollments = append(s.enrollments[:i], s.enrollments[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) checkEnrollment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()
	enrolled := false
	for _, e := range s.enrollments {
		if e.Course.ID == q.Get("courseId") && e.Student.ID == q.Get("studentId") {
			enrolled = true
		}
	}
	writeJSON(w, http.StatusOK, models.EnrollmentCheck{IsEnrolled: enrolled})
}

func (s *Server) pay(w http.ResponseWriter, r *http.Request) {
	var p models.PaymentRequest
	if !decode(w, r, &p) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.enrollments, id, enrollmentID) < 0 {
		writeMessage(w, http.StatusNotFound, "Enrollment not found")
		return
	}
	if len(p.CardNumber) < 12 {
		writeMessage(w, http.StatusBadRequest, "Card declined")
		return
	}
	s.payments[id] = p
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) userEnrollments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.EnrolledCourse{}
	for _, e := range s.enrollments {
		if e.Student.ID != id {
			continue
		}
		ec := models.EnrolledCourse{ID: e.Course.ID, Title: e.Course.Title, Progress: e.Progress}
		if i := indexOf(s.courses, e.Course.ID, courseID); i >= 0 {
			ec.Description = s.courses[i].Description
			ec.Instructor = s.courses[i].Instructor
		}
		out = append(out, ec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) userStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := models.UserStats{LearningTime: "12h 30m"}
	for _, e := range s.enrollments {
		if e.Student.ID == id {
			stats.CoursesEnrolled++
			if e.Progress >= 100 {
				stats.Certificates++
			}
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []models.Event{
		{ID: "ev1", Title: "Live Q&A: Goroutines", Date: "2024-06-01", Instructor: "Rob Pike"},
	})
}

func (s *Server) achievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []models.Achievement{
		{ID: "a1", Title: "First Steps", Description: "Completed your first lesson", Icon: "trophy"},
	})
}

// Dashboard

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.DashboardStats{
		TotalStudents:    len(s.students),
		TotalCourses:     len(s.courses),
		TotalEnrollments: len(s.enrollments),
		Revenue:          1234.5,
		StudentGrowth:    12.5,
	})
}

func (s *Server) recentStudents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.students)
}

func (s *Server) popularCourses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(3, len(s.courses))
	writeJSON(w, http.StatusOK, s.courses[:n])
}

func (s *Server) recentEnrollments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.enrollments)
}

func (s *Server) systemStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.SystemStatus{ServerStatus: "Operational", ActiveUsers: 42, SystemLoad: 37})
}
