// ABOUTME: Client-side list filters applied over already-fetched results
// ABOUTME: Substring matches on names/titles and equality matches on category/status

package models

import (
	"net/url"
	"strings"

	"github.com/gosimple/slug"
)

// FilterAll is the select value meaning "no constraint".
const FilterAll = "all"

func matchesQuery(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func matchesChoice(choice, value string) bool {
	return choice == "" || choice == FilterAll || choice == value
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CourseFilter is the admin course list filter.
type CourseFilter struct {
	Query    string // title or instructor
	Category string // exact category, or "all"
	Status   string // Published, Draft, or "all"
}

func ParseCourseFilter(v url.Values) CourseFilter {
	return CourseFilter{Query: v.Get("q"), Category: v.Get("category"), Status: v.Get("status")}
}

func (f CourseFilter) Apply(courses []Course) []Course {
	q := normalize(f.Query)
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if matchesQuery(q, c.Title, c.Instructor.Name) &&
			matchesChoice(f.Category, c.Category) &&
			matchesChoice(f.Status, c.Status()) {
			out = append(out, c)
		}
	}
	return out
}

// CatalogFilter is the public catalog filter. Category and level compare by
// slug so "data-science" matches "Data Science".
type CatalogFilter struct {
	Query    string
	Category string
	Level    string
}

func ParseCatalogFilter(v url.Values) CatalogFilter {
	return CatalogFilter{Query: v.Get("q"), Category: v.Get("category"), Level: v.Get("level")}
}

func (f CatalogFilter) Apply(courses []Course) []Course {
	q := normalize(f.Query)
	category := slug.Make(f.Category)
	level := slug.Make(f.Level)
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if matchesQuery(q, c.Title, c.Description, c.Instructor.Name) &&
			matchesChoice(category, c.CategorySlug()) &&
			matchesChoice(level, slug.Make(c.Level)) {
			out = append(out, c)
		}
	}
	return out
}

// StudentFilter is the admin student list filter.
type StudentFilter struct {
	Query  string // name or email
	Status string // Active, Inactive, or "all"
}

func ParseStudentFilter(v url.Values) StudentFilter {
	return StudentFilter{Query: v.Get("q"), Status: v.Get("status")}
}

func (f StudentFilter) Apply(students []Student) []Student {
	q := normalize(f.Query)
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if matchesQuery(q, s.Name, s.Email) && matchesChoice(f.Status, s.Status()) {
			out = append(out, s)
		}
	}
	return out
}

// EnrollmentFilter is the admin enrollment list filter.
type EnrollmentFilter struct {
	Query  string // student name or course title
	Status string
}

func ParseEnrollmentFilter(v url.Values) EnrollmentFilter {
	return EnrollmentFilter{Query: v.Get("q"), Status: v.Get("status")}
}

func (f EnrollmentFilter) Apply(enrollments []Enrollment) []Enrollment {
	q := normalize(f.Query)
	out := make([]Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if matchesQuery(q, e.Student.Label(), e.Course.Label()) && matchesChoice(f.Status, e.Status) {
			out = append(out, e)
		}
	}
	return out
}
