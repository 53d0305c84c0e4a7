// ABOUTME: Dashboard aggregate models
// ABOUTME: Admin platform statistics and per-student learning summaries

package models

// DashboardStats is returned by GET /dashboard/stats
type DashboardStats struct {
	TotalStudents    int     `json:"totalStudents"`
	TotalCourses     int     `json:"totalCourses"`
	TotalEnrollments int     `json:"totalEnrollments"`
	Revenue          float64 `json:"revenue"`
	StudentGrowth    float64 `json:"studentGrowth"`
	CourseGrowth     float64 `json:"courseGrowth"`
	EnrollmentGrowth float64 `json:"enrollmentGrowth"`
	RevenueGrowth    float64 `json:"revenueGrowth"`
}

// SystemStatus is returned by GET /dashboard/system-status
type SystemStatus struct {
	ServerStatus string  `json:"serverStatus"`
	ActiveUsers  int     `json:"activeUsers"`
	SystemLoad   float64 `json:"systemLoad"`
}

// AdminDashboard joins the five admin dashboard fetches
type AdminDashboard struct {
	Stats             DashboardStats
	RecentStudents    []Student
	PopularCourses    []Course
	RecentEnrollments []Enrollment
	SystemStatus      SystemStatus
}

// EnrolledCourse is one row of GET /enrollments/user/{id}
type EnrolledCourse struct {
	ID           string     `json:"_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Instructor   Instructor `json:"instructor"`
	Image        string     `json:"image,omitempty"`
	Progress     int        `json:"progress,omitempty"`
	LastAccessed string     `json:"lastAccessed,omitempty"`
	NextLesson   string     `json:"nextLesson,omitempty"`
}

type Event struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Instructor string `json:"instructor"`
}

type Achievement struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// UserStats is returned by GET /enrollments/user/{id}/stats
type UserStats struct {
	LearningTime    string `json:"learningTime"`
	CoursesEnrolled int    `json:"coursesEnrolled"`
	Certificates    int    `json:"certificates"`
}

// StudentDashboard joins the four student dashboard fetches
type StudentDashboard struct {
	Courses      []EnrolledCourse
	Events       []Event
	Achievements []Achievement
	Stats        UserStats
}
