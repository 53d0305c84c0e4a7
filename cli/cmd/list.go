// ABOUTME: courses, students and enrollments list commands
// ABOUTME: Fetch from the backend and apply the same filters as the web console

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MohamedIjlal27/LMS/models"
)

var (
	courseFilter     models.CourseFilter
	studentFilter    models.StudentFilter
	enrollmentFilter models.EnrollmentFilter
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List courses",
	Long: `List courses. Anonymous callers see what the backend serves publicly;
signed-in admins also see drafts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCourses(cmd.Context(), cmd.OutOrStdout(), courseFilter)
	},
}

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List students (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStudents(cmd.Context(), cmd.OutOrStdout(), studentFilter)
	},
}

var enrollmentsCmd = &cobra.Command{
	Use:   "enrollments",
	Short: "List enrollments (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrollments(cmd.Context(), cmd.OutOrStdout(), enrollmentFilter)
	},
}

func init() {
	coursesCmd.Flags().StringVarP(&courseFilter.Query, "query", "q", "", "Match title or instructor")
	coursesCmd.Flags().StringVar(&courseFilter.Category, "category", "", "Category name")
	coursesCmd.Flags().StringVar(&courseFilter.Status, "status", "", "Published, Draft or all")

	studentsCmd.Flags().StringVarP(&studentFilter.Query, "query", "q", "", "Match name or email")
	studentsCmd.Flags().StringVar(&studentFilter.Status, "status", "", "Active, Inactive or all")

	enrollmentsCmd.Flags().StringVarP(&enrollmentFilter.Query, "query", "q", "", "Match student or course")
	enrollmentsCmd.Flags().StringVar(&enrollmentFilter.Status, "status", "", `"Not Started", "In Progress", "Completed" or all`)

	rootCmd.AddCommand(coursesCmd, studentsCmd, enrollmentsCmd)
}

func runCourses(ctx context.Context, w io.Writer, f models.CourseFilter) error {
	courses, err := newClient().ListCourses(ctx, storedToken())
	if err != nil {
		return fmt.Errorf("listing courses: %w", err)
	}
	courses = f.Apply(courses)
	if IsJSONOutput() {
		return printJSON(w, courses)
	}

	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{c.ID, c.Title, c.Category, c.Level, formatPrice(c.Price), c.Status()})
	}
	printTable(w, []string{"ID", "Title", "Category", "Level", "Price", "Status"}, rows)
	return nil
}

func runStudents(ctx context.Context, w io.Writer, f models.StudentFilter) error {
	token := storedToken()
	if token == "" {
		return errNotLoggedIn
	}
	students, err := newClient().ListStudents(ctx, token)
	if err != nil {
		return fmt.Errorf("listing students: %w", err)
	}
	students = f.Apply(students)
	if IsJSONOutput() {
		return printJSON(w, students)
	}

	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{s.ID, s.Name, s.Email, s.Status(), s.CreatedAt})
	}
	printTable(w, []string{"ID", "Name", "Email", "Status", "Joined"}, rows)
	return nil
}

func runEnrollments(ctx context.Context, w io.Writer, f models.EnrollmentFilter) error {
	token := storedToken()
	if token == "" {
		return errNotLoggedIn
	}
	enrollments, err := newClient().ListEnrollments(ctx, token)
	if err != nil {
		return fmt.Errorf("listing enrollments: %w", err)
	}
	enrollments = f.Apply(enrollments)
	if IsJSONOutput() {
		return printJSON(w, enrollments)
	}

	rows := make([][]string, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, []string{e.ID, e.Student.Label(), e.Course.Label(), strconv.Itoa(e.Progress) + "%", e.Status})
	}
	printTable(w, []string{"ID", "Student", "Course", "Progress", "Status"}, rows)
	return nil
}

func formatPrice(p float64) string {
	if p == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", p)
}
