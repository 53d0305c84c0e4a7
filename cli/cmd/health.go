// ABOUTME: Health command for learnctl
// ABOUTME: Checks backend connectivity and, when signed in, that the stored token is still accepted

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MohamedIjlal27/LMS/services"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the LMS backend and whether the stored token is still valid.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHealth(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

type healthReport struct {
	Backend   string `json:"backend"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Courses   int    `json:"courses"`
	Session   string `json:"session"`
	Error     string `json:"error,omitempty"`
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	report := checkHealth(ctx, newClient(), storedToken())
	report.Backend = GetAPIURL()

	if IsJSONOutput() {
		printJSON(w, report)
	} else {
		fmt.Fprintln(w, formatHealthHuman(report))
	}

	if report.Status != "ok" {
		return 2
	}
	return 0
}

func checkHealth(ctx context.Context, c *services.APIClient, token string) healthReport {
	report := healthReport{Status: "ok", Session: "none"}

	start := time.Now()
	courses, err := c.ListCourses(ctx, "")
	report.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		report.Status = "unreachable"
		report.Error = err.Error()
		return report
	}
	report.Courses = len(courses)

	if token == "" {
		return report
	}
	_, err = c.Me(ctx, token)
	switch {
	case err == nil:
		report.Session = "valid"
	case errors.Is(err, services.ErrUnauthorized):
		report.Session = "expired"
	default:
		report.Session = "unknown"
	}
	return report
}

// formatHealthHuman formats the report for human readability
func formatHealthHuman(r healthReport) string {
	status := styleOK.Render(r.Status)
	if r.Status != "ok" {
		status = styleError.Render(r.Status) + " (" + r.Error + ")"
	}
	return fmt.Sprintf(`Backend:  %s
Status:   %s
Latency:  %dms
Courses:  %d
Session:  %s`, r.Backend, status, r.LatencyMS, r.Courses, r.Session)
}
