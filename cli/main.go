// ABOUTME: Entry point for the learnctl CLI
// ABOUTME: Operator tool for signing in and listing LMS courses, students and enrollments

package main

import (
	"fmt"
	"os"

	"github.com/MohamedIjlal27/LMS/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
