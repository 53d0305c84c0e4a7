// ABOUTME: Shared output helpers for learnctl
// ABOUTME: Renders lipgloss tables for humans and indented JSON for scripts

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	primary = lipgloss.Color("#7C3AED")
	success = lipgloss.Color("#10B981")
	danger  = lipgloss.Color("#EF4444")
	muted   = lipgloss.Color("#6B7280")

	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(primary).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleOK     = lipgloss.NewStyle().Foreground(success).Bold(true)
	styleError  = lipgloss.NewStyle().Foreground(danger).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(muted)
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, styleMuted.Render("No results."))
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(muted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, styleMuted.Render(fmt.Sprintf("%d result(s)", len(rows))))
}
