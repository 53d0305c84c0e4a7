// ABOUTME: Template helper functions
// ABOUTME: Formatting for prices, growth figures, markdown and error messages

package views

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/MohamedIjlal27/LMS/models"
	"github.com/MohamedIjlal27/LMS/services"
)

// md renders without raw HTML passthrough; goldmark escapes it by default.
var md = goldmark.New()

func funcMap() template.FuncMap {
	return template.FuncMap{
		"markdown":    markdown,
		"price":       price,
		"growth":      growth,
		"userMessage": services.UserMessage,
		"fieldError":  fieldError,
		"initials":    initials,
		"categories":  func() []string { return models.Categories },
		"levels":      func() []string { return models.Levels },
		"enrollmentStatuses": func() []string {
			return models.EnrollmentStatuses
		},
	}
}

func markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		slog.Warn("Markdown conversion failed", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func price(p float64) string {
	if p <= 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", p)
}

func growth(g float64) string {
	if g > 0 {
		return fmt.Sprintf("+%.1f%%", g)
	}
	return fmt.Sprintf("%.1f%%", g)
}

func fieldError(errs models.ValidationErrors, field string) string {
	return errs[field]
}

func initials(name string) string {
	var out strings.Builder
	n := 0
	for _, part := range strings.Fields(name) {
		out.WriteString(strings.ToUpper(string([]rune(part)[:1])))
		if n++; n == 2 {
			break
		}
	}
	return out.String()
}
