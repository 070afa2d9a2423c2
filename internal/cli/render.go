package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/Octrafic/stepexec/internal/core/tester"
	"github.com/Octrafic/stepexec/internal/infra/storage"
)

const (
	defaultWidth = 100
	maxPreview   = 500
)

// Renderer formats results for a terminal.
type Renderer struct {
	width        int
	methodStyles map[string]lipgloss.Style
	methodBase   lipgloss.Style
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	subtleStyle  lipgloss.Style
	mutedStyle   lipgloss.Style
	accentStyle  lipgloss.Style
}

// NewRenderer styles output for out. Colors are dropped when noColor is set
// or out is not a terminal.
func NewRenderer(out io.Writer, width int, noColor bool) *Renderer {
	r := lipgloss.NewRenderer(out)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	if width <= 0 {
		width = defaultWidth
	}

	return &Renderer{
		width: width,
		methodStyles: map[string]lipgloss.Style{
			"GET":     r.NewStyle().Foreground(Theme.Success).Bold(true),
			"POST":    r.NewStyle().Foreground(Theme.Info).Bold(true),
			"PUT":     r.NewStyle().Foreground(Theme.Warning).Bold(true),
			"DELETE":  r.NewStyle().Foreground(Theme.Error).Bold(true),
			"PATCH":   r.NewStyle().Foreground(Theme.Primary).Bold(true),
			"HEAD":    r.NewStyle().Foreground(Theme.PrimaryDark).Bold(true),
			"OPTIONS": r.NewStyle().Foreground(Theme.Violet).Bold(true),
		},
		methodBase:   r.NewStyle().Foreground(Theme.TextSubtle).Bold(true),
		successStyle: r.NewStyle().Foreground(Theme.Success),
		errorStyle:   r.NewStyle().Foreground(Theme.Error),
		subtleStyle:  r.NewStyle().Foreground(Theme.TextSubtle),
		mutedStyle:   r.NewStyle().Foreground(Theme.TextMuted),
		accentStyle:  r.NewStyle().Foreground(Theme.Cyan),
	}
}

func (r *Renderer) method(m string) string {
	style, ok := r.methodStyles[m]
	if !ok {
		style = r.methodBase
	}
	return style.Render(m)
}

// Result renders one step result.
func (r *Renderer) Result(res tester.StepResult) string {
	var b strings.Builder

	statusStyle, statusIcon := r.successStyle, "✓"
	if !res.Passed {
		statusStyle, statusIcon = r.errorStyle, "✗"
	}

	b.WriteString(statusStyle.Render(statusIcon) + " " + r.method(res.Method) + " " + res.Endpoint + "\n")
	b.WriteString(r.subtleStyle.Render("   URL: ") + r.accentStyle.Render(res.URL) + "\n")
	b.WriteString(r.subtleStyle.Render(fmt.Sprintf("   Status: %d | Duration: %.1fms", res.Status, res.Time)) + "\n")

	if res.Error != "" {
		b.WriteString(r.errorStyle.Render(r.indent("Error: "+res.Error)) + "\n")
	}
	if res.Response != nil {
		b.WriteString(r.subtleStyle.Render(r.indent("Response: "+preview(res.Response))) + "\n")
	}

	return b.String()
}

// Endpoints renders a list of endpoints with their operation keys.
func (r *Renderer) Endpoints(endpoints []tester.EndpointDescriptor) string {
	if len(endpoints) == 0 {
		return r.subtleStyle.Render("No endpoints available") + "\n"
	}

	var b strings.Builder
	for _, ep := range endpoints {
		b.WriteString(r.method(ep.Method) + strings.Repeat(" ", max(1, 8-len(ep.Method))) + ep.Path)
		b.WriteString("  " + r.subtleStyle.Render(ep.OperationKey()))
		if params := ep.PathParameters(); len(params) > 0 {
			b.WriteString(r.subtleStyle.Render(" path: " + strings.Join(params, ", ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// History renders stored records, oldest first.
func (r *Renderer) History(records []storage.Record) string {
	if len(records) == 0 {
		return r.subtleStyle.Render("No results recorded") + "\n"
	}

	var b strings.Builder
	for _, rec := range records {
		res := rec.Result
		icon := r.successStyle.Render("✓")
		if !res.Passed {
			icon = r.errorStyle.Render("✗")
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s %s\n",
			r.subtleStyle.Render(rec.RecordedAt.Format("2006-01-02 15:04:05")),
			icon,
			r.method(res.Method),
			r.mutedStyle.Render(res.URL),
			r.subtleStyle.Render(fmt.Sprintf("%d %.1fms", res.Status, res.Time)),
		))
	}
	return b.String()
}

func (r *Renderer) indent(s string) string {
	wrapped := wordwrap.String(s, r.width-3)
	return "   " + strings.ReplaceAll(wrapped, "\n", "\n   ")
}

// preview returns a compact rendering of a payload, cut at maxPreview runes.
func preview(v any) string {
	text, ok := v.(string)
	if !ok {
		data, err := json.Marshal(v)
		if err != nil {
			text = fmt.Sprintf("%v", v)
		} else {
			text = string(data)
		}
	}
	if runes := []rune(text); len(runes) > maxPreview {
		text = string(runes[:maxPreview]) + "..."
	}
	return text
}
