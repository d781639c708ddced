package driver

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Console markers printed in front of section headings and outcomes.
const (
	MarkerBanner  = "🔐"
	MarkerStarted = "🚀"
	MarkerTools   = "📋"
	MarkerLabels  = "🏷️ "
	MarkerSearch  = "🔍"
	MarkerSend    = "📧"
	MarkerDone    = "✅"
	MarkerGoodbye = "👋"
	MarkerError   = "❌"
)

const ruleWidth = 60

// Theme defines the colour palette of the console report.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Console prints the human-readable report of a driver run.
// Only single-line headings are styled; tool output is written verbatim.
type Console struct {
	w io.Writer

	title   lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

// NewConsole creates a Console writing to w. Colours are only emitted when w is a terminal.
func NewConsole(w io.Writer, theme *Theme) *Console {
	if theme == nil {
		theme = DefaultTheme()
	}
	r := lipgloss.NewRenderer(w)

	return &Console{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(theme.Primary),
		section: r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(theme.Muted),
		success: r.NewStyle().Foreground(theme.Success),
		failure: r.NewStyle().Bold(true).Foreground(theme.Error),
	}
}

// Banner prints a title followed by a horizontal rule.
func (c *Console) Banner(marker, title string) {
	c.println(c.title.Render(marker + " " + title))
	c.Rule()
}

// Rule prints a line of '=' characters.
func (c *Console) Rule() {
	c.println(c.muted.Render(strings.Repeat("=", ruleWidth)))
}

// Section prints a step heading preceded by a blank line.
func (c *Console) Section(marker, title string) {
	c.println("\n" + c.section.Render(marker+" "+title))
}

// Success prints a line in the success colour.
func (c *Console) Success(msg string) {
	c.println(c.success.Render(msg))
}

// Failure prints a line in the error colour.
func (c *Console) Failure(msg string) {
	c.println(c.failure.Render(msg))
}

// Text prints s unstyled. Multi-line tool output goes through here.
func (c *Console) Text(s string) {
	c.println(s)
}

// Textf formats and prints an unstyled line.
func (c *Console) Textf(format string, args ...any) {
	c.println(fmt.Sprintf(format, args...))
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.w, s)
}
