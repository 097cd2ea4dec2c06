// Package display provides terminal formatting for jiradates output.
package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pmtools/jiradates/internal/types"
)

var (
	// Styles
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	Warn     = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
)

// SuccessMsg prints a green checkmark + message.
func SuccessMsg(format string, args ...any) {
	fmt.Println(Success.Render("✓") + " " + fmt.Sprintf(format, args...))
}

// WarningMsg prints a yellow bang + message.
func WarningMsg(format string, args ...any) {
	fmt.Println(Warn.Render("!") + " " + fmt.Sprintf(format, args...))
}

// ErrorMsg prints a red X + message to stderr.
func ErrorMsg(format string, args ...any) {
	fmt.Fprintln(os.Stderr, ErrStyle.Render("✗")+" "+fmt.Sprintf(format, args...))
}

// Header prints a bold title with an underline rule.
func Header(title string) {
	fmt.Println()
	fmt.Println(Bold.Render(title))
	fmt.Println(Muted.Render(strings.Repeat("-", len(title))))
}

// Section prints a section label.
func Section(title string) {
	fmt.Println()
	fmt.Println(Bold.Render(title))
}

// Info prints an indented detail line.
func Info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// Detail prints a bulleted detail line.
func Detail(format string, args ...any) {
	fmt.Printf("  %s %s\n", Muted.Render("•"), fmt.Sprintf(format, args...))
}

// Truncate shortens a string to maxLen, adding ellipsis if needed.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// Table renders a simple text table with an optional title.
func Table(title string, headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return "No data to display"
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sep strings.Builder
	sep.WriteString("+")
	for _, w := range widths {
		sep.WriteString(strings.Repeat("-", w+2))
		sep.WriteString("+")
	}

	var b strings.Builder
	if title != "" {
		b.WriteString("\n" + title + "\n")
		b.WriteString(strings.Repeat("=", len(title)) + "\n")
	}
	b.WriteString(sep.String() + "\n")

	writeRow := func(cells []string) {
		b.WriteString("|")
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" " + cell + strings.Repeat(" ", w-len(cell)) + " |")
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	b.WriteString(sep.String() + "\n")
	for _, row := range rows {
		writeRow(row)
	}
	b.WriteString(sep.String())
	return b.String()
}

// Progress prints an in-place progress bar for bulk runs.
func Progress(current, total int, item string) {
	if total <= 0 {
		return
	}
	const barLen = 20
	filled := barLen * current / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barLen-filled)
	pct := float64(current) / float64(total) * 100
	fmt.Printf("\r  [%s] %5.1f%% (%d/%d) %s", bar, pct, current, total, item)
	if current == total {
		fmt.Println()
	}
}

// ConsoleSink renders progress records to the terminal.
type ConsoleSink struct{}

// Emit implements types.Sink.
func (ConsoleSink) Emit(r types.Record) {
	switch r.Kind {
	case types.KindHeader:
		Header(r.Text)
	case types.KindSection:
		Section(r.Text)
	case types.KindInfo:
		Info("%s", r.Text)
	case types.KindDetail:
		Detail("%s", r.Text)
	case types.KindSuccess:
		SuccessMsg("%s", r.Text)
	case types.KindWarning:
		WarningMsg("%s", r.Text)
	case types.KindError:
		ErrorMsg("%s", r.Text)
	default:
		fmt.Println(r.Text)
	}
}
