// Package console renders validator output: styled one-line status messages,
// positioned diagnostics with source context, and summary tables. Styling is
// applied only when stdout is a terminal.
package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Position locates a diagnostic in a source file. Line and Column are
// 1-based; a zero Line means the position is unknown.
type Position struct {
	File   string
	Line   int
	Column int
}

// Diagnostic is a single validation finding prepared for display.
type Diagnostic struct {
	Position Position
	Severity string // "error", "warning", "info"
	Message  string
	Context  []string // source lines surrounding the finding
	Hint     string
}

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF5555")).
			Foreground(lipgloss.Color("#282A36"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#50FA7B"))

	verboseStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#6272A4"))
)

func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// ToRelativePath shortens an absolute path relative to the working directory
// when possible.
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return rel
}

// FormatDiagnostic renders a diagnostic with an IDE-parseable
// file:line:column prefix, optional source context with a caret at the
// offending column, and an optional hint.
func FormatDiagnostic(d Diagnostic) string {
	var out strings.Builder

	var severityStyle lipgloss.Style
	severity := d.Severity
	switch severity {
	case "warning":
		severityStyle = warningStyle
	case "info":
		severityStyle = infoStyle
	default:
		severity = "error"
		severityStyle = errorStyle
	}

	if d.Position.File != "" {
		location := ToRelativePath(d.Position.File)
		if d.Position.Line > 0 {
			location = fmt.Sprintf("%s:%d:%d", location, d.Position.Line, d.Position.Column)
		}
		out.WriteString(applyStyle(filePathStyle, location+":"))
		out.WriteString(" ")
	}

	out.WriteString(applyStyle(severityStyle, severity+":"))
	out.WriteString(" ")
	out.WriteString(d.Message)
	out.WriteString("\n")

	if len(d.Context) > 0 && d.Position.Line > 0 {
		out.WriteString(renderContext(d))
	}

	if d.Hint != "" {
		out.WriteString(applyStyle(hintStyle, "hint: "))
		out.WriteString(d.Hint)
		out.WriteString("\n")
	}

	return out.String()
}

// renderContext prints the context lines with line numbers, highlighting the
// diagnostic line and pointing a caret at the column.
func renderContext(d Diagnostic) string {
	var out strings.Builder

	firstLine := d.Position.Line - len(d.Context)/2
	if firstLine < 1 {
		firstLine = 1
	}
	width := len(fmt.Sprintf("%d", firstLine+len(d.Context)-1))

	for i, line := range d.Context {
		lineNum := firstLine + i
		out.WriteString(applyStyle(lineNumberStyle, fmt.Sprintf("%*d", width, lineNum)))
		out.WriteString(" | ")

		if lineNum == d.Position.Line && d.Position.Column > 0 && d.Position.Column <= len(line) {
			col := d.Position.Column - 1
			out.WriteString(applyStyle(contextStyle, line[:col]))
			out.WriteString(applyStyle(highlightStyle, string(line[col])))
			if col+1 < len(line) {
				out.WriteString(applyStyle(contextStyle, line[col+1:]))
			}
			out.WriteString("\n")
			out.WriteString(strings.Repeat(" ", width+3+col))
			out.WriteString(applyStyle(errorStyle, "^"))
		} else if lineNum == d.Position.Line {
			out.WriteString(applyStyle(highlightStyle, line))
		} else {
			out.WriteString(applyStyle(contextStyle, line))
		}
		out.WriteString("\n")
	}

	return out.String()
}

// FormatSuccessMessage renders a passing-result line.
func FormatSuccessMessage(message string) string {
	return applyStyle(successStyle, "✓ ") + message
}

// FormatErrorMessage renders a failing-result line for stderr.
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

// FormatWarningMessage renders a warning line.
func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatInfoMessage renders an informational line.
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// FormatVerboseMessage renders detail output shown only in verbose mode.
func FormatVerboseMessage(message string) string {
	return applyStyle(verboseStyle, message)
}

// Summary is the per-file tally rendered after validating multiple inputs.
type Summary struct {
	Headers []string
	Rows    [][]string
	Footer  []string
}

// RenderSummary renders an aligned plain table with a header separator and
// an optional footer row for totals.
func RenderSummary(s Summary) string {
	if len(s.Headers) == 0 {
		return ""
	}

	widths := make([]int, len(s.Headers))
	for i, h := range s.Headers {
		widths[i] = len(h)
	}
	rows := s.Rows
	if len(s.Footer) > 0 {
		rows = append(append([][]string{}, rows...), s.Footer)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	separator := make([]string, len(s.Headers))
	for i, w := range widths {
		separator[i] = strings.Repeat("-", w)
	}

	var out strings.Builder
	out.WriteString(renderRow(s.Headers, widths, filePathStyle))
	out.WriteString("\n")
	out.WriteString(renderRow(separator, widths, lineNumberStyle))
	out.WriteString("\n")
	for _, row := range s.Rows {
		out.WriteString(renderRow(row, widths, contextStyle))
		out.WriteString("\n")
	}
	if len(s.Footer) > 0 {
		out.WriteString(renderRow(separator, widths, lineNumberStyle))
		out.WriteString("\n")
		out.WriteString(renderRow(s.Footer, widths, successStyle))
		out.WriteString("\n")
	}
	return out.String()
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	var row strings.Builder
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		row.WriteString(applyStyle(style, fmt.Sprintf("%-*s", widths[i], cell)))
		if i < len(cells)-1 {
			row.WriteString(applyStyle(lineNumberStyle, " | "))
		}
	}
	return row.String()
}
