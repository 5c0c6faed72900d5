package console

import (
	"strings"
	"testing"
)

func TestFormatDiagnostic(t *testing.T) {
	d := Diagnostic{
		Position: Position{File: "bundle.json", Line: 3, Column: 5},
		Severity: "error",
		Message:  "'id' is a required property",
	}
	got := FormatDiagnostic(d)
	if !strings.Contains(got, "bundle.json:3:5:") {
		t.Errorf("missing file:line:column prefix: %q", got)
	}
	if !strings.Contains(got, "error:") {
		t.Errorf("missing severity: %q", got)
	}
	if !strings.Contains(got, "'id' is a required property") {
		t.Errorf("missing message: %q", got)
	}
}

func TestFormatDiagnosticWithoutPosition(t *testing.T) {
	d := Diagnostic{
		Position: Position{File: "bundle.json"},
		Severity: "warning",
		Message:  "something minor",
	}
	got := FormatDiagnostic(d)
	if !strings.Contains(got, "bundle.json:") {
		t.Errorf("missing file prefix: %q", got)
	}
	if strings.Contains(got, ":0:0") {
		t.Errorf("zero position rendered: %q", got)
	}
	if !strings.Contains(got, "warning:") {
		t.Errorf("missing severity: %q", got)
	}
}

func TestFormatDiagnosticUnknownSeverity(t *testing.T) {
	got := FormatDiagnostic(Diagnostic{Severity: "bogus", Message: "m"})
	if !strings.Contains(got, "error:") {
		t.Errorf("unknown severity did not fall back to error: %q", got)
	}
}

func TestFormatDiagnosticContext(t *testing.T) {
	d := Diagnostic{
		Position: Position{File: "bundle.json", Line: 2, Column: 3},
		Severity: "error",
		Message:  "bad value",
		Context:  []string{"{", `  "type": "x",`, "}"},
	}
	got := FormatDiagnostic(d)
	if !strings.Contains(got, `"type": "x",`) {
		t.Errorf("context lines missing: %q", got)
	}
	if !strings.Contains(got, "^") {
		t.Errorf("caret missing: %q", got)
	}
}

func TestFormatDiagnosticHint(t *testing.T) {
	got := FormatDiagnostic(Diagnostic{
		Severity: "error",
		Message:  "bad value",
		Hint:     "use lowercase",
	})
	if !strings.Contains(got, "hint: use lowercase") {
		t.Errorf("hint missing: %q", got)
	}
}

func TestStatusMessages(t *testing.T) {
	if got := FormatSuccessMessage("all good"); !strings.Contains(got, "all good") {
		t.Errorf("FormatSuccessMessage = %q", got)
	}
	if got := FormatErrorMessage("broken"); !strings.Contains(got, "broken") {
		t.Errorf("FormatErrorMessage = %q", got)
	}
	if got := FormatWarningMessage("careful"); !strings.Contains(got, "careful") {
		t.Errorf("FormatWarningMessage = %q", got)
	}
	if got := FormatInfoMessage("fyi"); !strings.Contains(got, "fyi") {
		t.Errorf("FormatInfoMessage = %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	s := Summary{
		Headers: []string{"File", "Status"},
		Rows: [][]string{
			{"a.json", "valid"},
			{"a-much-longer-name.json", "invalid"},
		},
		Footer: []string{"1/2 valid", ""},
	}
	got := RenderSummary(s)

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], "File") || !strings.Contains(lines[0], "Status") {
		t.Errorf("header row = %q", lines[0])
	}
	if !strings.Contains(lines[1], "---") {
		t.Errorf("separator row = %q", lines[1])
	}
	if !strings.Contains(lines[5], "1/2 valid") {
		t.Errorf("footer row = %q", lines[5])
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	if got := RenderSummary(Summary{}); got != "" {
		t.Errorf("empty summary rendered %q", got)
	}
}

func TestToRelativePath(t *testing.T) {
	if got := ToRelativePath("already/relative.json"); got != "already/relative.json" {
		t.Errorf("relative path changed: %q", got)
	}
}
