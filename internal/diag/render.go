package diag

import (
	"fmt"
	"strings"
)

// Render formats a diagnostic the way an integrator surfaces it to a
// developer (spec §6): the primary span underlined, the error code, the
// message, and the optional hint. source is the full text of the file the
// diagnostic belongs to, used to print the offending line; pass "" to fall
// back to a rendering without the source line.
func Render(d Diagnostic, source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s: %s\n", d.Severity, d.Code, d.Message)
	fmt.Fprintf(&sb, "  --> %s\n", d.Primary)

	line := lineAt(source, d.Primary.Start.Line)
	if line != "" {
		fmt.Fprintf(&sb, "   | %s\n", line)
		width := d.Primary.End.Col - d.Primary.Start.Col
		if width < 1 {
			width = 1
		}
		fmt.Fprintf(&sb, "   | %s%s\n", strings.Repeat(" ", max(d.Primary.Start.Col-1, 0)), strings.Repeat("^", width))
	}
	if d.Hint != nil {
		fmt.Fprintf(&sb, "   = hint: %s\n", *d.Hint)
	}
	if d.RelatedDefID != nil {
		fmt.Fprintf(&sb, "   = related: %s\n", d.RelatedDefID)
	}
	return sb.String()
}

// JSON-friendly projection of a Diagnostic, used by cmd/helixc -format=json.
type Entry struct {
	Code       Code   `json:"code"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Location   string `json:"location"`
	Hint       string `json:"hint,omitempty"`
	RelatedDef string `json:"related_def,omitempty"`
}

// ToEntry converts a Diagnostic to its stable JSON projection.
func ToEntry(d Diagnostic) Entry {
	e := Entry{Code: d.Code, Severity: d.Severity.String(), Message: d.Message, Location: d.Primary.String()}
	if d.Hint != nil {
		e.Hint = *d.Hint
	}
	if d.RelatedDefID != nil {
		e.RelatedDef = d.RelatedDefID.String()
	}
	return e
}

// RenderAll renders every diagnostic in the bag, looking up each one's
// source text by file name from the provided map.
func RenderAll(diags []Diagnostic, sources map[string]string) string {
	var sb strings.Builder
	for i, d := range diags {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(Render(d, sources[d.Primary.File]))
	}
	return sb.String()
}

func lineAt(source string, line int) string {
	if line <= 0 {
		return ""
	}
	n := 1
	start := 0
	for i, r := range source {
		if n == line {
			start = i
			break
		}
		if r == '\n' {
			n++
		}
	}
	if n != line {
		return ""
	}
	end := strings.IndexByte(source[start:], '\n')
	if end < 0 {
		return source[start:]
	}
	return source[start : start+end]
}
