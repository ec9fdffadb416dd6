package diag

import (
	"sort"

	"github.com/google/uuid"
)

// Diagnostic is one reported problem: a stable code, a human message, the
// primary span it anchors to, and an optional hint suggesting a fix.
type Diagnostic struct {
	Code     Code
	Message  string
	Primary  Loc
	Hint     *string
	Severity Severity
	// RelatedDefID cross-references the parse-time DefID (SPEC_FULL.md
	// §3.5a) of another schema item this diagnostic concerns, e.g. the
	// earlier declaration a duplicate-definition error collides with.
	RelatedDefID *uuid.UUID
}

// WithHint returns a copy of d carrying the given hint text.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = &hint
	return d
}

// WithRelatedDefID returns a copy of d cross-referencing the given DefID.
func (d Diagnostic) WithRelatedDefID(id uuid.UUID) Diagnostic {
	d.RelatedDefID = &id
	return d
}

// New builds a Diagnostic at the default severity for its code.
func New(code Code, loc Loc, message string) Diagnostic {
	return Diagnostic{Code: code, Message: message, Primary: loc, Severity: severityOf(code)}
}

// Bag accumulates diagnostics across every stage of one compilation. Every
// stage is fail-soft: it pushes into the same Bag and continues so later
// stages can surface additional, independent problems in the same run.
type Bag struct {
	items []Diagnostic
}

// Push records a diagnostic.
func (b *Bag) Push(d Diagnostic) {
	b.items = append(b.items, d)
}

// Error records an error-severity diagnostic.
func (b *Bag) Error(code Code, loc Loc, message string) {
	b.Push(New(code, loc, message))
}

// Warn records a warning-severity diagnostic.
func (b *Bag) Warn(code Code, loc Loc, message string) {
	d := New(code, loc, message)
	d.Severity = SeverityWarning
	b.Push(d)
}

// All returns every diagnostic recorded so far, in insertion order.
func (b *Bag) All() []Diagnostic {
	return b.items
}

// HasErrors reports whether any recorded diagnostic is error severity.
// Code generation is gated on this returning false (spec §7).
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sorted returns the diagnostics ordered by file, then by start offset,
// for stable rendering regardless of the order stages ran in.
func (b *Bag) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Primary.File != out[j].Primary.File {
			return out[i].Primary.File < out[j].Primary.File
		}
		return out[i].Primary.Start.Offset < out[j].Primary.Start.Offset
	})
	return out
}

// Merge appends another bag's diagnostics into b.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}
