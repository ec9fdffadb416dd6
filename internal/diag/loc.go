// Package diag holds the source-location and diagnostic model shared by
// every compiler stage: the lexer, parser, schema builder, analyzer, and
// return-shape builder all record diagnostics into a single [Bag] rather
// than returning early, so a source file with several independent mistakes
// is reported in one pass.
package diag

import "fmt"

// Pos is a byte offset plus the line/column it corresponds to, 1-indexed.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

// Loc is the location of an AST node: the file it came from and the half
// open byte range [Start, End) within that file's source text.
type Loc struct {
	File  string
	Start Pos
	End   Pos
}

// Empty reports whether the location carries no real span, used for
// synthetic nodes the compiler fabricates (e.g. implicit fields).
func (l Loc) Empty() bool {
	return l.File == "" && l.Start.Offset == 0 && l.End.Offset == 0
}

// String renders "file:line:col" for use in compact diagnostics and logs.
func (l Loc) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Start.Line, l.Start.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Start.Line, l.Start.Col)
}

// Span returns the number of bytes the location covers.
func (l Loc) Span() int {
	if l.End.Offset < l.Start.Offset {
		return 0
	}
	return l.End.Offset - l.Start.Offset
}
