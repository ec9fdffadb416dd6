// Package parser builds an internal/ast.Source from HelixQL token streams.
// The grammar is hand-rolled recursive descent (no parser generator is used
// by the teacher or the rest of the retrieved pack for a custom DSL grammar
// like this one); on a malformed statement the parser resynchronizes at the
// next schema/query boundary so one mistake does not abort the whole file
// (spec §4.1).
package parser

import (
	"fmt"

	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/lexer"
	"github.com/oneiron-dev/helixql/internal/token"
)

// File is one named, unparsed source file.
type File struct {
	Name string
	Text string
}

// parser holds the mutable state for parsing one file.
type parser struct {
	file  string
	toks  []token.Token
	pos   int
	diags *diag.Bag
	src   *ast.Source
}

// ParseAll tokenizes and parses every file, merging their declarations into
// one Source the way the teacher's loader merges a compiled package's
// schema declarations across files. Diagnostics from every file accumulate
// into a single bag; parsing never aborts early.
func ParseAll(files []File) (*ast.Source, *diag.Bag) {
	bag := &diag.Bag{}
	src := &ast.Source{SchemasByVersion: map[int]*ast.Schema{}}
	for _, f := range files {
		toks, lexErrs := lexer.Tokenize(f.Name, f.Text)
		for _, e := range lexErrs {
			bag.Push(e)
		}
		p := &parser{file: f.Name, toks: toks, diags: bag, src: src}
		p.parseFile()
	}
	return src, bag
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *parser) atIdent(lit string) bool {
	return p.cur().Kind == token.Ident && p.cur().Lit == lit
}

func (p *parser) expect(k token.Kind) (token.Token, bool) {
	if p.cur().Kind == k {
		return p.advance(), true
	}
	p.errorf(p.cur().Loc, "expected %s, found %s", k, p.cur().Kind)
	return token.Token{}, false
}

func (p *parser) errorf(loc diag.Loc, format string, args ...any) {
	p.diags.Error("E901", loc, fmt.Sprintf(format, args...))
}

// recoverToBoundary skips tokens until one that can start a new top-level
// declaration, so a parse error in one query/schema item does not prevent
// the rest of the file from being parsed.
func (p *parser) recoverToBoundary() {
	for {
		switch p.cur().Kind {
		case token.EOF, token.KwN, token.KwE, token.KwV, token.KwQuery, token.Hash:
			return
		}
		p.advance()
	}
}

func (p *parser) parseFile() {
	for p.cur().Kind != token.EOF {
		switch {
		case p.at(token.KwN):
			p.parseTopLevelNode()
		case p.at(token.Ident) && p.cur().Lit == "V" && p.peekAt(1).Kind == token.Int:
			p.parseVersionBlockOrMigration()
		case p.at(token.KwE):
			p.parseTopLevelEdge()
		case p.at(token.KwV):
			p.parseTopLevelVector()
		case p.at(token.Hash) || p.at(token.KwQuery):
			if q := p.parseQuery(); q != nil {
				p.src.Queries = append(p.src.Queries, q)
			}
		default:
			p.errorf(p.cur().Loc, "unexpected token %s at top level", p.cur().Kind)
			p.advance()
		}
	}
}

// schemaFor returns the schema for version, creating it (version 0, the
// implicit unversioned schema, unless a `V<n> { ... }` block set it
// explicitly) on first use.
func (p *parser) schemaFor(version int, loc diag.Loc) *ast.Schema {
	if s, ok := p.src.SchemasByVersion[version]; ok {
		return s
	}
	s := &ast.Schema{Version: version, Loc: loc}
	p.src.SchemasByVersion[version] = s
	return s
}
