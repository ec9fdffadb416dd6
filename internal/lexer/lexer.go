// Package lexer scans HelixQL source text into a token stream. Scanning is
// newline- and whitespace-insensitive except inside string and number
// literals, per spec §6.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/token"
)

// Lexer scans one file's source text.
type Lexer struct {
	file   string
	src    string
	offset int
	line   int
	col    int
}

// New returns a Lexer positioned at the start of src.
func New(file, src string) *Lexer {
	return &Lexer{file: file, src: src, line: 1, col: 1}
}

// Tokenize scans the entire input and returns every token (including a
// trailing EOF) plus any lexical errors encountered. Scanning never stops
// early: an unrecognized byte is skipped and recorded as a diagnostic so the
// parser can still make progress on the rest of the file.
func Tokenize(file, src string) ([]token.Token, []diag.Diagnostic) {
	l := New(file, src)
	var toks []token.Token
	var errs []diag.Diagnostic
	for {
		tok, err := l.Next()
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, errs
}

func (l *Lexer) pos() diag.Pos {
	return diag.Pos{Offset: l.offset, Line: l.line, Col: l.col}
}

func (l *Lexer) locFrom(start diag.Pos) diag.Loc {
	return diag.Loc{File: l.file, Start: start, End: l.pos()}
}

func (l *Lexer) peekByte() byte {
	if l.offset >= len(l.src) {
		return 0
	}
	return l.src[l.offset]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.offset+off >= len(l.src) {
		return 0
	}
	return l.src[l.offset+off]
}

func (l *Lexer) advance() byte {
	b := l.src[l.offset]
	l.offset++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *Lexer) skipSpaceAndComments() {
	for l.offset < len(l.src) {
		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '/' && l.peekByteAt(1) == '/':
			for l.offset < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// Next scans and returns the next token, or a lexical-error diagnostic if
// the current byte cannot start any valid token (the offending byte is
// still consumed so the caller can keep scanning).
func (l *Lexer) Next() (token.Token, *diag.Diagnostic) {
	l.skipSpaceAndComments()
	start := l.pos()
	if l.offset >= len(l.src) {
		return token.Token{Kind: token.EOF, Loc: l.locFrom(start)}, nil
	}

	b := l.peekByte()
	switch {
	case b == '"':
		return l.scanString(start)
	case isDigit(b) || (b == '-' && isDigit(l.peekByteAt(1))):
		return l.scanNumber(start)
	case isIdentStart(b):
		return l.scanIdentOrKeyword(start)
	}

	two := func(second byte, kind token.Kind, one token.Kind) token.Token {
		l.advance()
		if l.peekByte() == second {
			l.advance()
			return token.Token{Kind: kind, Lit: l.src[start.Offset:l.offset], Loc: l.locFrom(start)}
		}
		return token.Token{Kind: one, Lit: l.src[start.Offset:l.offset], Loc: l.locFrom(start)}
	}

	switch b {
	case '{':
		l.advance()
		return token.Token{Kind: token.LBrace, Loc: l.locFrom(start)}, nil
	case '}':
		l.advance()
		return token.Token{Kind: token.RBrace, Loc: l.locFrom(start)}, nil
	case '[':
		l.advance()
		return token.Token{Kind: token.LBracket, Loc: l.locFrom(start)}, nil
	case ']':
		l.advance()
		return token.Token{Kind: token.RBracket, Loc: l.locFrom(start)}, nil
	case '(':
		l.advance()
		return token.Token{Kind: token.LParen, Loc: l.locFrom(start)}, nil
	case ')':
		l.advance()
		return token.Token{Kind: token.RParen, Loc: l.locFrom(start)}, nil
	case ',':
		l.advance()
		return token.Token{Kind: token.Comma, Loc: l.locFrom(start)}, nil
	case '@':
		l.advance()
		return token.Token{Kind: token.At, Loc: l.locFrom(start)}, nil
	case '#':
		l.advance()
		return token.Token{Kind: token.Hash, Loc: l.locFrom(start)}, nil
	case '|':
		l.advance()
		return token.Token{Kind: token.Pipe, Loc: l.locFrom(start)}, nil
	case ':':
		l.advance()
		if l.peekByte() == ':' {
			l.advance()
			return token.Token{Kind: token.DblColon, Loc: l.locFrom(start)}, nil
		}
		return token.Token{Kind: token.Colon, Loc: l.locFrom(start)}, nil
	case '.':
		l.advance()
		if l.peekByte() == '.' {
			l.advance()
			if l.peekByte() == '.' {
				l.advance()
				return token.Token{Kind: token.DotDotDot, Loc: l.locFrom(start)}, nil
			}
			return token.Token{Kind: token.DotDot, Loc: l.locFrom(start)}, nil
		}
		return token.Token{Kind: token.Dot, Loc: l.locFrom(start)}, nil
	case '=':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.EqEq, Loc: l.locFrom(start)}, nil
		}
		if l.peekByte() == '>' {
			l.advance()
			return token.Token{Kind: token.Arrow, Loc: l.locFrom(start)}, nil
		}
		return token.Token{Kind: token.Eq, Loc: l.locFrom(start)}, nil
	case '!':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.NotEq, Loc: l.locFrom(start)}, nil
		}
		return token.Token{Kind: token.Bang, Loc: l.locFrom(start)}, nil
	case '<':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.Le, Loc: l.locFrom(start)}, nil
		}
		if l.peekByte() == '-' {
			l.advance()
			return token.Token{Kind: token.LeftArrow, Loc: l.locFrom(start)}, nil
		}
		return token.Token{Kind: token.Lt, Loc: l.locFrom(start)}, nil
	case '>':
		return two('=', token.Ge, token.Gt), nil
	}

	l.advance()
	d := diag.New("E001", l.locFrom(start), fmt.Sprintf("unexpected character %q", b))
	return token.Token{}, &d
}

func (l *Lexer) scanString(start diag.Pos) (token.Token, *diag.Diagnostic) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.offset >= len(l.src) {
			d := diag.New("E002", l.locFrom(start), "unterminated string literal")
			return token.Token{}, &d
		}
		b := l.peekByte()
		if b == '"' {
			l.advance()
			break
		}
		if b == '\\' {
			l.advance()
			esc := l.peekByte()
			l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte(esc)
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(l.src[l.offset:])
		sb.WriteRune(r)
		for range size {
			l.advance()
		}
	}
	return token.Token{Kind: token.String, Lit: sb.String(), Loc: l.locFrom(start)}, nil
}

func (l *Lexer) scanNumber(start diag.Pos) (token.Token, *diag.Diagnostic) {
	if l.peekByte() == '-' {
		l.advance()
	}
	for isDigit(l.peekByte()) {
		l.advance()
	}
	kind := token.Int
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		kind = token.Float
		l.advance()
		for isDigit(l.peekByte()) {
			l.advance()
		}
	}
	return token.Token{Kind: kind, Lit: l.src[start.Offset:l.offset], Loc: l.locFrom(start)}, nil
}

func (l *Lexer) scanIdentOrKeyword(start diag.Pos) (token.Token, *diag.Diagnostic) {
	// A version marker such as `V1` scans as the identifier "V" followed by
	// an integer token, the form the version-block and migration rules read.
	if l.peekByte() == 'V' && isDigit(l.peekByteAt(1)) {
		l.advance()
		return token.Token{Kind: token.Ident, Lit: "V", Loc: l.locFrom(start)}, nil
	}
	for isIdentPart(l.peekByte()) {
		l.advance()
	}
	lit := l.src[start.Offset:l.offset]
	if kind, ok := token.Lookup(lit); ok {
		return token.Token{Kind: kind, Lit: lit, Loc: l.locFrom(start)}, nil
	}
	return token.Token{Kind: token.Ident, Lit: lit, Loc: l.locFrom(start)}, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || unicode.IsLetter(rune(b))
}

func isIdentPart(b byte) bool {
	return b == '_' || isDigit(b) || unicode.IsLetter(rune(b))
}
