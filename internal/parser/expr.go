package parser

import (
	"strconv"

	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/token"
)

var mathFunctionNames = map[string]ast.MathFunction{
	"ADD": ast.MathAdd, "SUB": ast.MathSub, "MUL": ast.MathMul, "DIV": ast.MathDiv,
	"POW": ast.MathPow, "MOD": ast.MathMod, "ABS": ast.MathAbs, "SQRT": ast.MathSqrt,
	"LN": ast.MathLn, "LOG10": ast.MathLog10, "LOG": ast.MathLog, "EXP": ast.MathExp,
	"CEIL": ast.MathCeil, "FLOOR": ast.MathFloor, "ROUND": ast.MathRound,
	"SIN": ast.MathSin, "COS": ast.MathCos, "TAN": ast.MathTan, "ASIN": ast.MathAsin,
	"ACOS": ast.MathAcos, "ATAN": ast.MathAtan, "ATAN2": ast.MathAtan2,
	"PI": ast.MathPi, "E_CONST": ast.MathE, "MIN": ast.MathMin, "MAX": ast.MathMax,
	"SUM": ast.MathSum, "AVG": ast.MathAvg, "COUNT_OF": ast.MathCount,
}

// parseExpression parses one expression: a boolean connective, EXISTS guard,
// math/aggregate call, literal, or a start-node traversal (spec §3.6-§3.7).
func (p *parser) parseExpression() *ast.Expression {
	start := p.cur().Loc
	switch {
	case p.at(token.KwNot):
		p.advance()
		inner := p.parseExpression()
		return &ast.Expression{Kind: ast.ExprNot, Unary: inner, Loc: p.spanFrom(start)}
	case p.at(token.KwAnd):
		p.advance()
		many := p.parseExpressionArgList()
		return &ast.Expression{Kind: ast.ExprAnd, Many: many, Loc: p.spanFrom(start)}
	case p.at(token.KwOr):
		p.advance()
		many := p.parseExpressionArgList()
		return &ast.Expression{Kind: ast.ExprOr, Many: many, Loc: p.spanFrom(start)}
	case p.atIdent("EXISTS"):
		p.advance()
		p.expect(token.LParen)
		inner := p.parseExpression()
		p.expect(token.RParen)
		return &ast.Expression{Kind: ast.ExprExists, Exists: inner, Loc: p.spanFrom(start)}
	case p.at(token.Ident):
		if fn, ok := mathFunctionNames[p.cur().Lit]; ok && p.peekAt(1).Kind == token.LParen {
			p.advance()
			p.expect(token.LParen)
			var args []*ast.Expression
			for !p.at(token.RParen) && !p.at(token.EOF) {
				args = append(args, p.parseExpression())
				if p.at(token.Comma) {
					p.advance()
				}
			}
			p.expect(token.RParen)
			call := &ast.MathFunctionCall{Function: fn, Args: args, Loc: p.spanFrom(start)}
			return &ast.Expression{Kind: ast.ExprMathCall, MathCall: call, Loc: p.spanFrom(start)}
		}
		if p.cur().Lit == "AddN" {
			return p.parseAddNodeExpr(start)
		}
		if p.cur().Lit == "AddE" {
			return p.parseAddEdgeExpr(start)
		}
		if p.cur().Lit == "AddV" {
			return p.parseAddVectorExpr(start)
		}
		if p.cur().Lit == "SearchV" {
			sv := p.parseSearchVectorArgs(start)
			return &ast.Expression{Kind: ast.ExprSearchVector, Search: sv, Loc: p.spanFrom(start)}
		}
		if p.cur().Lit == "SearchBM25" {
			b := p.parseBM25SearchArgs(start)
			return &ast.Expression{Kind: ast.ExprBM25Search, BM25: b, Loc: p.spanFrom(start)}
		}
	case p.at(token.String):
		t := p.advance()
		return &ast.Expression{Kind: ast.ExprStringLiteral, Str: t.Lit, Loc: p.spanFrom(start)}
	case p.at(token.Int):
		t := p.advance()
		n, _ := strconv.ParseInt(t.Lit, 10, 64)
		return &ast.Expression{Kind: ast.ExprIntLiteral, Int: n, Loc: p.spanFrom(start)}
	case p.at(token.Float):
		t := p.advance()
		n, _ := strconv.ParseFloat(t.Lit, 64)
		return &ast.Expression{Kind: ast.ExprFloatLiteral, Float: n, Loc: p.spanFrom(start)}
	case p.at(token.KwTrue), p.at(token.KwFalse):
		t := p.advance()
		return &ast.Expression{Kind: ast.ExprBoolLiteral, Bool: t.Kind == token.KwTrue, Loc: p.spanFrom(start)}
	case p.at(token.LBracket):
		p.advance()
		var items []*ast.Expression
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			items = append(items, p.parseExpression())
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBracket)
		return &ast.Expression{Kind: ast.ExprArrayLiteral, Array: items, Loc: p.spanFrom(start)}
	}

	tr := p.parseTraversal()
	if tr == nil {
		p.errorf(p.cur().Loc, "expected an expression, found %s", p.cur().Kind)
		p.advance()
		return &ast.Expression{Kind: ast.ExprEmpty, Loc: p.spanFrom(start)}
	}
	if tr.Start.Kind == ast.StartIdentifier && len(tr.Steps) == 0 {
		return &ast.Expression{Kind: ast.ExprIdentifier, Identifier: tr.Start.Identifier, Loc: p.spanFrom(start)}
	}
	return &ast.Expression{Kind: ast.ExprTraversal, Traversal: tr, Loc: p.spanFrom(start)}
}

func (p *parser) parseExpressionArgList() []*ast.Expression {
	p.expect(token.LParen)
	var out []*ast.Expression
	for !p.at(token.RParen) && !p.at(token.EOF) {
		out = append(out, p.parseExpression())
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RParen)
	return out
}

func (p *parser) spanFrom(start diag.Loc) diag.Loc {
	return diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
}

// parseFieldValue parses the right-hand side of a `key: value` entry used in
// migration property remappings, Update/Upsert/Object field lists, and
// AddN/AddE/AddV field lists.
func (p *parser) parseFieldValue() *ast.FieldValue {
	start := p.cur().Loc
	switch {
	case p.at(token.LBrace):
		p.advance()
		var fields []*ast.FieldAddition
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			fields = append(fields, p.parseFieldAddition())
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBrace)
		return &ast.FieldValue{Kind: ast.FieldValueFields, Fields: fields, Loc: p.spanFrom(start)}
	case p.at(token.String), p.at(token.Int), p.at(token.Float), p.at(token.KwTrue), p.at(token.KwFalse):
		return &ast.FieldValue{Kind: ast.FieldValueLiteral, Literal: p.parseLiteralValue(), Loc: p.spanFrom(start)}
	case p.at(token.Ident) && p.peekAt(1).Kind != token.DblColon && p.peekAt(1).Kind != token.LParen && p.peekAt(1).Kind != token.Lt:
		t := p.advance()
		return &ast.FieldValue{Kind: ast.FieldValueIdentifier, Identifier: t.Lit, Loc: p.spanFrom(start)}
	default:
		expr := p.parseExpression()
		if expr.Kind == ast.ExprTraversal {
			return &ast.FieldValue{Kind: ast.FieldValueTraversal, Traversal: expr.Traversal, Loc: p.spanFrom(start)}
		}
		return &ast.FieldValue{Kind: ast.FieldValueExpression, Expression: expr, Loc: p.spanFrom(start)}
	}
}

// parseFieldAddition parses `key: value`, or the shorthand `key` (meaning
// "project the source item's field of the same name") used in object
// selections (spec §3.7).
func (p *parser) parseFieldAddition() *ast.FieldAddition {
	start := p.cur().Loc
	nameTok, _ := p.expect(token.Ident)
	if !p.at(token.Colon) {
		return &ast.FieldAddition{
			Key:   nameTok.Lit,
			Value: &ast.FieldValue{Kind: ast.FieldValueIdentifier, Identifier: nameTok.Lit, Loc: nameTok.Loc},
			Loc:   p.spanFrom(start),
		}
	}
	p.advance() // :
	fa := &ast.FieldAddition{Key: nameTok.Lit, Value: p.parseFieldValue()}
	fa.Loc = p.spanFrom(start)
	return fa
}

// parseLiteralValue parses a bare literal into an ast.Value.
func (p *parser) parseLiteralValue() ast.Value {
	switch {
	case p.at(token.String):
		t := p.advance()
		return ast.Value{Kind: ast.VString, Str: t.Lit}
	case p.at(token.Int):
		t := p.advance()
		n, _ := strconv.ParseInt(t.Lit, 10, 64)
		return ast.Value{Kind: ast.VI64, I64: n}
	case p.at(token.Float):
		t := p.advance()
		n, _ := strconv.ParseFloat(t.Lit, 64)
		return ast.Value{Kind: ast.VF64, F64: n}
	case p.at(token.KwTrue), p.at(token.KwFalse):
		t := p.advance()
		return ast.Value{Kind: ast.VBoolean, Bool: t.Kind == token.KwTrue}
	case p.at(token.LBracket):
		p.advance()
		var items []ast.Value
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			items = append(items, p.parseLiteralValue())
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBracket)
		return ast.Value{Kind: ast.VArray, Array: items}
	default:
		p.errorf(p.cur().Loc, "expected a literal value")
		p.advance()
		return ast.Value{Kind: ast.VEmpty}
	}
}

// parseValueType parses one field value inside AddN/AddE/AddV's `{fields}`
// literal: a literal, an identifier reference, or a nested object.
func (p *parser) parseValueType() *ast.ValueType {
	start := p.cur().Loc
	switch {
	case p.at(token.LBrace):
		p.advance()
		obj := map[string]*ast.ValueType{}
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			nameTok, _ := p.expect(token.Ident)
			p.expect(token.Colon)
			obj[nameTok.Lit] = p.parseValueType()
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBrace)
		return &ast.ValueType{Kind: ast.ValueObject, Object: obj, Loc: p.spanFrom(start)}
	case p.at(token.Ident):
		t := p.advance()
		return &ast.ValueType{Kind: ast.ValueIdentifier, Identifier: t.Lit, Loc: p.spanFrom(start)}
	default:
		return &ast.ValueType{Kind: ast.ValueLiteral, Literal: p.parseLiteralValue(), Loc: p.spanFrom(start)}
	}
}

func (p *parser) parseValueTypeFields() map[string]*ast.ValueType {
	p.expect(token.LBrace)
	fields := map[string]*ast.ValueType{}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		nameTok, _ := p.expect(token.Ident)
		p.expect(token.Colon)
		fields[nameTok.Lit] = p.parseValueType()
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RBrace)
	return fields
}

func (p *parser) parseAddNodeExpr(start diag.Loc) *ast.Expression {
	p.advance() // AddN
	p.expect(token.Lt)
	typeTok, _ := p.expect(token.Ident)
	p.expect(token.Gt)
	an := &ast.AddNode{NodeType: typeTok.Lit}
	p.expect(token.LParen)
	if p.at(token.LBrace) {
		an.Fields = p.parseValueTypeFields()
	}
	p.expect(token.RParen)
	an.Loc = p.spanFrom(start)
	return &ast.Expression{Kind: ast.ExprAddNode, AddNode: an, Loc: p.spanFrom(start)}
}

func (p *parser) parseAddEdgeExpr(start diag.Loc) *ast.Expression {
	ae := p.parseAddEdge(start)
	return &ast.Expression{Kind: ast.ExprAddEdge, AddEdge: ae, Loc: p.spanFrom(start)}
}

// parseAddEdge parses `AddE<Type>({fields})::From(x)::To(y)`, shared between
// the standalone-expression and chained-step positions.
func (p *parser) parseAddEdge(start diag.Loc) *ast.AddEdge {
	p.advance() // AddE
	p.expect(token.Lt)
	typeTok, _ := p.expect(token.Ident)
	p.expect(token.Gt)
	ae := &ast.AddEdge{EdgeType: typeTok.Lit}
	p.expect(token.LParen)
	if p.at(token.LBrace) {
		ae.Fields = p.parseValueTypeFields()
	}
	p.expect(token.RParen)
	connStart := p.cur().Loc
	for p.at(token.DblColon) {
		save := p.pos
		p.advance()
		if p.at(token.KwFrom) {
			p.advance()
			p.expect(token.LParen)
			ae.Connection.FromID = p.parseIdType()
			p.expect(token.RParen)
		} else if p.at(token.KwTo) {
			p.advance()
			p.expect(token.LParen)
			ae.Connection.ToID = p.parseIdType()
			p.expect(token.RParen)
		} else {
			p.pos = save
			break
		}
	}
	ae.Connection.Loc = p.spanFrom(connStart)
	ae.Loc = p.spanFrom(start)
	return ae
}

func (p *parser) parseAddVectorExpr(start diag.Loc) *ast.Expression {
	p.advance() // AddV
	p.expect(token.Lt)
	typeTok, _ := p.expect(token.Ident)
	p.expect(token.Gt)
	av := &ast.AddVector{VectorType: typeTok.Lit}
	p.expect(token.LParen)
	av.Data = p.parseVectorData()
	if p.at(token.Comma) {
		p.advance()
		if p.at(token.LBrace) {
			av.Fields = p.parseValueTypeFields()
		}
	}
	p.expect(token.RParen)
	av.Loc = p.spanFrom(start)
	return &ast.Expression{Kind: ast.ExprAddVector, AddVector: av, Loc: p.spanFrom(start)}
}

func (p *parser) parseVectorData() *ast.VectorData {
	start := p.cur().Loc
	switch {
	case p.atIdent("EMBED"):
		p.advance()
		p.expect(token.LParen)
		e := &ast.Embed{Loc: p.cur().Loc}
		if p.at(token.String) {
			e.Text = p.advance().Lit
		} else if p.at(token.Ident) {
			e.IsIdentifier = true
			e.Identifier = p.advance().Lit
		}
		p.expect(token.RParen)
		return &ast.VectorData{Kind: ast.VectorDataEmbed, Embed: e, Loc: p.spanFrom(start)}
	case p.at(token.LBracket):
		p.advance()
		var vec []float64
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			if p.at(token.Int) || p.at(token.Float) {
				n, _ := strconv.ParseFloat(p.advance().Lit, 64)
				vec = append(vec, n)
			}
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBracket)
		return &ast.VectorData{Kind: ast.VectorDataLiteral, Vector: vec, Loc: p.spanFrom(start)}
	default:
		t, _ := p.expect(token.Ident)
		return &ast.VectorData{Kind: ast.VectorDataIdentifier, Identifier: t.Lit, Loc: p.spanFrom(start)}
	}
}

func (p *parser) parseSearchVectorArgs(start diag.Loc) *ast.SearchVector {
	p.advance() // SearchV
	p.expect(token.Lt)
	typeTok, _ := p.expect(token.Ident)
	p.expect(token.Gt)
	sv := &ast.SearchVector{VectorType: typeTok.Lit}
	p.expect(token.LParen)
	sv.Data = p.parseVectorData()
	if p.at(token.Comma) {
		p.advance()
		sv.K = p.parseExpression()
	}
	if p.at(token.Comma) {
		p.advance()
		sv.PreFilter = p.parseExpression()
	}
	p.expect(token.RParen)
	sv.Loc = p.spanFrom(start)
	return sv
}

func (p *parser) parseBM25SearchArgs(start diag.Loc) *ast.BM25Search {
	p.advance() // SearchBM25
	typeArg := ""
	if p.at(token.Lt) {
		p.advance()
		t, _ := p.expect(token.Ident)
		typeArg = t.Lit
		p.expect(token.Gt)
	}
	b := &ast.BM25Search{TypeArg: typeArg}
	p.expect(token.LParen)
	b.Data = p.parseValueType()
	if p.at(token.Comma) {
		p.advance()
		b.K = p.parseExpression()
	}
	p.expect(token.RParen)
	b.Loc = p.spanFrom(start)
	return b
}

func (p *parser) parseIdType() *ast.IdType {
	start := p.cur().Loc
	if p.atIdent("BY") {
		p.advance()
		p.expect(token.LParen)
		idx := p.parseIdType()
		p.expect(token.Comma)
		by := p.parseValueType()
		p.expect(token.RParen)
		return &ast.IdType{Kind: ast.IdByIndex, Index: idx, By: by, Loc: p.spanFrom(start)}
	}
	if p.at(token.String) {
		t := p.advance()
		return &ast.IdType{Kind: ast.IdLiteral, Value: t.Lit, Loc: p.spanFrom(start)}
	}
	t, _ := p.expect(token.Ident)
	return &ast.IdType{Kind: ast.IdIdentifier, Value: t.Lit, Loc: p.spanFrom(start)}
}
