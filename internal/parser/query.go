package parser

import (
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/token"
)

// parseQuery parses `#[macros]* QUERY name(params) => statements RETURN exprs`.
func (p *parser) parseQuery() *ast.Query {
	start := p.cur().Loc
	q := &ast.Query{}
	for p.at(token.Hash) {
		q.Macros = append(q.Macros, p.parseMacro())
	}
	if _, ok := p.expect(token.KwQuery); !ok {
		p.recoverToBoundary()
		return nil
	}
	nameTok, _ := p.expect(token.Ident)
	q.Name, q.NameLoc = nameTok.Lit, nameTok.Loc

	p.expect(token.LParen)
	for !p.at(token.RParen) && !p.at(token.EOF) {
		q.Parameters = append(q.Parameters, p.parseParameter())
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RParen)
	p.expect(token.Arrow)

	for !p.at(token.KwReturn) && !p.at(token.EOF) &&
		!(p.at(token.KwQuery)) && !(p.at(token.Hash)) &&
		!(p.at(token.KwN) || p.at(token.KwE) || p.at(token.KwV)) {
		q.Statements = append(q.Statements, p.parseStatement())
	}
	if p.at(token.KwReturn) {
		p.advance()
		q.ReturnValues = append(q.ReturnValues, p.parseReturnExpr())
		for p.at(token.Comma) {
			p.advance()
			q.ReturnValues = append(q.ReturnValues, p.parseReturnExpr())
		}
	}
	q.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return q
}

func (p *parser) parseMacro() ast.BuiltInMacro {
	start := p.cur().Loc
	p.advance() // #
	p.expect(token.LBracket)
	nameTok, _ := p.expect(token.Ident)
	m := ast.BuiltInMacro{Loc: start}
	switch nameTok.Lit {
	case "mcp":
		m.Kind = ast.MacroMCP
	case "model":
		m.Kind = ast.MacroModel
		p.expect(token.LParen)
		if p.at(token.String) {
			m.ModelName = p.advance().Lit
		}
		p.expect(token.RParen)
	}
	p.expect(token.RBracket)
	return m
}

func (p *parser) parseParameter() *ast.Parameter {
	start := p.cur().Loc
	nameTok, _ := p.expect(token.Ident)
	param := &ast.Parameter{Name: nameTok.Lit, NameLoc: nameTok.Loc}
	p.expect(token.Colon)
	if p.atIdent("Array") {
		typLoc := p.cur().Loc
		param.Type = p.parseFieldType()
		param.TypeLoc = typLoc
	} else if p.at(token.LBrace) {
		// inline object parameter type: { field: Type, ... }
		typLoc := p.cur().Loc
		param.Type = p.parseObjectFieldType()
		param.TypeLoc = typLoc
	} else {
		typLoc := p.cur().Loc
		param.Type = p.parseFieldType()
		param.TypeLoc = typLoc
	}
	if p.at(token.Bang) { // trailing `!` marks required; absence means optional in HelixQL params
		p.advance()
	} else {
		param.IsOptional = true
	}
	param.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return param
}

func (p *parser) parseObjectFieldType() ast.FieldType {
	p.expect(token.LBrace)
	obj := map[string]*ast.FieldType{}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		nameTok, _ := p.expect(token.Ident)
		p.expect(token.Colon)
		ft := p.parseFieldType()
		obj[nameTok.Lit] = &ft
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RBrace)
	return ast.FieldType{Kind: ast.TObject, Object: obj}
}

func (p *parser) parseStatement() *ast.Statement {
	start := p.cur().Loc
	stmt := &ast.Statement{}
	switch {
	case p.at(token.KwDrop):
		p.advance()
		stmt.Kind = ast.StmtDrop
		stmt.Expr = p.parseExpression()
	case p.at(token.KwFor):
		p.advance()
		stmt.Kind = ast.StmtForLoop
		stmt.ForLoop = p.parseForLoop(start)
	case p.at(token.Ident) && p.peekAt(1).Kind == token.LeftArrow:
		nameTok := p.advance()
		p.advance() // <-
		stmt.Kind = ast.StmtAssignment
		stmt.Assignment = &ast.Assignment{Variable: nameTok.Lit, NameLoc: nameTok.Loc, Value: p.parseExpression()}
	default:
		stmt.Kind = ast.StmtExpression
		stmt.Expr = p.parseExpression()
	}
	stmt.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return stmt
}

func (p *parser) parseForLoop(start diag.Loc) *ast.ForLoop {
	fl := &ast.ForLoop{}
	switch {
	case p.at(token.LBrace):
		p.advance()
		var fields []ast.NameLoc
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			t, _ := p.expect(token.Ident)
			fields = append(fields, ast.NameLoc{Name: t.Lit, Loc: t.Loc})
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBrace)
		fl.Variable = ast.ForLoopVars{Kind: ast.ForVarDestructure, Fields: fields}
	default:
		nameTok, _ := p.expect(token.Ident)
		if p.at(token.Dot) {
			p.advance()
			fieldTok, _ := p.expect(token.Ident)
			fl.Variable = ast.ForLoopVars{Kind: ast.ForVarObjectAccess, Name: nameTok.Lit, Field: fieldTok.Lit, Loc: nameTok.Loc}
		} else {
			fl.Variable = ast.ForLoopVars{Kind: ast.ForVarIdentifier, Name: nameTok.Lit, Loc: nameTok.Loc}
		}
	}
	p.expect(token.KwIn)
	inTok, _ := p.expect(token.Ident)
	fl.InVariable, fl.InLoc = inTok.Lit, inTok.Loc
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fl.Statements = append(fl.Statements, p.parseStatement())
	}
	p.expect(token.RBrace)
	fl.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return fl
}

func (p *parser) parseReturnExpr() *ast.ReturnExpr {
	start := p.cur().Loc
	r := &ast.ReturnExpr{Kind: ast.ReturnExpression}
	if p.at(token.Ident) && p.peekAt(1).Kind == token.Colon {
		nameTok := p.advance()
		p.advance() // :
		r.Name = nameTok.Lit
	}
	r.Expr = p.parseExpression()
	r.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return r
}
