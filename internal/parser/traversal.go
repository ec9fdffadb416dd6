package parser

import (
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/token"
)

// parseTraversal parses a start node followed by zero or more `::step`
// chained operations (spec §3.7). Returns nil if the current token cannot
// start a traversal.
func (p *parser) parseTraversal() *ast.Traversal {
	start := p.cur().Loc
	sn := p.parseStartNode()
	if sn == nil {
		return nil
	}
	tr := &ast.Traversal{Start: sn}
	for p.at(token.DblColon) {
		p.advance()
		tr.Steps = append(tr.Steps, p.parseStep())
	}
	tr.Loc = p.spanFrom(start)
	return tr
}

func (p *parser) parseStartNode() *ast.StartNode {
	start := p.cur().Loc
	sn := &ast.StartNode{}
	switch {
	case p.at(token.KwN):
		p.advance()
		sn.Kind = ast.StartNode_
		sn.TypeName = p.parseTypeArg()
		sn.Ids = p.parseOptionalIdArgs()
	case p.at(token.KwE):
		p.advance()
		sn.Kind = ast.StartEdge
		sn.TypeName = p.parseTypeArg()
		sn.Ids = p.parseOptionalIdArgs()
	case p.at(token.KwV) && p.peekAt(1).Kind == token.Lt:
		p.advance()
		sn.Kind = ast.StartVector
		sn.TypeName = p.parseTypeArg()
		sn.Ids = p.parseOptionalIdArgs()
	case p.atIdent("SearchV"):
		sn.Kind = ast.StartSearchVector
		sn.Search = p.parseSearchVectorArgs(start)
	case p.at(token.Ident) && p.cur().Lit == "_":
		p.advance()
		sn.Kind = ast.StartAnonymous
	case p.at(token.Ident):
		t := p.advance()
		sn.Kind = ast.StartIdentifier
		sn.Identifier = t.Lit
	default:
		return nil
	}
	sn.Loc = p.spanFrom(start)
	return sn
}

func (p *parser) parseTypeArg() string {
	if !p.at(token.Lt) {
		return ""
	}
	p.advance()
	t, _ := p.expect(token.Ident)
	p.expect(token.Gt)
	return t.Lit
}

func (p *parser) parseOptionalIdArgs() []*ast.IdType {
	if !p.at(token.LParen) {
		return nil
	}
	p.advance()
	var ids []*ast.IdType
	for !p.at(token.RParen) && !p.at(token.EOF) {
		ids = append(ids, p.parseIdType())
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RParen)
	return ids
}

// parseStep parses one `::...` chained operation. The dispatch keys off the
// step's identifier text since only a handful of these are reserved words.
func (p *parser) parseStep() *ast.Step {
	start := p.cur().Loc
	step := &ast.Step{}
	switch {
	case p.atIdent("Out"):
		p.advance()
		step.Kind = ast.StepOut
		step.Label = p.parseTypeArg()
		p.parseOptionalIdArgs()
	case p.atIdent("In"):
		p.advance()
		step.Kind = ast.StepIn
		step.Label = p.parseTypeArg()
		p.parseOptionalIdArgs()
	case p.atIdent("OutE"):
		p.advance()
		step.Kind = ast.StepOutE
		step.Label = p.parseTypeArg()
		p.parseOptionalIdArgs()
	case p.atIdent("InE"):
		p.advance()
		step.Kind = ast.StepInE
		step.Label = p.parseTypeArg()
		p.parseOptionalIdArgs()
	case p.atIdent("FromN"):
		p.advance()
		step.Kind = ast.StepFromN
	case p.atIdent("ToN"):
		p.advance()
		step.Kind = ast.StepToN
	case p.atIdent("FromV"):
		p.advance()
		step.Kind = ast.StepFromV
	case p.atIdent("ToV"):
		p.advance()
		step.Kind = ast.StepToV
	case p.atIdent("WHERE"):
		p.advance()
		p.expect(token.LParen)
		step.Kind = ast.StepWhere
		step.Where = p.parseExpression()
		p.expect(token.RParen)
	case p.isBooleanOpName():
		step.Kind = ast.StepBooleanOp
		step.BooleanOp = p.parseBooleanOp(start)
	case p.at(token.LBracket):
		p.advance()
		step.Kind = ast.StepRange
		step.RangeLo = p.parseExpression()
		p.expect(token.DotDot)
		step.RangeHi = p.parseExpression()
		p.expect(token.RBracket)
	case p.atIdent("ORDER"):
		p.advance()
		p.expect(token.LParen)
		ob := &ast.OrderBy{Loc: p.cur().Loc}
		ob.Expression = p.parseExpression()
		if p.at(token.Comma) {
			p.advance()
			if p.atIdent("DESC") {
				ob.Direction = ast.Desc
			}
			p.advance()
		}
		p.expect(token.RParen)
		step.Kind = ast.StepOrderBy
		step.OrderBy = ob
	case p.atIdent("COUNT"):
		p.advance()
		if p.at(token.LParen) {
			p.advance()
			p.expect(token.RParen)
		}
		step.Kind = ast.StepCount
	case p.atIdent("DEDUP"):
		p.advance()
		if p.at(token.LParen) {
			p.advance()
			p.expect(token.RParen)
		}
		step.Kind = ast.StepDedup
	case p.atIdent("FIRST"):
		p.advance()
		if p.at(token.LParen) {
			p.advance()
			p.expect(token.RParen)
		}
		step.Kind = ast.StepFirst
	case p.atIdent("UPDATE"):
		p.advance()
		p.expect(token.LParen)
		step.Kind = ast.StepUpdate
		step.Update = &ast.Update{Fields: p.parseFieldAdditionList(), Loc: p.cur().Loc}
		p.expect(token.RParen)
	case p.atIdent("UPSERT_N"):
		p.advance()
		nodeType := p.parseTypeArg()
		p.expect(token.LParen)
		step.Kind = ast.StepUpsertN
		step.UpsertN = &ast.UpsertN{NodeType: nodeType, Fields: p.parseFieldAdditionList()}
		p.expect(token.RParen)
	case p.atIdent("UPSERT_E"):
		p.advance()
		edgeType := p.parseTypeArg()
		p.expect(token.LParen)
		fields := p.parseFieldAdditionList()
		p.expect(token.RParen)
		ue := &ast.UpsertE{EdgeType: edgeType, Fields: fields}
		connStart := p.cur().Loc
		for p.at(token.DblColon) {
			save := p.pos
			p.advance()
			switch {
			case p.at(token.KwFrom):
				p.advance()
				p.expect(token.LParen)
				ue.Connection.FromID = p.parseIdType()
				p.expect(token.RParen)
			case p.at(token.KwTo):
				p.advance()
				p.expect(token.LParen)
				ue.Connection.ToID = p.parseIdType()
				p.expect(token.RParen)
			default:
				p.pos = save
			}
			if p.pos == save {
				break
			}
		}
		ue.Connection.Loc = p.spanFrom(connStart)
		step.Kind = ast.StepUpsertE
		step.UpsertE = ue
	case p.atIdent("UPSERT_V"):
		p.advance()
		vecType := p.parseTypeArg()
		p.expect(token.LParen)
		uv := &ast.UpsertV{VectorType: vecType}
		uv.Data = p.parseVectorData()
		if p.at(token.Comma) {
			p.advance()
			uv.Fields = p.parseFieldAdditionList()
		}
		p.expect(token.RParen)
		step.Kind = ast.StepUpsertV
		step.UpsertV = uv
	case p.atIdent("UPSERT"):
		p.advance()
		p.expect(token.LParen)
		step.Kind = ast.StepUpsert
		step.Upsert = &ast.Upsert{Fields: p.parseFieldAdditionList()}
		p.expect(token.RParen)
	case p.atIdent("AGGREGATE"):
		p.advance()
		p.expect(token.LParen)
		step.Kind = ast.StepAggregate
		step.Aggregate = &ast.Aggregate{Properties: p.parseIdentList(), Loc: p.cur().Loc}
		p.expect(token.RParen)
	case p.atIdent("GROUP_BY"):
		p.advance()
		p.expect(token.LParen)
		step.Kind = ast.StepGroupBy
		step.GroupBy = &ast.GroupBy{Properties: p.parseIdentList(), Loc: p.cur().Loc}
		p.expect(token.RParen)
	case p.atIdent("RERANK_RRF"):
		p.advance()
		rrf := &ast.RerankRRF{}
		if p.at(token.LParen) {
			p.advance()
			if !p.at(token.RParen) {
				rrf.K = p.parseExpression()
			}
			p.expect(token.RParen)
		}
		step.Kind = ast.StepRerankRRF
		step.RerankRRF = rrf
	case p.atIdent("RERANK_MMR"):
		p.advance()
		p.expect(token.LParen)
		mmr := &ast.RerankMMR{Lambda: p.parseExpression()}
		if p.at(token.Comma) {
			p.advance()
			mmr.HasDistance = true
			switch {
			case p.atIdent("COSINE"):
				p.advance()
				mmr.Distance = ast.MMRCosine
			case p.atIdent("EUCLIDEAN"):
				p.advance()
				mmr.Distance = ast.MMREuclidean
			case p.atIdent("DOT_PRODUCT"):
				p.advance()
				mmr.Distance = ast.MMRDotProduct
			default:
				t, _ := p.expect(token.Ident)
				mmr.Distance = ast.MMRIdentifier
				mmr.DistanceName = t.Lit
			}
		}
		p.expect(token.RParen)
		step.Kind = ast.StepRerankMMR
		step.RerankMMR = mmr
	case p.atIdent("SHORTEST_PATH") || p.atIdent("SHORTEST_PATH_BFS") ||
		p.atIdent("SHORTEST_PATH_DIJKSTRA") || p.atIdent("SHORTEST_PATH_ASTAR"):
		step.Kind, step.ShortestPath = p.parseShortestPath(start)
	case p.atIdent("AddE"):
		step.Kind = ast.StepAddEdge
		step.AddEdge = p.parseAddEdge(start)
	case p.at(token.Bang):
		p.advance()
		p.expect(token.LBrace)
		step.Kind = ast.StepExclude
		var fields []ast.NameLoc
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			t, _ := p.expect(token.Ident)
			fields = append(fields, ast.NameLoc{Name: t.Lit, Loc: t.Loc})
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBrace)
		step.Exclude = &ast.Exclude{Fields: fields, Loc: p.spanFrom(start)}
	case p.at(token.Pipe):
		p.advance()
		nameTok, _ := p.expect(token.Ident)
		p.expect(token.Pipe)
		objStart := p.cur().Loc
		p.expect(token.LBrace)
		fields, spread := p.parseObjectFields()
		p.expect(token.RBrace)
		step.Kind = ast.StepClosure
		step.Closure = &ast.Closure{
			Identifier: nameTok.Lit,
			Object:     &ast.Object{Fields: fields, ShouldSpread: spread, Loc: p.spanFrom(objStart)},
			Loc:        p.spanFrom(start),
		}
	case p.at(token.LBrace):
		p.advance()
		fields, spread := p.parseObjectFields()
		p.expect(token.RBrace)
		step.Kind = ast.StepObject
		step.Object = &ast.Object{Fields: fields, ShouldSpread: spread, Loc: p.spanFrom(start)}
	default:
		p.errorf(p.cur().Loc, "unrecognized traversal step")
		p.advance()
	}
	step.Loc = p.spanFrom(start)
	return step
}

func (p *parser) parseObjectFields() ([]*ast.FieldAddition, bool) {
	spread := false
	var fields []*ast.FieldAddition
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.DotDotDot) {
			p.advance()
			spread = true
			if p.at(token.Ident) {
				p.advance() // the spread source; Object.ShouldSpread covers "spread current item"
			}
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		fields = append(fields, p.parseFieldAddition())
		if p.at(token.Comma) {
			p.advance()
		}
	}
	return fields, spread
}

func (p *parser) parseFieldAdditionList() []*ast.FieldAddition {
	p.expect(token.LBrace)
	var fields []*ast.FieldAddition
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fields = append(fields, p.parseFieldAddition())
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RBrace)
	return fields
}

func (p *parser) parseIdentList() []string {
	var out []string
	for !p.at(token.RParen) && !p.at(token.EOF) {
		t, _ := p.expect(token.Ident)
		out = append(out, t.Lit)
		if p.at(token.Comma) {
			p.advance()
		}
	}
	return out
}

func (p *parser) isBooleanOpName() bool {
	if p.at(token.KwAnd) || p.at(token.KwOr) {
		return true
	}
	if p.at(token.KwIn) {
		return true
	}
	if !p.at(token.Ident) {
		return false
	}
	switch p.cur().Lit {
	case "GT", "GTE", "LT", "LTE", "EQ", "NEQ", "CONTAINS":
		return true
	}
	return false
}

func (p *parser) parseBooleanOp(start diag.Loc) *ast.BooleanOp {
	op := &ast.BooleanOp{}
	switch {
	case p.at(token.KwAnd):
		p.advance()
		op.Op = ast.OpAnd
		op.Many = p.parseExpressionArgList()
		op.Loc = p.spanFrom(start)
		return op
	case p.at(token.KwOr):
		p.advance()
		op.Op = ast.OpOr
		op.Many = p.parseExpressionArgList()
		op.Loc = p.spanFrom(start)
		return op
	case p.at(token.KwIn):
		p.advance()
		op.Op = ast.OpIsIn
	default:
		switch p.advance().Lit {
		case "GT":
			op.Op = ast.OpGT
		case "GTE":
			op.Op = ast.OpGTE
		case "LT":
			op.Op = ast.OpLT
		case "LTE":
			op.Op = ast.OpLTE
		case "EQ":
			op.Op = ast.OpEq
		case "NEQ":
			op.Op = ast.OpNotEq
		case "CONTAINS":
			op.Op = ast.OpContains
		}
	}
	p.expect(token.LParen)
	op.Rhs = p.parseExpression()
	p.expect(token.RParen)
	op.Loc = p.spanFrom(start)
	return op
}

func (p *parser) parseShortestPath(start diag.Loc) (ast.StepKind, *ast.ShortestPath) {
	sp := &ast.ShortestPath{}
	switch p.advance().Lit {
	case "SHORTEST_PATH":
		sp.Algorithm = ast.PathDefault
	case "SHORTEST_PATH_BFS":
		sp.Algorithm = ast.PathBFS
	case "SHORTEST_PATH_DIJKSTRA":
		sp.Algorithm = ast.PathDijkstra
	case "SHORTEST_PATH_ASTAR":
		sp.Algorithm = ast.PathAStar
	}
	sp.Label = p.parseTypeArg()
	p.expect(token.LParen)
	sp.From = p.parseIdType()
	p.expect(token.Comma)
	sp.To = p.parseIdType()
	if p.at(token.Comma) {
		p.advance()
		if p.atIdent("WEIGHT") {
			p.advance()
			p.expect(token.LParen)
			we := &ast.WeightExpr{}
			if p.at(token.Ident) && p.peekAt(1).Kind != token.LParen {
				we.Kind = ast.WeightProperty
				we.Property = p.advance().Lit
			} else {
				we.Kind = ast.WeightExpression
				we.Expr = p.parseExpression()
			}
			p.expect(token.RParen)
			sp.Weight = we
		} else if p.at(token.Ident) {
			sp.HeuristicProperty = p.advance().Lit
		}
	}
	p.expect(token.RParen)
	sp.Loc = p.spanFrom(start)
	switch sp.Algorithm {
	case ast.PathBFS:
		return ast.StepShortestPathBFS, sp
	case ast.PathDijkstra:
		return ast.StepShortestPathDijkstra, sp
	case ast.PathAStar:
		return ast.StepShortestPathAStar, sp
	default:
		return ast.StepShortestPath, sp
	}
}
