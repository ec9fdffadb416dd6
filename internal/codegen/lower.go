package codegen

import (
	"github.com/dave/jennifer/jen"

	"github.com/oneiron-dev/helixql/internal/ast"
)

// lowerTraversal renders one traversal as a chain of runtime combinator
// calls: the start step opens the iterator, every following step is a
// chained method call (spec §4.6 step 4's "G::new(...)" wrapper and the
// per-step combinator lowering in original_source's traversal_steps.rs).
func lowerTraversal(tr *ast.Traversal) *jen.Statement {
	chain := lowerStart(tr.Start)
	for _, step := range tr.Steps {
		chain = lowerStep(chain, step)
	}
	return chain
}

func lowerStart(s *ast.StartNode) *jen.Statement {
	switch s.Kind {
	case ast.StartNode_:
		return jen.Qual(RuntimePackage, "N").Index(jen.Id(exportedName(s.TypeName))).Call(jen.Id("tx"), idArgs(s.Ids)...)
	case ast.StartEdge:
		return jen.Qual(RuntimePackage, "E").Index(jen.Id(exportedName(s.TypeName))).Call(jen.Id("tx"), idArgs(s.Ids)...)
	case ast.StartVector:
		return jen.Qual(RuntimePackage, "V").Index(jen.Id(exportedName(s.TypeName))).Call(jen.Id("tx"), idArgs(s.Ids)...)
	case ast.StartSearchVector:
		return lowerSearchVector(s.Search)
	case ast.StartIdentifier:
		return jen.Qual(RuntimePackage, "From").Call(jen.Id(s.Identifier))
	default: // StartAnonymous
		return jen.Qual(RuntimePackage, "From").Call(jen.Id("_"))
	}
}

func idArgs(ids []*ast.IdType) []jen.Code {
	args := make([]jen.Code, 0, len(ids))
	for _, id := range ids {
		args = append(args, lowerIDArg(id))
	}
	return args
}

func lowerIDArg(id *ast.IdType) jen.Code {
	switch id.Kind {
	case ast.IdLiteral:
		return jen.Lit(id.Value)
	case ast.IdIdentifier:
		return jen.Id(id.Value)
	default: // IdByIndex
		return jen.Qual(RuntimePackage, "ByIndex").Call(lowerIDArg(id.Index), renderValueType(id.By))
	}
}

func lowerStep(chain *jen.Statement, step *ast.Step) *jen.Statement {
	switch step.Kind {
	case ast.StepOut:
		return chain.Dot("Out").Call(labelArg(step.Label)...)
	case ast.StepIn:
		return chain.Dot("In").Call(labelArg(step.Label)...)
	case ast.StepOutE:
		return chain.Dot("OutE").Call(labelArg(step.Label)...)
	case ast.StepInE:
		return chain.Dot("InE").Call(labelArg(step.Label)...)
	case ast.StepFromN:
		return chain.Dot("FromN").Call()
	case ast.StepToN:
		return chain.Dot("ToN").Call()
	case ast.StepFromV:
		return chain.Dot("FromV").Call()
	case ast.StepToV:
		return chain.Dot("ToV").Call()
	case ast.StepWhere:
		return chain.Dot("Where").Call(whereClosure(step.Where))
	case ast.StepBooleanOp:
		return chain.Dot("Where").Call(booleanOpClosure(step.BooleanOp))
	case ast.StepRange:
		return chain.Dot("Range").Call(lowerExpr(step.RangeLo), lowerExpr(step.RangeHi))
	case ast.StepOrderBy:
		name := "OrderByAsc"
		if step.OrderBy.Direction == ast.Desc {
			name = "OrderByDesc"
		}
		return chain.Dot(name).Call(orderClosure(step.OrderBy.Expression))
	case ast.StepCount:
		return chain.Dot("Count").Call()
	case ast.StepDedup:
		return chain.Dot("Dedup").Call()
	case ast.StepFirst:
		return chain.Dot("First").Call()
	case ast.StepUpdate:
		return chain.Dot("Update").Call(renderFieldAdditions(step.Update.Fields))
	case ast.StepUpsert:
		return chain.Dot("Upsert").Call(renderFieldAdditions(step.Upsert.Fields))
	case ast.StepUpsertN:
		return chain.Dot("UpsertN").Call(jen.Lit(step.UpsertN.NodeType), renderFieldAdditions(step.UpsertN.Fields))
	case ast.StepUpsertE:
		return chain.Dot("UpsertE").Call(jen.Lit(step.UpsertE.EdgeType), renderFieldAdditions(step.UpsertE.Fields),
			lowerIDArg(step.UpsertE.Connection.FromID), lowerIDArg(step.UpsertE.Connection.ToID))
	case ast.StepUpsertV:
		return chain.Dot("UpsertV").Call(jen.Lit(step.UpsertV.VectorType), lowerVectorData(step.UpsertV.Data), renderFieldAdditions(step.UpsertV.Fields))
	case ast.StepObject:
		return chain.Dot("Project").Call(renderFieldAdditions(step.Object.Fields))
	case ast.StepExclude:
		args := make([]jen.Code, 0, len(step.Exclude.Fields))
		for _, f := range step.Exclude.Fields {
			args = append(args, jen.Lit(f.Name))
		}
		return chain.Dot("Exclude").Call(args...)
	case ast.StepClosure:
		return chain.Dot("Map").Call(jen.Func().Params(jen.Id(step.Closure.Identifier).Qual(RuntimePackage, "Value")).Qual(RuntimePackage, "Value").Block(
			jen.Return(lowerStep(jen.Qual(RuntimePackage, "From").Call(jen.Id(step.Closure.Identifier)), &ast.Step{Kind: ast.StepObject, Object: step.Closure.Object})),
		))
	case ast.StepAggregate:
		return chain.Dot("Aggregate").Call(stringArgs(step.Aggregate.Properties)...)
	case ast.StepGroupBy:
		return chain.Dot("GroupBy").Call(stringArgs(step.GroupBy.Properties)...)
	case ast.StepRerankRRF:
		if step.RerankRRF.K != nil {
			return chain.Dot("RerankRRF").Call(lowerExpr(step.RerankRRF.K))
		}
		return chain.Dot("RerankRRF").Call()
	case ast.StepRerankMMR:
		args := []jen.Code{lowerExpr(step.RerankMMR.Lambda)}
		if step.RerankMMR.HasDistance {
			args = append(args, mmrDistanceArg(step.RerankMMR))
		}
		return chain.Dot("RerankMMR").Call(args...)
	case ast.StepShortestPath, ast.StepShortestPathBFS, ast.StepShortestPathDijkstra, ast.StepShortestPathAStar:
		return chain.Dot("ShortestPath").Call(lowerShortestPath(step.ShortestPath))
	case ast.StepAddEdge:
		return chain.Dot("AddEdge").Call(lowerAddEdge(step.AddEdge))
	default:
		return chain
	}
}

func labelArg(label string) []jen.Code {
	if label == "" {
		return nil
	}
	return []jen.Code{jen.Lit(label)}
}

func stringArgs(ss []string) []jen.Code {
	args := make([]jen.Code, 0, len(ss))
	for _, s := range ss {
		args = append(args, jen.Lit(s))
	}
	return args
}

func mmrDistanceArg(r *ast.RerankMMR) jen.Code {
	switch r.Distance {
	case ast.MMRCosine:
		return jen.Qual(RuntimePackage, "DistanceCosine")
	case ast.MMREuclidean:
		return jen.Qual(RuntimePackage, "DistanceEuclidean")
	case ast.MMRDotProduct:
		return jen.Qual(RuntimePackage, "DistanceDotProduct")
	default:
		return jen.Id(r.DistanceName)
	}
}

// whereClosure renders `::WHERE(expr)` as a predicate closure binding the
// implicit current value to "_" (spec §4.6 step 6, `filter_ref`).
func whereClosure(e *ast.Expression) jen.Code {
	return jen.Func().Params(jen.Id("_").Qual(RuntimePackage, "Value"), jen.Id("_tx").Qual(RuntimePackage, "Tx")).Bool().Block(
		jen.Return(lowerExpr(e)),
	)
}

func booleanOpClosure(op *ast.BooleanOp) jen.Code {
	return jen.Func().Params(jen.Id("_").Qual(RuntimePackage, "Value"), jen.Id("_tx").Qual(RuntimePackage, "Tx")).Bool().Block(
		jen.Return(lowerBooleanOp(op)),
	)
}

func orderClosure(e *ast.Expression) jen.Code {
	return jen.Func().Params(jen.Id("_").Qual(RuntimePackage, "Value")).Qual(RuntimePackage, "Value").Block(
		jen.Return(lowerExpr(e)),
	)
}

func lowerBooleanOp(op *ast.BooleanOp) jen.Code {
	switch op.Op {
	case ast.OpAnd:
		return joinMany(op.Many, "&&")
	case ast.OpOr:
		return joinMany(op.Many, "||")
	case ast.OpGT:
		return jen.Qual(RuntimePackage, "Gt").Call(jen.Id("_"), lowerExpr(op.Rhs))
	case ast.OpGTE:
		return jen.Qual(RuntimePackage, "Gte").Call(jen.Id("_"), lowerExpr(op.Rhs))
	case ast.OpLT:
		return jen.Qual(RuntimePackage, "Lt").Call(jen.Id("_"), lowerExpr(op.Rhs))
	case ast.OpLTE:
		return jen.Qual(RuntimePackage, "Lte").Call(jen.Id("_"), lowerExpr(op.Rhs))
	case ast.OpEq:
		return jen.Qual(RuntimePackage, "Eq").Call(jen.Id("_"), lowerExpr(op.Rhs))
	case ast.OpNotEq:
		return jen.Qual(RuntimePackage, "NotEq").Call(jen.Id("_"), lowerExpr(op.Rhs))
	case ast.OpContains:
		return jen.Qual(RuntimePackage, "Contains").Call(jen.Id("_"), lowerExpr(op.Rhs))
	default: // OpIsIn
		return jen.Qual(RuntimePackage, "IsIn").Call(jen.Id("_"), lowerExpr(op.Rhs))
	}
}

func joinMany(exprs []*ast.Expression, op string) jen.Code {
	if len(exprs) == 0 {
		return jen.Lit(true)
	}
	stmt := jen.Parens(lowerExpr(exprs[0]))
	for _, e := range exprs[1:] {
		stmt = stmt.Op(op).Parens(lowerExpr(e))
	}
	return stmt
}

// lowerExpr renders an expression as a Go value expression. Traversals
// nested in expression position (e.g. ::WHERE(_::Out<Knows>::COUNT::GT(0)))
// lower to the same combinator chain used at statement level.
func lowerExpr(e *ast.Expression) jen.Code {
	if e == nil {
		return jen.Nil()
	}
	switch e.Kind {
	case ast.ExprTraversal:
		return lowerTraversal(e.Traversal)
	case ast.ExprIdentifier:
		return jen.Id(e.Identifier)
	case ast.ExprStringLiteral:
		return jen.Lit(e.Str)
	case ast.ExprIntLiteral:
		return jen.Lit(e.Int)
	case ast.ExprFloatLiteral:
		return jen.Lit(e.Float)
	case ast.ExprBoolLiteral:
		return jen.Lit(e.Bool)
	case ast.ExprArrayLiteral:
		elems := make([]jen.Code, 0, len(e.Array))
		for _, el := range e.Array {
			elems = append(elems, lowerExpr(el))
		}
		return jen.Index().Interface().Values(elems...)
	case ast.ExprExists:
		return jen.Qual(RuntimePackage, "Exists").Call(lowerExpr(e.Exists))
	case ast.ExprAddNode:
		return lowerAddNode(e.AddNode)
	case ast.ExprAddEdge:
		return lowerAddEdge(e.AddEdge)
	case ast.ExprAddVector:
		return lowerAddVector(e.AddVector)
	case ast.ExprNot:
		return jen.Op("!").Parens(lowerExpr(e.Unary))
	case ast.ExprAnd:
		return joinMany(e.Many, "&&")
	case ast.ExprOr:
		return joinMany(e.Many, "||")
	case ast.ExprSearchVector:
		return lowerSearchVector(e.Search)
	case ast.ExprBM25Search:
		return lowerBM25(e.BM25)
	case ast.ExprMathCall:
		return lowerMathCall(e.MathCall)
	default: // ExprEmpty
		return jen.Nil()
	}
}

func lowerMathCall(m *ast.MathFunctionCall) jen.Code {
	args := make([]jen.Code, 0, len(m.Args))
	for _, a := range m.Args {
		args = append(args, lowerExpr(a))
	}
	return jen.Qual(RuntimePackage, "Math"+exportedName(lowerStr(m.Function.Name()))).Call(args...)
}

func lowerStr(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	for i := 1; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func lowerSearchVector(s *ast.SearchVector) *jen.Statement {
	args := []jen.Code{jen.Id("tx"), lowerVectorData(s.Data), lowerExpr(s.K)}
	if s.PreFilter != nil {
		args = append(args, whereClosure(s.PreFilter))
	}
	return jen.Qual(RuntimePackage, "SearchV").Index(jen.Id(exportedName(s.VectorType))).Call(args...)
}

func lowerBM25(b *ast.BM25Search) jen.Code {
	return jen.Qual(RuntimePackage, "SearchBM25").Index(jen.Id(exportedName(b.TypeArg))).Call(jen.Id("tx"), renderValueType(b.Data), lowerExpr(b.K))
}

func lowerVectorData(vd *ast.VectorData) jen.Code {
	switch vd.Kind {
	case ast.VectorDataLiteral:
		lits := make([]jen.Code, 0, len(vd.Vector))
		for _, f := range vd.Vector {
			lits = append(lits, jen.Lit(f))
		}
		return jen.Index().Float64().Values(lits...)
	case ast.VectorDataIdentifier:
		return jen.Id(vd.Identifier)
	default: // VectorDataEmbed
		return jen.Id(embedResultName(vd.Embed))
	}
}

// embedResultName names the variable an Embed(text) call result is hoisted
// into before the transaction begins (spec §4.6 step 3).
func embedResultName(e *ast.Embed) string {
	if e.IsIdentifier {
		return e.Identifier + "Embedding"
	}
	return "embedding"
}

func lowerAddNode(an *ast.AddNode) jen.Code {
	return jen.Qual(RuntimePackage, "AddN").Index(jen.Id(exportedName(an.NodeType))).Call(jen.Id("tx"), renderValueTypeMap(an.Fields))
}

func lowerAddEdge(ae *ast.AddEdge) jen.Code {
	return jen.Qual(RuntimePackage, "AddE").Index(jen.Id(exportedName(ae.EdgeType))).Call(
		jen.Id("tx"), renderValueTypeMap(ae.Fields), lowerIDArg(ae.Connection.FromID), lowerIDArg(ae.Connection.ToID),
	)
}

func lowerAddVector(av *ast.AddVector) jen.Code {
	return jen.Qual(RuntimePackage, "AddV").Index(jen.Id(exportedName(av.VectorType))).Call(
		jen.Id("tx"), lowerVectorData(av.Data), renderValueTypeMap(av.Fields),
	)
}

func lowerShortestPath(sp *ast.ShortestPath) jen.Code {
	algo := "PathDefault"
	switch sp.Algorithm {
	case ast.PathBFS:
		algo = "PathBFS"
	case ast.PathDijkstra:
		algo = "PathDijkstra"
	case ast.PathAStar:
		algo = "PathAStar"
	}
	dict := jen.Dict{
		jen.Id("Label"):     jen.Lit(sp.Label),
		jen.Id("From"):      lowerIDArg(sp.From),
		jen.Id("To"):        lowerIDArg(sp.To),
		jen.Id("Algorithm"): jen.Qual(RuntimePackage, algo),
	}
	if sp.Weight != nil {
		dict[jen.Id("Weight")] = lowerWeightExpr(sp.Weight)
	}
	if sp.Algorithm == ast.PathAStar {
		dict[jen.Id("Heuristic")] = jen.Lit(sp.HeuristicProperty)
	}
	return jen.Qual(RuntimePackage, "ShortestPathArgs").Values(dict)
}

func lowerWeightExpr(w *ast.WeightExpr) jen.Code {
	switch w.Kind {
	case ast.WeightProperty:
		return jen.Lit(w.Property)
	case ast.WeightExpression:
		return orderClosure(w.Expr)
	default:
		return jen.Nil()
	}
}

// renderFieldAdditions builds the map literal passed to UPDATE/UPSERT/
// object-projection combinators: one entry per declared field.
func renderFieldAdditions(fields []*ast.FieldAddition) jen.Code {
	dict := jen.Dict{}
	for _, fa := range fields {
		dict[jen.Lit(fa.Key)] = renderFieldValue(fa.Value)
	}
	return jen.Qual(RuntimePackage, "Fields").Values(dict)
}

func renderFieldValue(fv *ast.FieldValue) jen.Code {
	switch fv.Kind {
	case ast.FieldValueTraversal:
		return lowerTraversal(fv.Traversal)
	case ast.FieldValueExpression:
		return lowerExpr(fv.Expression)
	case ast.FieldValueFields:
		return renderFieldAdditions(fv.Fields)
	case ast.FieldValueLiteral:
		return renderValue(fv.Literal)
	case ast.FieldValueIdentifier:
		return jen.Id(fv.Identifier)
	default: // FieldValueEmpty
		return jen.Id("_")
	}
}

func renderValueTypeMap(fields map[string]*ast.ValueType) jen.Code {
	dict := jen.Dict{}
	for k, v := range fields {
		dict[jen.Lit(k)] = renderValueType(v)
	}
	return jen.Qual(RuntimePackage, "Fields").Values(dict)
}

func renderValueType(v *ast.ValueType) jen.Code {
	if v == nil {
		return jen.Nil()
	}
	switch v.Kind {
	case ast.ValueLiteral:
		return renderValue(v.Literal)
	case ast.ValueIdentifier:
		return jen.Id(v.Identifier)
	default: // ValueObject
		return renderValueTypeMap(v.Object)
	}
}

func renderValue(v ast.Value) jen.Code {
	switch v.Kind {
	case ast.VString:
		return jen.Lit(v.Str)
	case ast.VI64:
		return jen.Lit(v.I64)
	case ast.VF64:
		return jen.Lit(v.F64)
	case ast.VBoolean:
		return jen.Lit(v.Bool)
	case ast.VArray:
		elems := make([]jen.Code, 0, len(v.Array))
		for _, e := range v.Array {
			elems = append(elems, renderValue(e))
		}
		return jen.Index().Interface().Values(elems...)
	case ast.VObject:
		dict := jen.Dict{}
		for k, e := range v.Object {
			dict[jen.Lit(k)] = renderValue(e)
		}
		return jen.Qual(RuntimePackage, "Fields").Values(dict)
	default: // VEmpty
		return jen.Nil()
	}
}
