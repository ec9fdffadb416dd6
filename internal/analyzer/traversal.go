package analyzer

import (
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/schema"
	"github.com/oneiron-dev/helixql/internal/types"
)

// inferExpression infers the type of an expression (spec §4.4 step 4),
// recursing into whichever of Expression's fields Kind selects.
func (c *walkCtx) inferExpression(e *ast.Expression) types.Type {
	if e == nil {
		return types.Type{Kind: types.Unknown}
	}
	switch e.Kind {
	case ast.ExprTraversal:
		return c.inferTraversal(e.Traversal, types.Type{Kind: types.Unknown})
	case ast.ExprIdentifier:
		info, ok := c.scope.Lookup(e.Identifier)
		if !ok {
			c.a.bag.Error(diag.CodeVarNotInScope, e.Loc, "\""+e.Identifier+"\" is not in scope")
			return types.Type{Kind: types.Unknown}
		}
		return info.Type
	case ast.ExprStringLiteral:
		return types.Type{Kind: types.Scalar, Scalar: types.ScalarString}
	case ast.ExprIntLiteral:
		return types.Type{Kind: types.Scalar, Scalar: types.ScalarI64}
	case ast.ExprFloatLiteral:
		return types.Type{Kind: types.Scalar, Scalar: types.ScalarF64}
	case ast.ExprBoolLiteral:
		return types.Type{Kind: types.Boolean}
	case ast.ExprArrayLiteral:
		var elem types.Type
		for i, sub := range e.Array {
			t := c.inferExpression(sub)
			if i == 0 {
				elem = t
			}
		}
		return types.Type{Kind: types.Array, Elem: &elem}
	case ast.ExprExists:
		c.inferExpression(e.Exists)
		return types.Type{Kind: types.Boolean}
	case ast.ExprAddNode:
		return c.inferAddNode(e.AddNode)
	case ast.ExprAddEdge:
		return c.inferAddEdge(e.AddEdge)
	case ast.ExprAddVector:
		return c.inferAddVector(e.AddVector)
	case ast.ExprNot:
		c.inferExpression(e.Unary)
		return types.Type{Kind: types.Boolean}
	case ast.ExprAnd, ast.ExprOr:
		for _, sub := range e.Many {
			c.inferExpression(sub)
		}
		return types.Type{Kind: types.Boolean}
	case ast.ExprSearchVector:
		c.checkVectorData(e.Search.Data)
		return types.Type{Kind: types.Vectors, Label: e.Search.VectorType}
	case ast.ExprBM25Search:
		return types.Type{Kind: types.Nodes, Label: e.BM25.TypeArg}
	case ast.ExprMathCall:
		for _, arg := range e.MathCall.Args {
			c.inferExpression(arg)
		}
		if e.MathCall.Function == ast.MathCount {
			return types.Type{Kind: types.Count}
		}
		return types.Type{Kind: types.Scalar, Scalar: types.ScalarF64}
	default: // ExprEmpty
		return types.Type{Kind: types.Unknown}
	}
}

// inferTraversal threads a type through a traversal's source step and each
// subsequent step (spec §4.4 step 4). anon is the current type a bare "_"
// start node refers to, used inside nested field-value traversals.
func (c *walkCtx) inferTraversal(tr *ast.Traversal, anon types.Type) types.Type {
	if tr == nil {
		return types.Type{Kind: types.Unknown}
	}
	cur := c.resolveStart(tr.Start, anon)
	for _, step := range tr.Steps {
		cur = c.applyStep(cur, step)
	}
	return cur
}

func (c *walkCtx) applyStep(cur types.Type, step *ast.Step) types.Type {
	switch step.Kind {
	case ast.StepOut:
		return c.entityTransition(cur, step.Label, step.Loc, false)
	case ast.StepIn:
		return c.entityTransition(cur, step.Label, step.Loc, true)
	case ast.StepOutE, ast.StepInE:
		return types.Type{Kind: types.Edges, Label: step.Label}
	case ast.StepFromN:
		return c.edgeEndpointAs(cur, step.Loc, true, types.Node)
	case ast.StepToN:
		return c.edgeEndpointAs(cur, step.Loc, false, types.Node)
	case ast.StepFromV:
		return c.edgeEndpointAs(cur, step.Loc, true, types.Vector)
	case ast.StepToV:
		return c.edgeEndpointAs(cur, step.Loc, false, types.Vector)
	case ast.StepWhere:
		c.inferWhere(cur, step.Where)
		return cur
	case ast.StepBooleanOp:
		c.inferBooleanOp(cur, step.BooleanOp)
		return cur
	case ast.StepRange:
		c.inferExpression(step.RangeLo)
		c.inferExpression(step.RangeHi)
		return cur
	case ast.StepOrderBy:
		c.inferWhere(cur, step.OrderBy.Expression)
		return cur
	case ast.StepCount:
		return types.Type{Kind: types.Count}
	case ast.StepDedup:
		return cur
	case ast.StepFirst:
		return cur.Singular()
	case ast.StepUpdate:
		c.checkFieldAdditions(cur, step.Update.Fields)
		c.aq.IsMutating = true
		return cur
	case ast.StepUpsert:
		c.checkFieldAdditions(cur, step.Upsert.Fields)
		c.aq.IsMutating = true
		return cur
	case ast.StepUpsertN:
		target := types.Type{Kind: types.Node, Label: step.UpsertN.NodeType}
		c.checkFieldAdditions(target, step.UpsertN.Fields)
		c.aq.IsMutating = true
		return target
	case ast.StepUpsertE:
		target := types.Type{Kind: types.Edge, Label: step.UpsertE.EdgeType}
		c.checkFieldAdditions(target, step.UpsertE.Fields)
		c.aq.IsMutating = true
		return target
	case ast.StepUpsertV:
		target := types.Type{Kind: types.Vector, Label: step.UpsertV.VectorType}
		c.checkFieldAdditions(target, step.UpsertV.Fields)
		c.checkVectorData(step.UpsertV.Data)
		c.aq.IsMutating = true
		return target
	case ast.StepObject:
		return c.inferObjectStep(cur, step.Object)
	case ast.StepExclude:
		return c.inferExcludeStep(cur, step.Exclude)
	case ast.StepClosure:
		return c.inferClosureStep(cur, step.Closure)
	case ast.StepAggregate:
		return types.Type{Kind: types.AggregateType, Aggregate: &types.AggregateInfo{Source: cur, Properties: step.Aggregate.Properties}}
	case ast.StepGroupBy:
		return types.Type{Kind: types.AggregateType, Aggregate: &types.AggregateInfo{Source: cur, Properties: step.GroupBy.Properties, IsGroupBy: true}}
	case ast.StepRerankRRF:
		if step.RerankRRF.K != nil {
			c.inferExpression(step.RerankRRF.K)
		}
		c.requireVector(cur, step.Loc)
		return cur
	case ast.StepRerankMMR:
		c.inferExpression(step.RerankMMR.Lambda)
		c.requireVector(cur, step.Loc)
		return cur
	case ast.StepShortestPath, ast.StepShortestPathBFS, ast.StepShortestPathDijkstra, ast.StepShortestPathAStar:
		c.inferShortestPath(step.ShortestPath)
		elem := types.Type{Kind: types.Object, Fields: map[string]types.Type{
			"from":  {Kind: types.Node},
			"to":    {Kind: types.Node},
			"edges": {Kind: types.Array, Elem: &types.Type{Kind: types.Edge}},
		}}
		return types.Type{Kind: types.Array, Elem: &elem}
	case ast.StepAddEdge:
		return c.inferAddEdge(step.AddEdge)
	default:
		return cur
	}
}

// entityTransition resolves an Out/In traversal step: cur must be a node,
// and the step's edge-type filter determines both which edge schema to
// consult and the far node's type.
func (c *walkCtx) entityTransition(cur types.Type, edgeLabel string, loc diag.Loc, wantFrom bool) types.Type {
	name := c.transitionEndpoint(edgeLabel, loc, wantFrom)
	return c.namedEndpointType(name)
}

// edgeEndpointAs resolves a FromN/ToN/FromV/ToV step: cur must be an edge,
// and the declared endpoint (From when wantFrom, else To) is returned typed
// as kind (Node or Vector), the way the step name itself picks the kind.
func (c *walkCtx) edgeEndpointAs(cur types.Type, loc diag.Loc, wantFrom bool, kind types.Kind) types.Type {
	name := c.transitionEndpoint(cur.Label, loc, wantFrom)
	return types.Type{Kind: kind, Label: name}
}

func (c *walkCtx) namedEndpointType(name string) types.Type {
	if c.a.schema == nil || name == "" {
		return types.Type{Kind: types.Nodes, Label: name}
	}
	if c.a.schema.KindOf(name) == schema.ItemVector {
		return types.Type{Kind: types.Vectors, Label: name}
	}
	return types.Type{Kind: types.Nodes, Label: name}
}

func (c *walkCtx) requireVector(cur types.Type, loc diag.Loc) {
	if cur.Kind != types.Vector && cur.Kind != types.Vectors {
		c.a.bag.Error(diag.CodeInvalidFieldType, loc, "rerank requires a vector collection, got "+cur.String())
	}
}

// inferWhere evaluates a WHERE/ORDER predicate expression with "_" bound to
// the current item so property comparisons (`_::{age}::GT(18)`) resolve.
func (c *walkCtx) inferWhere(cur types.Type, expr *ast.Expression) {
	child := c.scope.Child()
	child.Declare("_", types.New(cur.Singular(), true))
	inner := &walkCtx{a: c.a, scope: child, aq: c.aq}
	inner.inferExpression(expr)
}

func (c *walkCtx) inferBooleanOp(cur types.Type, op *ast.BooleanOp) {
	if op == nil {
		return
	}
	if op.Rhs != nil {
		c.inferExpression(op.Rhs)
	}
	for _, sub := range op.Many {
		c.inferExpression(sub)
	}
}

// inferShortestPath validates a SHORTEST_PATH* step (spec §4.4: "ShortestPath*:
// validate endpoints" and "AStar additionally requires a heuristic property
// name").
func (c *walkCtx) inferShortestPath(sp *ast.ShortestPath) {
	if sp == nil {
		return
	}
	c.checkPathEndpoint(sp.From)
	c.checkPathEndpoint(sp.To)
	if sp.Weight != nil && sp.Weight.Kind == ast.WeightExpression {
		c.inferExpression(sp.Weight.Expr)
	}
	if sp.Algorithm == ast.PathAStar && sp.HeuristicProperty == "" {
		c.a.bag.Error(diag.CodeMissingHeuristic, sp.Loc, "SHORTEST_PATH_ASTAR requires a heuristic property name")
	}
}

// checkPathEndpoint requires a shortest-path endpoint to be written as an
// identifier or an ID literal; a computed `::BY(...)` index lookup has no
// well-defined meaning as a path endpoint.
func (c *walkCtx) checkPathEndpoint(id *ast.IdType) {
	if id == nil {
		return
	}
	if id.Kind != ast.IdIdentifier && id.Kind != ast.IdLiteral {
		c.a.bag.Error(diag.CodePathEndpointForm, id.Loc, "shortest-path endpoints must be an identifier or an ID literal")
	}
}

func (c *walkCtx) checkVectorData(vd *ast.VectorData) {
	if vd == nil {
		return
	}
	switch vd.Kind {
	case ast.VectorDataEmbed:
		c.aq.HasEmbed = true
		if vd.Embed != nil && vd.Embed.IsIdentifier {
			if _, ok := c.scope.Lookup(vd.Embed.Identifier); !ok {
				c.a.bag.Error(diag.CodeVarNotInScope, vd.Loc, "\""+vd.Embed.Identifier+"\" is not in scope")
			}
		}
	case ast.VectorDataIdentifier:
		if _, ok := c.scope.Lookup(vd.Identifier); !ok {
			c.a.bag.Error(diag.CodeVarNotInScope, vd.Loc, "\""+vd.Identifier+"\" is not in scope")
		}
	}
}

func (c *walkCtx) inferAddNode(an *ast.AddNode) types.Type {
	if an == nil {
		return types.Type{Kind: types.Unknown}
	}
	target := types.Type{Kind: types.Node, Label: an.NodeType}
	c.checkValueTypeFields(target, an.Fields)
	c.aq.IsMutating = true
	return target
}

func (c *walkCtx) inferAddEdge(ae *ast.AddEdge) types.Type {
	if ae == nil {
		return types.Type{Kind: types.Unknown}
	}
	target := types.Type{Kind: types.Edge, Label: ae.EdgeType}
	c.checkValueTypeFields(target, ae.Fields)
	c.checkEdgeEndpoints(ae)
	c.aq.IsMutating = true
	return target
}

// checkEdgeEndpoints validates that AddE's From/To ids resolve to the
// edge's declared endpoint types (spec §4.4: "AddE additionally requires
// both From and To ids to resolve to the declared endpoint types").
func (c *walkCtx) checkEdgeEndpoints(ae *ast.AddEdge) {
	if c.a.schema == nil {
		return
	}
	ep, ok := c.a.schema.EdgeEndpoints[ae.EdgeType]
	if !ok {
		return // undeclared edge type already reported elsewhere
	}
	c.checkEdgeEndpointID(ae.EdgeType, ae.Connection.FromID, ep.From)
	c.checkEdgeEndpointID(ae.EdgeType, ae.Connection.ToID, ep.To)
}

// checkEdgeEndpointID checks one AddE endpoint id against the declared
// endpoint node type. Literal and by-index ids carry no static type and are
// left to the runtime to resolve and fail at execution time.
func (c *walkCtx) checkEdgeEndpointID(edgeType string, id *ast.IdType, wantLabel string) {
	if id == nil || id.Kind != ast.IdIdentifier {
		return
	}
	info, ok := c.scope.Lookup(id.Value)
	if !ok {
		return // an out-of-scope identifier here is not this check's concern
	}
	if info.Type.Kind != types.Node || info.Type.Label != wantLabel {
		c.a.bag.Error(diag.CodeEdgeEndpointType, id.Loc,
			"edge \""+edgeType+"\" endpoint \""+id.Value+"\" must be a \""+wantLabel+"\" node, got "+info.Type.String())
	}
}

func (c *walkCtx) inferAddVector(av *ast.AddVector) types.Type {
	if av == nil {
		return types.Type{Kind: types.Unknown}
	}
	target := types.Type{Kind: types.Vector, Label: av.VectorType}
	c.checkValueTypeFields(target, av.Fields)
	c.checkVectorData(av.Data)
	c.aq.IsMutating = true
	return target
}

// checkValueTypeFields validates an AddN/AddE/AddV field map (ast.ValueType
// values, distinct from FieldAddition/FieldValue used by UPDATE/UPSERT/
// object steps) against target's schema field lookup.
func (c *walkCtx) checkValueTypeFields(target types.Type, fields map[string]*ast.ValueType) {
	fl := c.fieldLookupFor(target)
	if fl == nil {
		return
	}
	for name, vt := range fields {
		fi, ok := fl[name]
		if !ok {
			c.a.bag.Error(diag.CodeUnknownField, vt.Loc, "\""+target.String()+"\" has no field \""+name+"\"")
			continue
		}
		var got types.Type
		switch vt.Kind {
		case ast.ValueLiteral:
			got = literalType(vt.Literal)
		case ast.ValueIdentifier:
			info, ok := c.scope.Lookup(vt.Identifier)
			if !ok {
				c.a.bag.Error(diag.CodeVarNotInScope, vt.Loc, "\""+vt.Identifier+"\" is not in scope")
				continue
			}
			got = info.Type
		default:
			continue
		}
		if !types.AssignableFrom(types.From(fi.Type), got) {
			c.a.bag.Error(diag.CodeInvalidFieldType, vt.Loc, "field \""+name+"\" expects "+types.From(fi.Type).String()+", got "+got.String())
		}
	}
}
