package analyzer

import (
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/types"
)

// walkCtx carries the mutable state threaded through one query's statement
// walk: the analyzer (for schema/diagnostics access), the current scope,
// and the annotated query being built up.
type walkCtx struct {
	a     *Analyzer
	scope *types.Scope
	aq    *Query
}

// walkStatement handles one statement form (spec §4.4 step 3).
func (c *walkCtx) walkStatement(stmt *ast.Statement) {
	switch stmt.Kind {
	case ast.StmtAssignment:
		c.walkAssignment(stmt.Assignment)
	case ast.StmtDrop:
		c.walkDrop(stmt.Expr)
	case ast.StmtExpression:
		c.inferExpression(stmt.Expr)
	case ast.StmtForLoop:
		c.walkForLoop(stmt.ForLoop)
	}
}

func (c *walkCtx) walkAssignment(asn *ast.Assignment) {
	if c.scope.DeclaredHere(asn.Variable) {
		c.a.bag.Error(diag.CodeDuplicateVar, asn.NameLoc, "variable \""+asn.Variable+"\" is already declared")
	}
	ty := c.inferExpression(asn.Value)
	single := !ty.IsPlural() || isFirstCollected(asn.Value)
	info := types.New(ty, single)
	if asn.Value.Kind == ast.ExprTraversal {
		applyProjectionMetadata(&info, asn.Value.Traversal)
	}
	c.scope.Declare(asn.Variable, info)
	c.aq.VarTypes[asn.Variable] = info
}

// isFirstCollected reports whether a traversal's last step is ::FIRST,
// which narrows a plural result to a single item (spec §4.4 step 4, "First:
// flips should_collect to ToObj").
func isFirstCollected(expr *ast.Expression) bool {
	if expr.Kind != ast.ExprTraversal || expr.Traversal == nil || len(expr.Traversal.Steps) == 0 {
		return false
	}
	last := expr.Traversal.Steps[len(expr.Traversal.Steps)-1]
	return last.Kind == ast.StepFirst
}

func (c *walkCtx) walkDrop(expr *ast.Expression) {
	if expr == nil || expr.Kind != ast.ExprTraversal {
		if expr != nil {
			c.a.bag.Error(diag.CodeDropNonTraversal, expr.Loc, "DROP requires a traversal operand")
		}
		return
	}
	c.inferExpression(expr)
	c.aq.IsMutating = true
}

func (c *walkCtx) walkForLoop(fl *ast.ForLoop) {
	info, ok := c.scope.Lookup(fl.InVariable)
	if !ok {
		c.a.bag.Error(diag.CodeVarNotInScope, fl.InLoc, "\""+fl.InVariable+"\" is not in scope")
		return
	}
	if info.Type.Kind != types.Array && !info.Type.IsPlural() {
		c.a.bag.Error(diag.CodeNonIterable, fl.InLoc, "\""+fl.InVariable+"\" is not iterable")
		return
	}
	elem := elementType(info.Type)

	child := c.scope.Child()
	switch fl.Variable.Kind {
	case ast.ForVarIdentifier:
		child.Declare(fl.Variable.Name, types.New(elem, true))
	case ast.ForVarObjectAccess:
		c.a.bag.Error(diag.CodeObjectAccessUnsup, fl.Variable.Loc, "\"name.field\" loop variables are not supported")
		return
	case ast.ForVarDestructure:
		if elem.Kind != types.Object {
			c.a.bag.Error(diag.CodeDestructureNonObj, fl.Variable.Loc, "destructuring requires an array of objects")
			return
		}
		for _, f := range fl.Variable.Fields {
			ft, ok := elem.Fields[f.Name]
			if !ok {
				c.a.bag.Error(diag.CodeDestructureField, f.Loc, "field \""+f.Name+"\" not found in destructured element")
				continue
			}
			child.Declare(f.Name, types.New(ft, true))
		}
	}

	inner := &walkCtx{a: c.a, scope: child, aq: c.aq}
	for _, s := range fl.Statements {
		inner.walkStatement(s)
	}
}

// elementType unwraps Array(T)/Nodes/Edges/Vectors to its element type
// (spec §4.4 step 3, "compute the element type by unwrapping Array(T)").
func elementType(t types.Type) types.Type {
	if t.Kind == types.Array && t.Elem != nil {
		return *t.Elem
	}
	return t.Singular()
}

// analyzeReturn infers the type of one RETURN value and names it: an
// explicit `name:` alias, the bare identifier it refers to, or the fixed
// name "result". RETURN's Array/Object forms (spec §3.6) bundle several
// sub-values into one Object-typed result rather than emitting several
// ReturnInfo entries, matching how the generator emits one Go field per
// RETURN value, not per leaf.
func (c *walkCtx) analyzeReturn(rv *ast.ReturnExpr) ReturnInfo {
	switch rv.Kind {
	case ast.ReturnExpression:
		ty := c.inferExpression(rv.Expr)
		name := rv.Name
		if name == "" {
			if rv.Expr.Kind == ast.ExprIdentifier {
				name = rv.Expr.Identifier
			} else {
				name = "result"
			}
		}
		ri := ReturnInfo{Name: name, Type: ty, Loc: rv.Loc}
		if rv.Expr.Kind == ast.ExprTraversal {
			ri.Traversal = rv.Expr.Traversal
		}
		return ri
	case ast.ReturnArray:
		fields := make(map[string]types.Type, len(rv.Array))
		for i, sub := range rv.Array {
			fields[c.analyzeReturn(sub).Name] = c.peekReturnType(sub, i)
		}
		return ReturnInfo{Name: returnName(rv, "result"), Type: types.Type{Kind: types.Array, Elem: objectElem(fields)}, Loc: rv.Loc}
	case ast.ReturnObject:
		fields := make(map[string]types.Type, len(rv.Object))
		for key, sub := range rv.Object {
			fields[key] = c.peekReturnType(sub, 0)
		}
		return ReturnInfo{Name: returnName(rv, "result"), Type: types.Type{Kind: types.Object, Fields: fields}, Loc: rv.Loc}
	default: // ReturnEmpty
		return ReturnInfo{Name: returnName(rv, "result"), Type: types.Type{Kind: types.Unknown}, Loc: rv.Loc}
	}
}

// peekReturnType infers a nested ReturnExpr's type without re-deriving its
// name, for use inside an ReturnArray/ReturnObject wrapper.
func (c *walkCtx) peekReturnType(rv *ast.ReturnExpr, _ int) types.Type {
	return c.analyzeReturn(rv).Type
}

func returnName(rv *ast.ReturnExpr, fallback string) string {
	if rv.Name != "" {
		return rv.Name
	}
	return fallback
}

func objectElem(fields map[string]types.Type) *types.Type {
	t := types.Type{Kind: types.Object, Fields: fields}
	return &t
}

// applyProjectionMetadata copies a traversal's trailing Object/Exclude
// projection shape onto a variable's info so a later reference to the same
// variable (e.g. in RETURN) can reuse it without re-walking the traversal.
func applyProjectionMetadata(info *types.VariableInfo, tr *ast.Traversal) {
	for _, step := range tr.Steps {
		switch step.Kind {
		case ast.StepObject:
			info.HasObjectStep = true
			info.HasSpread = step.Object.ShouldSpread
			info.FieldNameMappings = map[string]string{}
			for _, fa := range step.Object.Fields {
				info.ObjectFields = append(info.ObjectFields, fa.Key)
				if fa.Value.Kind == ast.FieldValueIdentifier && fa.Value.Identifier != fa.Key {
					info.FieldNameMappings[fa.Key] = fa.Value.Identifier
				}
			}
		case ast.StepExclude:
			for _, f := range step.Exclude.Fields {
				info.ExcludedFields = append(info.ExcludedFields, f.Name)
			}
		}
	}
}
