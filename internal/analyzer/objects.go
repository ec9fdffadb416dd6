package analyzer

import (
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/schema"
	"github.com/oneiron-dev/helixql/internal/types"
)

// inferObjectStep builds the Object result type of a `::{...}` projection
// (spec §4.4 step 4, "Object selections"): every bare/aliased field must
// exist on cur unless the step spreads, nested traversals recurse against a
// scope where the enclosing item's own fields are reachable by name, and
// `...` copies every remaining field through untouched.
func (c *walkCtx) inferObjectStep(cur types.Type, obj *ast.Object) types.Type {
	if len(obj.Fields) == 0 && !obj.ShouldSpread {
		c.a.bag.Error(diag.CodeEmptyObject, obj.Loc, "object selection has no fields and does not spread")
	}
	fl := c.fieldLookupFor(cur)
	out := map[string]types.Type{}
	if obj.ShouldSpread {
		for name, fi := range fl {
			out[name] = types.From(fi.Type)
		}
	}
	itemScope := c.scope.Child()
	for name, fi := range fl {
		itemScope.Declare(name, types.New(types.From(fi.Type), true))
	}
	itemCtx := &walkCtx{a: c.a, scope: itemScope, aq: c.aq}

	for _, fa := range obj.Fields {
		out[fa.Key] = itemCtx.inferFieldValue(cur, fl, fa)
	}
	return types.Type{Kind: types.Object, Fields: out}
}

// inferFieldValue resolves the type a single object-step field evaluates to,
// validating bare/aliased references against the source item's field lookup.
func (c *walkCtx) inferFieldValue(cur types.Type, fl schema.FieldLookup, fa *ast.FieldAddition) types.Type {
	switch fa.Value.Kind {
	case ast.FieldValueIdentifier:
		if fi, ok := fl[fa.Value.Identifier]; ok {
			return types.From(fi.Type)
		}
		c.a.bag.Error(diag.CodeUnknownField, fa.Value.Loc, "\""+cur.String()+"\" has no field \""+fa.Value.Identifier+"\"")
		return types.Type{Kind: types.Unknown}
	case ast.FieldValueEmpty:
		// An entry with no value names a field of cur by its key alone, the
		// object-selection counterpart to a FOR loop's `{a, b}` binding. The
		// parser turns a bare `{name}` shorthand into a FieldValueIdentifier
		// (checked above, E201), not into this case.
		if fi, ok := fl[fa.Key]; ok {
			return types.From(fi.Type)
		}
		c.a.bag.Error(diag.CodeDestructureField2, fa.Loc, "\""+cur.String()+"\" has no field \""+fa.Key+"\"")
		return types.Type{Kind: types.Unknown}
	case ast.FieldValueTraversal:
		return c.inferTraversal(fa.Value.Traversal, cur)
	case ast.FieldValueExpression:
		return c.inferExpression(fa.Value.Expression)
	case ast.FieldValueLiteral:
		return literalType(fa.Value.Literal)
	case ast.FieldValueFields:
		fields := map[string]types.Type{}
		for _, sub := range fa.Value.Fields {
			fields[sub.Key] = c.inferFieldValue(cur, fl, sub)
		}
		return types.Type{Kind: types.Object, Fields: fields}
	default:
		return types.Type{Kind: types.Unknown}
	}
}

// inferExcludeStep removes the named fields from cur's schema-declared field
// set, the complement of an Object projection (spec §4.4 step 4, "Exclude").
func (c *walkCtx) inferExcludeStep(cur types.Type, ex *ast.Exclude) types.Type {
	fl := c.fieldLookupFor(cur)
	excluded := map[string]bool{}
	for _, f := range ex.Fields {
		if _, ok := fl[f.Name]; !ok {
			c.a.bag.Error(diag.CodeUnknownFieldAlt, f.Loc, "\""+f.Name+"\" has no field \""+f.Name+"\"")
			continue
		}
		excluded[f.Name] = true
	}
	out := map[string]types.Type{}
	for name, fi := range fl {
		if !excluded[name] {
			out[name] = types.From(fi.Type)
		}
	}
	return types.Type{Kind: types.Object, Fields: out}
}

// inferClosureStep binds the closure's identifier to cur's singular item
// type and evaluates its nested object literal in that scope (spec §4.4
// step 4, "Closure").
func (c *walkCtx) inferClosureStep(cur types.Type, cl *ast.Closure) types.Type {
	child := c.scope.Child()
	child.Declare(cl.Identifier, types.New(cur.Singular(), true))
	inner := &walkCtx{a: c.a, scope: child, aq: c.aq}
	return inner.inferObjectStep(cur, cl.Object)
}

// checkFieldAdditions validates a flat `{field: value, ...}` list (UPDATE/
// UPSERT/AddN/AddE/AddV bodies) against target's schema field lookup,
// reporting unknown fields and type-incompatible literal/identifier values.
func (c *walkCtx) checkFieldAdditions(target types.Type, fields []*ast.FieldAddition) {
	fl := c.fieldLookupFor(target)
	if fl == nil {
		return
	}
	for _, fa := range fields {
		fi, ok := fl[fa.Key]
		if !ok {
			c.a.bag.Error(diag.CodeUnknownField, fa.Loc, "\""+target.String()+"\" has no field \""+fa.Key+"\"")
			continue
		}
		if fa.Value == nil {
			continue
		}
		var got types.Type
		switch fa.Value.Kind {
		case ast.FieldValueLiteral:
			got = literalType(fa.Value.Literal)
		case ast.FieldValueIdentifier:
			info, ok := c.scope.Lookup(fa.Value.Identifier)
			if !ok {
				c.a.bag.Error(diag.CodeVarNotInScope, fa.Value.Loc, "\""+fa.Value.Identifier+"\" is not in scope")
				continue
			}
			got = info.Type
		default:
			continue // traversal/expression values are taken on faith at this layer
		}
		if !types.AssignableFrom(types.From(fi.Type), got) {
			c.a.bag.Error(diag.CodeInvalidFieldType, fa.Loc, "field \""+fa.Key+"\" expects "+types.From(fi.Type).String()+", got "+got.String())
		}
	}
}

func literalType(v ast.Value) types.Type {
	switch v.Kind {
	case ast.VString:
		return types.Type{Kind: types.Scalar, Scalar: types.ScalarString}
	case ast.VI64:
		return types.Type{Kind: types.Scalar, Scalar: types.ScalarI64}
	case ast.VF64:
		return types.Type{Kind: types.Scalar, Scalar: types.ScalarF64}
	case ast.VBoolean:
		return types.Type{Kind: types.Boolean}
	case ast.VArray:
		var elem types.Type
		if len(v.Array) > 0 {
			elem = literalType(v.Array[0])
		}
		return types.Type{Kind: types.Array, Elem: &elem}
	case ast.VObject:
		fields := make(map[string]types.Type, len(v.Object))
		for k, sub := range v.Object {
			fields[k] = literalType(sub)
		}
		return types.Type{Kind: types.Object, Fields: fields}
	default:
		return types.Type{Kind: types.Unknown}
	}
}
