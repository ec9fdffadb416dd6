package analyzer

import (
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/schema"
	"github.com/oneiron-dev/helixql/internal/types"
)

// resolveStart infers the type produced by a traversal's source step
// (spec §4.4 step 4, "Source steps"): N/E/V by id/index/type against the
// schema table, a bare identifier against scope, or the anonymous "_"
// placeholder that threads the enclosing traversal's current type through.
func (c *walkCtx) resolveStart(start *ast.StartNode, anonType types.Type) types.Type {
	switch start.Kind {
	case ast.StartNode_:
		return c.resolveSchemaStart(start.TypeName, start.Loc, types.Node, types.Nodes, func(n string) bool {
			return c.a.schema != nil && c.a.schema.KindOf(n) == schema.ItemNode
		}, len(start.Ids) == 1)
	case ast.StartEdge:
		return c.resolveSchemaStart(start.TypeName, start.Loc, types.Edge, types.Edges, func(n string) bool {
			return c.a.schema != nil && c.a.schema.KindOf(n) == schema.ItemEdge
		}, len(start.Ids) == 1)
	case ast.StartVector, ast.StartSearchVector:
		return c.resolveSchemaStart(start.TypeName, start.Loc, types.Vector, types.Vectors, func(n string) bool {
			return c.a.schema != nil && c.a.schema.KindOf(n) == schema.ItemVector
		}, len(start.Ids) == 1)
	case ast.StartIdentifier:
		info, ok := c.scope.Lookup(start.Identifier)
		if !ok {
			c.a.bag.Error(diag.CodeVarNotInScope, start.Loc, "\""+start.Identifier+"\" is not in scope")
			return types.Type{Kind: types.Unknown}
		}
		return info.Type
	case ast.StartAnonymous:
		return anonType
	default:
		return types.Type{Kind: types.Unknown}
	}
}

func (c *walkCtx) resolveSchemaStart(typeName string, loc diag.Loc, single, plural types.Kind, known func(string) bool, oneID bool) types.Type {
	if typeName != "" && !known(typeName) {
		c.a.bag.Error(diag.CodeUndeclaredType, loc, "undeclared type \""+typeName+"\"")
	}
	if oneID {
		return types.Type{Kind: single, Label: typeName}
	}
	return types.Type{Kind: plural, Label: typeName}
}

// transitionEndpoint resolves the item type on the far side of the edge
// named edgeLabel (spec §4.4 step 4, "Traversal transitions"). wantFrom
// selects the From endpoint vs the To endpoint. It always returns an
// endpoint name; edge-producing steps (OutE/InE) do not call it.
func (c *walkCtx) transitionEndpoint(edgeLabel string, loc diag.Loc, wantFrom bool) string {
	if c.a.schema == nil || edgeLabel == "" {
		return ""
	}
	ep, ok := c.a.schema.EdgeEndpoints[edgeLabel]
	if !ok {
		c.a.bag.Error(diag.CodeUndeclaredType, loc, "undeclared edge type \""+edgeLabel+"\"")
		return ""
	}
	if wantFrom {
		return ep.From
	}
	return ep.To
}

// fieldLookupFor returns the field table for a Node/Edge/Vector type,
// looked up against the schema by its label.
func (c *walkCtx) fieldLookupFor(t types.Type) schema.FieldLookup {
	if c.a.schema == nil {
		return nil
	}
	switch t.Kind {
	case types.Node, types.Nodes:
		return c.a.schema.NodeFields[t.Label]
	case types.Edge, types.Edges:
		return c.a.schema.EdgeFields[t.Label]
	case types.Vector, types.Vectors:
		return c.a.schema.VectorFields[t.Label]
	default:
		return nil
	}
}
