package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/parser"
)

func TestParseNodeAndEdgeSchema(t *testing.T) {
	src := `
N::User { INDEX email: String, name: String, age: I32 = 0 }
E::Follows { From: User, To: User, Properties: { since: Date = NOW } }
`
	src0, bag := parser.ParseAll([]parser.File{{Name: "t.hx", Text: src}})
	require.False(t, bag.HasErrors(), "%v", bag.All())

	s := src0.SchemasByVersion[0]
	require.NotNil(t, s)
	require.Len(t, s.NodeSchemas, 1)
	assert.Equal(t, "User", s.NodeSchemas[0].Name)
	require.Len(t, s.NodeSchemas[0].Fields, 3)
	assert.Equal(t, ast.PrefixIndex, s.NodeSchemas[0].Fields[0].Prefix)

	require.Len(t, s.EdgeSchemas, 1)
	e := s.EdgeSchemas[0]
	assert.Equal(t, "User", e.From)
	assert.Equal(t, "User", e.To)
	require.Len(t, e.Properties, 1)
	require.NotNil(t, e.Properties[0].Default)
	assert.Equal(t, ast.DefaultNow, e.Properties[0].Default.Kind)
}

func TestParseMigrationLeavesItemKindUnresolved(t *testing.T) {
	src := `
V1 { N::User { name: String } }
V2 { N::User { full_name: String } }
V1 => V2 {
  Item(User) => Item(User) {
    full_name: name OR "unknown"
  }
}
`
	src0, bag := parser.ParseAll([]parser.File{{Name: "t.hx", Text: src}})
	require.False(t, bag.HasErrors(), "%v", bag.All())
	require.Len(t, src0.Migrations, 1)
	m := src0.Migrations[0]
	assert.Equal(t, 1, m.FromVersion)
	assert.Equal(t, 2, m.ToVersion)
	require.Len(t, m.Body, 1)
	assert.Equal(t, ast.MigrationItemUnresolved, m.Body[0].FromItem.Kind)
	require.Len(t, m.Body[0].Remappings, 1)
	assert.Equal(t, "full_name", m.Body[0].Remappings[0].PropertyName)
	require.NotNil(t, m.Body[0].Remappings[0].Default)
}

func TestParseQueryWithTraversalAndReturn(t *testing.T) {
	src := `
QUERY getAdults(minAge: I32) =>
  adults <- N<User>::WHERE(_::GTE(minAge))::{name, age}
  RETURN adults
`
	src0, bag := parser.ParseAll([]parser.File{{Name: "t.hx", Text: src}})
	require.False(t, bag.HasErrors(), "%v", bag.All())
	require.Len(t, src0.Queries, 1)
	q := src0.Queries[0]
	assert.Equal(t, "getAdults", q.Name)
	require.Len(t, q.Parameters, 1)
	assert.Equal(t, "minAge", q.Parameters[0].Name)

	require.Len(t, q.Statements, 1)
	assign := q.Statements[0].Assignment
	require.NotNil(t, assign)
	tr := assign.Value.Traversal
	require.NotNil(t, tr)
	assert.Equal(t, ast.StartNode_, tr.Start.Kind)
	require.Len(t, tr.Steps, 2)
	assert.Equal(t, ast.StepWhere, tr.Steps[0].Kind)
	assert.Equal(t, ast.StepObject, tr.Steps[1].Kind)
	require.Len(t, tr.Steps[1].Object.Fields, 2)

	require.Len(t, q.ReturnValues, 1)
	assert.Equal(t, "adults", q.ReturnValues[0].Expr.Identifier)
}

func TestParseAddNodeAndEdgeExpression(t *testing.T) {
	src := `
QUERY makeFriend(a: ID, b: ID) =>
  u <- AddN<User>({name: "Ada"})
  AddE<Follows>({since: "2024-01-01"})::From(a)::To(b)
  RETURN u
`
	src0, bag := parser.ParseAll([]parser.File{{Name: "t.hx", Text: src}})
	require.False(t, bag.HasErrors(), "%v", bag.All())
	require.Len(t, src0.Queries, 1)
	q := src0.Queries[0]
	require.Len(t, q.Statements, 2)

	addN := q.Statements[0].Assignment.Value
	require.Equal(t, ast.ExprAddNode, addN.Kind)
	assert.Equal(t, "User", addN.AddNode.NodeType)

	addE := q.Statements[1].Expr
	require.Equal(t, ast.ExprAddEdge, addE.Kind)
	assert.Equal(t, "Follows", addE.AddEdge.EdgeType)
	require.NotNil(t, addE.AddEdge.Connection.FromID)
	require.NotNil(t, addE.AddEdge.Connection.ToID)
}

func TestParseErrorRecoversAtNextBoundary(t *testing.T) {
	src := `
N::Broken { !!! }
N::Fine { name: String }
`
	src0, bag := parser.ParseAll([]parser.File{{Name: "t.hx", Text: src}})
	assert.True(t, bag.HasErrors())
	s := src0.SchemasByVersion[0]
	require.NotNil(t, s)
	found := false
	for _, n := range s.NodeSchemas {
		if n.Name == "Fine" {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and still parse the schema after the broken one")
}
