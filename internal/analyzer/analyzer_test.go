package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiron-dev/helixql/internal/analyzer"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/parser"
	"github.com/oneiron-dev/helixql/internal/schema"
)

func analyze(t *testing.T, src string) ([]*analyzer.Query, *diag.Bag) {
	t.Helper()
	ast, parseBag := parser.ParseAll([]parser.File{{Name: "t.hx", Text: src}})
	require.False(t, parseBag.HasErrors(), "%v", parseBag.All())
	bag := &diag.Bag{}
	table := schema.NewBuilder(bag).Build(ast)
	require.False(t, bag.HasErrors(), "%v", bag.All())
	an := analyzer.New(table.Latest(), bag)
	return an.AnalyzeAll(ast.Queries), bag
}

func TestAnalyzeSimpleTraversalReturn(t *testing.T) {
	queries, bag := analyze(t, `
N::User { name: String }
QUERY GetUsers() =>
  users <- N<User>
  RETURN users
`)
	assert.False(t, bag.HasErrors(), "%v", bag.All())
	require.Len(t, queries, 1)
	require.Len(t, queries[0].Returns, 1)
	assert.Equal(t, "users", queries[0].Returns[0].Name)
}

func TestAnalyzeFlattensObjectParameter(t *testing.T) {
	queries, bag := analyze(t, `
N::User { name: String }
QUERY MakeUser(info: {name: String}) =>
  RETURN "ok"
`)
	assert.False(t, bag.HasErrors(), "%v", bag.All())
	require.Len(t, queries, 1)
	require.Len(t, queries[0].Parameters, 1)
	assert.Equal(t, []string{"name"}, queries[0].Parameters[0].Path)
}

func TestAnalyzeDuplicateVariableReported(t *testing.T) {
	_, bag := analyze(t, `
N::User { name: String }
QUERY Dup() =>
  a <- N<User>
  a <- N<User>
  RETURN a
`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeDuplicateVar, bag.All()[0].Code)
}

func TestAnalyzeUnknownFieldInObjectStep(t *testing.T) {
	_, bag := analyze(t, `
N::User { name: String }
QUERY Bad() =>
  users <- N<User>::{nickname}
  RETURN users
`)
	require.True(t, bag.HasErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.CodeUnknownField {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeDropMarksMutating(t *testing.T) {
	queries, bag := analyze(t, `
N::User { name: String }
QUERY Remove(id: ID) =>
  DROP N<User>(id)
  RETURN "ok"
`)
	assert.False(t, bag.HasErrors(), "%v", bag.All())
	require.Len(t, queries, 1)
	assert.True(t, queries[0].IsMutating)
}

func TestAnalyzeMissingReturnWarns(t *testing.T) {
	_, bag := analyze(t, `
N::User { name: String }
QUERY NoReturn() =>
  users <- N<User>
`)
	require.True(t, bag.HasErrors() || len(bag.All()) > 0)
	assert.Equal(t, diag.CodeMissingReturn, bag.All()[0].Code)
}
