package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/parser"
	"github.com/oneiron-dev/helixql/internal/schema"
)

func build(t *testing.T, src string) (*schema.Table, *diag.Bag) {
	t.Helper()
	ast, parseBag := parser.ParseAll([]parser.File{{Name: "t.hx", Text: src}})
	require.False(t, parseBag.HasErrors(), "%v", parseBag.All())
	bag := &diag.Bag{}
	table := schema.NewBuilder(bag).Build(ast)
	return table, bag
}

func TestBuilderSeedsImplicitFields(t *testing.T) {
	table, bag := build(t, `N::User { name: String }`)
	assert.False(t, bag.HasErrors())
	fl := table.Versions[0].NodeFields["User"]
	require.Contains(t, fl, "id")
	require.Contains(t, fl, "label")
	require.Contains(t, fl, "name")
	assert.True(t, fl["id"].Implicit)
	assert.False(t, fl["name"].Implicit)
}

func TestBuilderRejectsReservedTypeName(t *testing.T) {
	_, bag := build(t, `N::Node { name: String }`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeReservedTypeName, bag.All()[0].Code)
}

func TestBuilderRejectsReservedFieldName(t *testing.T) {
	_, bag := build(t, `N::User { id: String }`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeReservedFieldName, bag.All()[0].Code)
}

func TestBuilderRejectsUndeclaredEdgeEndpoint(t *testing.T) {
	_, bag := build(t, `E::Follows { From: Ghost, To: Ghost }`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeUndeclaredType, bag.All()[0].Code)
}

func TestBuilderRejectsIdentifierFieldType(t *testing.T) {
	_, bag := build(t, `
N::User { name: String }
N::Post { author: User }
`)
	require.True(t, bag.HasErrors())
	foundInvalid := false
	for _, d := range bag.All() {
		if d.Code == diag.CodeInvalidFieldType {
			foundInvalid = true
		}
	}
	assert.True(t, foundInvalid)
}

func TestBuilderValidatesMigrationRemapping(t *testing.T) {
	table, bag := build(t, `
V1 { N::User { name: String } }
V2 { N::User { full_name: String } }
V1 => V2 {
  Item(User) => Item(User) {
    full_name: name
  }
}
`)
	assert.False(t, bag.HasErrors(), "%v", bag.All())
	assert.NotNil(t, table.Versions[1])
	assert.NotNil(t, table.Versions[2])
}

func TestBuilderFlagsMissingMigrationSourceField(t *testing.T) {
	_, bag := build(t, `
V1 { N::User { name: String } }
V2 { N::User { full_name: String } }
V1 => V2 {
  Item(User) => Item(User) {
    full_name: nickname
  }
}
`)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.CodeUnknownField, bag.All()[0].Code)
}
