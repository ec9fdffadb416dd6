package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/types"
)

func TestIsValidIdentifier(t *testing.T) {
	cases := map[string]bool{
		"name": true, "_private": true, "Age3": true,
		"3bad": false, "has-dash": false, "": false, "ok_1": true,
	}
	for in, want := range cases {
		assert.Equal(t, want, types.IsValidIdentifier(in), "identifier %q", in)
	}
}

func TestIsReservedTypeName(t *testing.T) {
	assert.True(t, types.IsReservedTypeName("Node"))
	assert.True(t, types.IsReservedTypeName("response"))
	assert.False(t, types.IsReservedTypeName("User"))
}

func TestFromLiftsArrayAndObject(t *testing.T) {
	arr := ast.FieldType{Kind: ast.TArray, Elem: &ast.FieldType{Kind: ast.TI32}}
	got := types.From(arr)
	assert.Equal(t, types.Array, got.Kind)
	assert.Equal(t, types.Scalar, got.Elem.Kind)
	assert.Equal(t, types.ScalarI32, got.Elem.Scalar)
}

func TestAssignableFromWidensNumericFamily(t *testing.T) {
	i32 := types.Type{Kind: types.Scalar, Scalar: types.ScalarI32}
	i64 := types.Type{Kind: types.Scalar, Scalar: types.ScalarI64}
	str := types.Type{Kind: types.Scalar, Scalar: types.ScalarString}
	assert.True(t, types.AssignableFrom(i64, i32))
	assert.False(t, types.AssignableFrom(i64, str))
}

func TestScopeLookupWalksParent(t *testing.T) {
	root := types.NewScope()
	root.Declare("a", types.New(types.Type{Kind: types.Boolean}, true))
	child := root.Child()
	_, ok := child.Lookup("a")
	assert.True(t, ok)
	assert.False(t, child.DeclaredHere("a"))
	_, ok = child.Lookup("missing")
	assert.False(t, ok)
}
