package shape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiron-dev/helixql/internal/shape"
	"github.com/oneiron-dev/helixql/internal/types"
)

func TestBuildScalarAndBooleanFields(t *testing.T) {
	obj := types.Type{Kind: types.Object, Fields: map[string]types.Type{
		"name":   {Kind: types.Scalar, Scalar: types.ScalarString},
		"active": {Kind: types.Boolean},
	}}
	fields := shape.Build(obj, "user")
	require.Len(t, fields, 2)
	byName := map[string]shape.Field{}
	for _, f := range fields {
		byName[f.Source] = f
	}
	assert.Equal(t, shape.KindScalar, byName["name"].Kind)
	assert.Equal(t, "Name", byName["name"].Name)
	assert.Equal(t, shape.KindBoolean, byName["active"].Kind)
}

func TestBuildPluralEntityBecomesSlice(t *testing.T) {
	obj := types.Type{Kind: types.Object, Fields: map[string]types.Type{
		"posts": {Kind: types.Nodes, Label: "Post"},
	}}
	fields := shape.Build(obj, "user")
	require.Len(t, fields, 1)
	assert.Equal(t, shape.KindSlice, fields[0].Kind)
	assert.Equal(t, "Post", fields[0].Label)
}

func TestBuildAggregateShape(t *testing.T) {
	agg := types.Type{
		Kind: types.AggregateType,
		Aggregate: &types.AggregateInfo{
			Source:     types.Type{Kind: types.Node, Label: "User"},
			Properties: []string{"country"},
			IsGroupBy:  true,
		},
	}
	fields := shape.Build(agg, "by_country")
	require.Len(t, fields, 1)
	require.NotNil(t, fields[0].Aggregate)
	assert.Equal(t, []string{"country"}, fields[0].Aggregate.Properties)
	assert.True(t, fields[0].Aggregate.IsCount)
}

func TestItemsStructName(t *testing.T) {
	assert.Equal(t, "PostsItems", shape.ItemsStructName("posts"))
}
