// Package shape turns an analyzer-inferred type into the flat field list
// the code generator renders as a Go struct (spec §4.5), grounded on
// `original_source/helix-db/src/helixc/generator/return_values.rs`'s
// `build_return_fields`.
package shape

import (
	"github.com/go-openapi/inflect"

	"github.com/oneiron-dev/helixql/internal/types"
)

// FieldKind enumerates the Go shape a return field takes.
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindBoolean
	KindCount
	KindStruct   // a nested Object: one Go struct per projection
	KindSlice    // a plural graph-entity type or Array(T)
	KindAggregate
)

// Field is one emitted struct field: a Go identifier, its HelixQL-inferred
// type, and (for KindStruct/KindSlice/KindAggregate) the nested fields that
// make up its element type.
type Field struct {
	Name    string // Go field name (exported, CamelCase)
	Source  string // original HelixQL field/alias name
	Kind    FieldKind
	Scalar  types.ScalarKind // KindScalar
	Label   string           // schema item name, for doc comments
	Nested  []Field          // KindStruct / KindSlice element / KindAggregate
	Aggregate *AggregateShape
}

// AggregateShape mirrors the `{key, <group properties>, count, items?}`
// struct an ::AGGREGATE/::GROUP_BY step returns (spec §4.5, the "Aggregate
// special case").
type AggregateShape struct {
	Properties []string
	IsCount    bool
	Items      []Field // set when the aggregate source also needs its own shape
}

var ruleset = inflect.NewDefaultRuleset()

// Build recursively derives the field list for t, the way
// build_return_fields walks a HelixQL type into Rust struct fields. prefix
// names the enclosing field; when t is itself an aggregate, prefix becomes
// the returned field's Source and the base of its Go name.
func Build(t types.Type, prefix string) []Field {
	switch t.Kind {
	case types.Object:
		return buildObjectFields(t)
	case types.AggregateType:
		return []Field{buildAggregateField(t, prefix)}
	case types.Array:
		if t.Elem == nil {
			return nil
		}
		return Build(*t.Elem, prefix)
	case types.Node, types.Nodes, types.Edge, types.Edges, types.Vector, types.Vectors:
		// An un-projected entity reference carries no further shape here;
		// the generator renders it as the schema-declared struct by label.
		return nil
	default:
		return nil
	}
}

func buildObjectFields(t types.Type) []Field {
	fields := make([]Field, 0, len(t.Fields))
	for name, ft := range t.Fields {
		fields = append(fields, fieldFor(name, ft))
	}
	return fields
}

func fieldFor(name string, t types.Type) Field {
	goName := ruleset.Camelize(name)
	switch t.Kind {
	case types.Scalar:
		return Field{Name: goName, Source: name, Kind: KindScalar, Scalar: t.Scalar}
	case types.Boolean:
		return Field{Name: goName, Source: name, Kind: KindBoolean}
	case types.Count:
		return Field{Name: goName, Source: name, Kind: KindCount}
	case types.Object:
		return Field{Name: goName, Source: name, Kind: KindStruct, Nested: buildObjectFields(t)}
	case types.Array:
		nested := Build(t, name)
		return Field{Name: ruleset.Pluralize(goName), Source: name, Kind: KindSlice, Nested: nested}
	case types.Node, types.Edge, types.Vector:
		return Field{Name: goName, Source: name, Kind: KindStruct, Label: t.Label}
	case types.Nodes, types.Edges, types.Vectors:
		return Field{Name: ruleset.Pluralize(goName), Source: name, Kind: KindSlice, Label: t.Label}
	case types.AggregateType:
		return buildAggregateField(t, name)
	default:
		return Field{Name: goName, Source: name, Kind: KindScalar, Scalar: types.ScalarString}
	}
}

// buildAggregateField renders the special `{key, <properties...>, count,
// items?}` shape of an ::AGGREGATE/::GROUP_BY step's result (spec §4.5): a
// grouping key per property plus an int32 count, and — when the source
// itself still carries further projectable fields — a nested `<Name>Items`
// slice holding the grouped elements.
func buildAggregateField(t types.Type, name string) Field {
	agg := t.Aggregate
	if agg == nil {
		return Field{Name: ruleset.Camelize(name), Source: name, Kind: KindAggregate}
	}
	shape := &AggregateShape{Properties: agg.Properties, IsCount: agg.IsGroupBy || agg.IsCount}
	if items := Build(agg.Source, name); len(items) > 0 {
		shape.Items = items
	}
	return Field{
		Name:      ruleset.Pluralize(ruleset.Camelize(name)),
		Source:    name,
		Kind:      KindAggregate,
		Aggregate: shape,
	}
}

// ItemsStructName returns the nested aggregate-items struct name for a field
// named fieldName, e.g. "Posts" -> "PostsItems".
func ItemsStructName(fieldName string) string {
	return ruleset.Camelize(fieldName) + "Items"
}
