// Package types holds the analyzer's internal type representation and the
// per-query variable scope built over it (spec §3.8-§3.10). It sits between
// internal/ast (source-level types) and internal/analyzer (which infers and
// checks against these types), the way the teacher's schema/field package
// sits between a raw Go struct tag and the compiled entity graph.
package types

import "regexp"

// Kind enumerates the internal type shapes the analyzer works with.
type Kind int

const (
	Unknown Kind = iota
	Scalar
	Boolean
	Count
	Node
	Nodes
	Edge
	Edges
	Vector
	Vectors
	Array
	Object
	Anonymous
	AggregateType
)

// ScalarKind mirrors ast.FieldTypeKind for the subset valid as a scalar
// value (no Array/Object/Identifier recursion at this level).
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarF32
	ScalarF64
	ScalarI8
	ScalarI16
	ScalarI32
	ScalarI64
	ScalarU8
	ScalarU16
	ScalarU32
	ScalarU64
	ScalarU128
	ScalarUuid
	ScalarDate
)

// Type is the analyzer's internal representation of a value's shape.
// Exactly the fields relevant to Kind are populated; Type is a value type
// so scope maps and the annotated IR can copy it freely without aliasing.
type Type struct {
	Kind  Kind
	Label string // Node/Nodes/Edge/Edges/Vector/Vectors: schema item name, "" if unbound

	Scalar ScalarKind // Kind == Scalar

	Elem *Type // Kind == Array or Anonymous

	Fields map[string]Type // Kind == Object

	Aggregate *AggregateInfo // Kind == AggregateType
}

// AggregateInfo describes the result of an ::AGGREGATE/::GROUP_BY step.
type AggregateInfo struct {
	Source     Type
	Properties []string
	IsGroupBy  bool
	IsCount    bool
}

// IsPlural reports whether a type represents a collection (Nodes/Edges/
// Vectors/Array), which determines ShouldCollect and loop-variable typing.
func (t Type) IsPlural() bool {
	switch t.Kind {
	case Nodes, Edges, Vectors, Array:
		return true
	default:
		return false
	}
}

// Singular returns the singular form of a plural graph-entity type, used by
// ::FIRST and single-id source steps. Non-plural or non-entity types are
// returned unchanged.
func (t Type) Singular() Type {
	switch t.Kind {
	case Nodes:
		return Type{Kind: Node, Label: t.Label}
	case Edges:
		return Type{Kind: Edge, Label: t.Label}
	case Vectors:
		return Type{Kind: Vector, Label: t.Label}
	default:
		return t
	}
}

// Plural returns the plural form of a singular graph-entity type.
func (t Type) Plural() Type {
	switch t.Kind {
	case Node:
		return Type{Kind: Nodes, Label: t.Label}
	case Edge:
		return Type{Kind: Edges, Label: t.Label}
	case Vector:
		return Type{Kind: Vectors, Label: t.Label}
	default:
		return t
	}
}

// String renders a type for diagnostic messages.
func (t Type) String() string {
	switch t.Kind {
	case Unknown:
		return "Unknown"
	case Scalar:
		return "Scalar"
	case Boolean:
		return "Boolean"
	case Count:
		return "Count"
	case Node:
		if t.Label != "" {
			return "Node(" + t.Label + ")"
		}
		return "Node"
	case Nodes:
		if t.Label != "" {
			return "Nodes(" + t.Label + ")"
		}
		return "Nodes"
	case Edge:
		if t.Label != "" {
			return "Edge(" + t.Label + ")"
		}
		return "Edge"
	case Edges:
		if t.Label != "" {
			return "Edges(" + t.Label + ")"
		}
		return "Edges"
	case Vector:
		if t.Label != "" {
			return "Vector(" + t.Label + ")"
		}
		return "Vector"
	case Vectors:
		if t.Label != "" {
			return "Vectors(" + t.Label + ")"
		}
		return "Vectors"
	case Array:
		if t.Elem != nil {
			return "Array(" + t.Elem.String() + ")"
		}
		return "Array"
	case Object:
		return "Object"
	case Anonymous:
		return "Anonymous"
	case AggregateType:
		return "Aggregate"
	default:
		return "Unknown"
	}
}

// identifierPattern enforces the language's identifier rule: a letter or
// underscore followed by letters, digits, or underscores (grounded on the
// teacher's schema/field identifier rule in field_test.go).
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedTypeNames cannot be used as a node/edge/vector name (spec §3.5,
// E110). Matched case-insensitively.
var reservedTypeNames = map[string]bool{
	"node": true, "edge": true, "hvector": true, "value": true,
	"grapherror": true, "vectorerror": true, "response": true,
	"handlerinput": true, "aggregate": true, "aggregateitem": true,
}

// IsValidIdentifier reports whether name is a syntactically valid HelixQL
// identifier. It does not check reserved-word collisions; callers combine
// this with IsReservedTypeName/IsReservedFieldName as appropriate for the
// position being validated.
func IsValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// IsReservedTypeName reports whether name collides with a reserved runtime
// type name (E110), case-insensitively.
func IsReservedTypeName(name string) bool {
	return reservedTypeNames[lower(name)]
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
