package types

import "github.com/oneiron-dev/helixql/internal/ast"

// From lifts a parsed field/parameter type to its internal representation
// (spec §4.3). Identifier types resolve to Node/Edge/Vector only once the
// caller (the analyzer, which has the schema table) has classified which
// table the name belongs to; here an unresolved Identifier becomes a Node
// reference by default and the analyzer corrects it against the schema.
func From(ft ast.FieldType) Type {
	switch ft.Kind {
	case ast.TString:
		return Type{Kind: Scalar, Scalar: ScalarString}
	case ast.TF32:
		return Type{Kind: Scalar, Scalar: ScalarF32}
	case ast.TF64:
		return Type{Kind: Scalar, Scalar: ScalarF64}
	case ast.TI8:
		return Type{Kind: Scalar, Scalar: ScalarI8}
	case ast.TI16:
		return Type{Kind: Scalar, Scalar: ScalarI16}
	case ast.TI32:
		return Type{Kind: Scalar, Scalar: ScalarI32}
	case ast.TI64:
		return Type{Kind: Scalar, Scalar: ScalarI64}
	case ast.TU8:
		return Type{Kind: Scalar, Scalar: ScalarU8}
	case ast.TU16:
		return Type{Kind: Scalar, Scalar: ScalarU16}
	case ast.TU32:
		return Type{Kind: Scalar, Scalar: ScalarU32}
	case ast.TU64:
		return Type{Kind: Scalar, Scalar: ScalarU64}
	case ast.TU128:
		return Type{Kind: Scalar, Scalar: ScalarU128}
	case ast.TBoolean:
		return Type{Kind: Boolean}
	case ast.TUuid:
		return Type{Kind: Scalar, Scalar: ScalarUuid}
	case ast.TDate:
		return Type{Kind: Scalar, Scalar: ScalarDate}
	case ast.TArray:
		var elem Type
		if ft.Elem != nil {
			elem = From(*ft.Elem)
		}
		return Type{Kind: Array, Elem: &elem}
	case ast.TObject:
		fields := make(map[string]Type, len(ft.Object))
		for name, sub := range ft.Object {
			fields[name] = From(*sub)
		}
		return Type{Kind: Object, Fields: fields}
	case ast.TIdentifier:
		return Type{Kind: Node, Label: ft.Name}
	default:
		return Type{Kind: Unknown}
	}
}

// AssignableFrom reports whether a value of type src may be used where dst
// is expected, used by the migration remapping cast check (spec §4.2
// expansion) and by AddN/Update/Upsert field validation (spec §4.4). Scalars
// are assignable to themselves and widen numerically within the same
// signedness family; any type is assignable to Unknown so a prior error does
// not cascade into unrelated diagnostics.
func AssignableFrom(dst, src Type) bool {
	if dst.Kind == Unknown || src.Kind == Unknown {
		return true
	}
	if dst.Kind != src.Kind {
		return false
	}
	switch dst.Kind {
	case Scalar:
		return dst.Scalar == src.Scalar || scalarFamily(dst.Scalar) == scalarFamily(src.Scalar)
	case Node, Nodes, Edge, Edges, Vector, Vectors:
		return dst.Label == "" || src.Label == "" || dst.Label == src.Label
	case Array:
		if dst.Elem == nil || src.Elem == nil {
			return true
		}
		return AssignableFrom(*dst.Elem, *src.Elem)
	default:
		return true
	}
}

// scalarFamily groups scalar kinds that numerically widen into one another
// so e.g. an I32 literal remains assignable to an I64 field.
func scalarFamily(k ScalarKind) int {
	switch k {
	case ScalarI8, ScalarI16, ScalarI32, ScalarI64:
		return 1
	case ScalarU8, ScalarU16, ScalarU32, ScalarU64, ScalarU128:
		return 2
	case ScalarF32, ScalarF64:
		return 3
	default:
		return 4 + int(k)
	}
}
