package codegen

import (
	"github.com/dave/jennifer/jen"

	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/types"
)

// goFieldType renders a schema-level field type as the Go type the emitted
// struct field carries (spec §4.6, "Schema structs": "one plain struct per
// node/edge/vector with typed fields").
func goFieldType(ft ast.FieldType) jen.Code {
	switch ft.Kind {
	case ast.TString:
		return jen.String()
	case ast.TF32:
		return jen.Float32()
	case ast.TF64:
		return jen.Float64()
	case ast.TI8:
		return jen.Int8()
	case ast.TI16:
		return jen.Int16()
	case ast.TI32:
		return jen.Int32()
	case ast.TI64:
		return jen.Int64()
	case ast.TU8:
		return jen.Uint8()
	case ast.TU16:
		return jen.Uint16()
	case ast.TU32:
		return jen.Uint32()
	case ast.TU64:
		return jen.Uint64()
	case ast.TU128:
		return jen.Op("*").Qual("math/big", "Int")
	case ast.TBoolean:
		return jen.Bool()
	case ast.TUuid:
		return jen.Qual("github.com/google/uuid", "UUID")
	case ast.TDate:
		return jen.Qual("time", "Time")
	case ast.TArray:
		if ft.Elem == nil {
			return jen.Index().Interface()
		}
		return jen.Index().Add(goFieldType(*ft.Elem))
	default:
		return jen.Interface()
	}
}

// goScalarType renders an internal-types scalar kind, used by the return-
// shape renderer which works from analyzer-inferred types rather than raw
// ast.FieldType.
func goScalarType(k types.ScalarKind) jen.Code {
	switch k {
	case types.ScalarString:
		return jen.String()
	case types.ScalarF32:
		return jen.Float32()
	case types.ScalarF64:
		return jen.Float64()
	case types.ScalarI8:
		return jen.Int8()
	case types.ScalarI16:
		return jen.Int16()
	case types.ScalarI32:
		return jen.Int32()
	case types.ScalarI64:
		return jen.Int64()
	case types.ScalarU8:
		return jen.Uint8()
	case types.ScalarU16:
		return jen.Uint16()
	case types.ScalarU32:
		return jen.Uint32()
	case types.ScalarU64:
		return jen.Uint64()
	case types.ScalarU128:
		return jen.Op("*").Qual("math/big", "Int")
	case types.ScalarUuid:
		return jen.Qual("github.com/google/uuid", "UUID")
	case types.ScalarDate:
		return jen.Qual("time", "Time")
	default:
		return jen.Interface()
	}
}

// exportedName upper-cases the first byte of a schema/field identifier to
// make it an exported Go identifier, the way every generated struct and
// field name in this package is derived.
func exportedName(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
