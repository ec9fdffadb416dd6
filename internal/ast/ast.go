// Package ast defines the HelixQL abstract syntax tree produced by
// internal/parser, mirroring spec §3.2-§3.7. Nodes are value trees with no
// back-edges (design note in SPEC_FULL.md): a traversal that needs to refer
// to an enclosing scope (closures) does so by storing the captured name, not
// a pointer into the tree.
package ast

import (
	"github.com/google/uuid"

	"github.com/oneiron-dev/helixql/internal/diag"
)

// Source is the merged AST of every file compiled together: schemas indexed
// by version, migrations between versions, and the queries defined over
// them.
type Source struct {
	SchemasByVersion map[int]*Schema
	Migrations       []*Migration
	Queries          []*Query
}

// LatestSchema returns the schema with the highest version number, or nil
// if no schema was declared.
func (s *Source) LatestSchema() *Schema {
	var latest *Schema
	for v, sch := range s.SchemasByVersion {
		if latest == nil || v > latest.Version {
			latest = sch
		}
	}
	return latest
}

// Schema is the full set of node/edge/vector declarations for one version.
type Schema struct {
	Loc           diag.Loc
	Version       int
	VersionLoc    diag.Loc
	NodeSchemas   []*NodeSchema
	EdgeSchemas   []*EdgeSchema
	VectorSchemas []*VectorSchema
}

// NodeSchema declares `N::Name { fields }`.
type NodeSchema struct {
	Name    string
	NameLoc diag.Loc
	Fields  []*Field
	Loc     diag.Loc
	// DefID is a stable identity assigned at parse time (SPEC_FULL.md §3.5a),
	// used for diagnostic cross-referencing and as a compile-cache key
	// ingredient; it has no bearing on the generated code itself.
	DefID uuid.UUID
}

// EdgeSchema declares `E::Name { From: X, To: Y, Properties: {...} }`.
type EdgeSchema struct {
	Name       string
	NameLoc    diag.Loc
	From       string
	FromLoc    diag.Loc
	To         string
	ToLoc      diag.Loc
	Properties []*Field
	Unique     bool
	Loc        diag.Loc
	DefID      uuid.UUID
}

// VectorSchema declares `V::Name { fields }`.
type VectorSchema struct {
	Name    string
	NameLoc diag.Loc
	Fields  []*Field
	Loc     diag.Loc
	DefID   uuid.UUID
}

// Migration declares `V<from> => V<to> { item mappings }`.
type Migration struct {
	FromVersion    int
	FromVersionLoc diag.Loc
	ToVersion      int
	ToVersionLoc   diag.Loc
	Body           []*MigrationItemMapping
	Loc            diag.Loc
	DefID          uuid.UUID
}

// MigrationItemKind distinguishes which schema table a MigrationItem names.
type MigrationItemKind int

const (
	MigrationItemUnresolved MigrationItemKind = iota
	MigrationItemNode
	MigrationItemEdge
	MigrationItemVector
)

// MigrationItem names one schema item by kind, e.g. "Item(User)".
type MigrationItem struct {
	Kind MigrationItemKind
	Name string
}

// MigrationItemMapping is one `Item(src) => Item(dst) { property remappings }`.
type MigrationItemMapping struct {
	FromItem    MigrationItem
	FromItemLoc diag.Loc
	ToItem      MigrationItem
	ToItemLoc   diag.Loc
	Remappings  []*MigrationPropertyMapping
	Loc         diag.Loc
}

// MigrationPropertyMapping is one `prop: expr [AS Type] [OR default]` entry.
type MigrationPropertyMapping struct {
	PropertyName string
	PropertyLoc  diag.Loc
	Value        *FieldValue
	Cast         *FieldType // AS type, nil if absent
	Default      *DefaultValue
	Loc          diag.Loc
}

// FieldPrefix modifies how a field is indexed/required.
type FieldPrefix int

const (
	PrefixEmpty FieldPrefix = iota
	PrefixIndex
	PrefixUniqueIndex
	PrefixOptional
)

// IsIndexed reports whether the prefix requests a secondary index.
func (p FieldPrefix) IsIndexed() bool { return p == PrefixIndex || p == PrefixUniqueIndex }

// Field is one schema field declaration (spec §3.3).
type Field struct {
	Prefix    FieldPrefix
	Default   *DefaultValue
	Name      string
	FieldType FieldType
	Loc       diag.Loc
}

// FieldTypeKind enumerates the primitive and composite field type forms.
type FieldTypeKind int

const (
	TString FieldTypeKind = iota
	TF32
	TF64
	TI8
	TI16
	TI32
	TI64
	TU8
	TU16
	TU32
	TU64
	TU128
	TBoolean
	TUuid
	TDate
	TArray
	TObject
	TIdentifier
)

// FieldType is the source-level type of a field or parameter.
type FieldType struct {
	Kind    FieldTypeKind
	Elem    *FieldType        // Array element type, when Kind == TArray
	Object  map[string]*FieldType // Object field types, when Kind == TObject
	Name    string            // Identifier name, when Kind == TIdentifier
}

func (t FieldType) String() string {
	switch t.Kind {
	case TString:
		return "String"
	case TF32:
		return "F32"
	case TF64:
		return "F64"
	case TI8:
		return "I8"
	case TI16:
		return "I16"
	case TI32:
		return "I32"
	case TI64:
		return "I64"
	case TU8:
		return "U8"
	case TU16:
		return "U16"
	case TU32:
		return "U32"
	case TU64:
		return "U64"
	case TU128:
		return "U128"
	case TBoolean:
		return "Boolean"
	case TUuid:
		return "ID"
	case TDate:
		return "Date"
	case TArray:
		if t.Elem != nil {
			return "Array(" + t.Elem.String() + ")"
		}
		return "Array"
	case TObject:
		return "{...}"
	case TIdentifier:
		return t.Name
	default:
		return "Unknown"
	}
}

// DefaultValueKind enumerates the forms a schema field default can take.
type DefaultValueKind int

const (
	DefaultNow DefaultValueKind = iota
	DefaultString
	DefaultF64
	DefaultInt
	DefaultBoolean
	DefaultEmpty
)

// DefaultValue is a literal `= value` or `= NOW` attached to a field.
type DefaultValue struct {
	Kind DefaultValueKind
	Str  string
	Num  float64
	Bool bool
}
