package schema

import (
	"strings"

	"github.com/google/uuid"

	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/types"
)

// Builder constructs a Table from a parsed Source, validating every
// declaration against spec §4.2 as it goes. Diagnostics accumulate into bag;
// building never stops early on a bad declaration.
type Builder struct {
	bag *diag.Bag
}

// NewBuilder returns a Builder that reports into bag.
func NewBuilder(bag *diag.Bag) *Builder {
	return &Builder{bag: bag}
}

// Build resolves every version's field lookups and validates migrations.
func (b *Builder) Build(src *ast.Source) *Table {
	table := &Table{Versions: map[int]*VersionTable{}}
	for v, s := range src.SchemasByVersion {
		table.Versions[v] = b.buildVersion(s)
	}
	for _, m := range src.Migrations {
		b.validateMigration(table, m)
	}
	return table
}

func (b *Builder) buildVersion(s *ast.Schema) *VersionTable {
	vt := &VersionTable{
		Version:       s.Version,
		NodeFields:    map[string]FieldLookup{},
		EdgeFields:    map[string]FieldLookup{},
		VectorFields:  map[string]FieldLookup{},
		EdgeEndpoints: map[string]EdgeEndpoints{},
	}
	declared := map[string]declaredItem{} // lowercased name -> first declaration site, for E107 across kinds

	for _, n := range s.NodeSchemas {
		b.checkItemName(n.Name, n.NameLoc, n.DefID, declared)
		vt.NodeFields[n.Name] = b.buildFieldLookup(seeded(nodeImplicitFields), n.Fields, "node")
	}
	for _, v := range s.VectorSchemas {
		b.checkItemName(v.Name, v.NameLoc, v.DefID, declared)
		vt.VectorFields[v.Name] = b.buildFieldLookup(seeded(vectorImplicitFields), v.Fields, "vector")
	}
	for _, e := range s.EdgeSchemas {
		b.checkItemName(e.Name, e.NameLoc, e.DefID, declared)
		vt.EdgeFields[e.Name] = b.buildFieldLookup(seeded(edgeImplicitFields), e.Properties, "edge")
		vt.EdgeEndpoints[e.Name] = EdgeEndpoints{From: e.From, To: e.To, Unique: e.Unique}
	}

	// E106: edge endpoints must reference a declared node or vector.
	for _, e := range s.EdgeSchemas {
		b.checkEndpoint(e.From, e.FromLoc, vt)
		b.checkEndpoint(e.To, e.ToLoc, vt)
	}
	return vt
}

func (b *Builder) checkEndpoint(name string, loc diag.Loc, vt *VersionTable) {
	if _, ok := vt.NodeFields[name]; ok {
		return
	}
	if _, ok := vt.VectorFields[name]; ok {
		return
	}
	b.bag.Error(diag.CodeUndeclaredType, loc, "undeclared edge endpoint type \""+name+"\"")
}

// declaredItem is one schema item's first-declaration site, kept for both
// E107 reporting and DefID cross-referencing (SPEC_FULL.md §3.5a).
type declaredItem struct {
	Loc   diag.Loc
	DefID uuid.UUID
}

func (b *Builder) checkItemName(name string, loc diag.Loc, defID uuid.UUID, declared map[string]declaredItem) {
	if types.IsReservedTypeName(name) {
		b.bag.Error(diag.CodeReservedTypeName, loc, "\""+name+"\" is a reserved type name")
	}
	key := strings.ToLower(name)
	if first, ok := declared[key]; ok {
		b.bag.Push(diag.New(diag.CodeDuplicateDef, loc, "\""+name+"\" is already declared in this schema version").
			WithRelatedDefID(first.DefID))
		return
	}
	declared[key] = declaredItem{Loc: loc, DefID: defID}
}

// buildFieldLookup seeds the implicit fields for kind, then overlays and
// validates the declared fields.
func (b *Builder) buildFieldLookup(fl FieldLookup, fields []*ast.Field, kind string) FieldLookup {
	seen := map[string]diag.Loc{}
	for name := range fl {
		seen[name] = diag.Loc{}
	}
	for _, f := range fields {
		key := strings.ToLower(f.Name)
		if existing, ok := fl[key]; ok && existing.Implicit {
			b.bag.Error(diag.CodeReservedFieldName, f.Loc, "\""+f.Name+"\" is a reserved "+kind+" field name")
		}
		if _, ok := seen[key]; ok {
			b.bag.Error(diag.CodeDuplicateField, f.Loc, "duplicate field \""+f.Name+"\"")
		}
		seen[key] = f.Loc
		b.checkFieldType(f.FieldType, f.Loc)
		fl[f.Name] = FieldInfo{Name: f.Name, Type: f.FieldType, Prefix: f.Prefix, Default: f.Default}
	}
	return fl
}

// checkFieldType enforces E209: Identifier and Object are not permitted in
// schema field positions; Array(T) recurses into its element type.
func (b *Builder) checkFieldType(ft ast.FieldType, loc diag.Loc) {
	switch ft.Kind {
	case ast.TIdentifier, ast.TObject:
		b.bag.Error(diag.CodeInvalidFieldType, loc, "type \""+ft.String()+"\" is not permitted in a schema field position")
	case ast.TArray:
		if ft.Elem != nil {
			b.checkFieldType(*ft.Elem, loc)
		}
	}
}
