// Package schema builds per-version field lookups from a parsed
// internal/ast.Source and validates schema declarations (spec §4.2),
// grounded on the teacher's schema/edge descriptor-building pattern:
// build a lookup, collect errors, never abort early.
package schema

import "github.com/oneiron-dev/helixql/internal/ast"

// FieldInfo is one resolved field of a node/edge/vector, implicit or
// explicit.
type FieldInfo struct {
	Name     string
	Type     ast.FieldType
	Prefix   ast.FieldPrefix
	Default  *ast.DefaultValue
	Implicit bool
}

// FieldLookup is the resolved field set of one schema item, keyed by field
// name.
type FieldLookup map[string]FieldInfo

// EdgeEndpoints records an edge's declared From/To item names and whether
// it is unique, used by the analyzer's Out/In/OutE/InE transitions.
type EdgeEndpoints struct {
	From, To string
	Unique   bool
}

// VersionTable is the fully-resolved schema for one version number.
type VersionTable struct {
	Version       int
	NodeFields    map[string]FieldLookup
	EdgeFields    map[string]FieldLookup
	VectorFields  map[string]FieldLookup
	EdgeEndpoints map[string]EdgeEndpoints
}

// ItemKind classifies which of the three tables a name belongs to.
type ItemKind int

const (
	ItemUnknown ItemKind = iota
	ItemNode
	ItemEdge
	ItemVector
)

// KindOf reports which table name belongs to in this version, if any.
func (v *VersionTable) KindOf(name string) ItemKind {
	if _, ok := v.NodeFields[name]; ok {
		return ItemNode
	}
	if _, ok := v.EdgeFields[name]; ok {
		return ItemEdge
	}
	if _, ok := v.VectorFields[name]; ok {
		return ItemVector
	}
	return ItemUnknown
}

// Table is the full schema set across every declared version.
type Table struct {
	Versions map[int]*VersionTable
}

// Latest returns the highest-numbered version's table, or nil if no schema
// was declared at all.
func (t *Table) Latest() *VersionTable {
	var best *VersionTable
	for v, vt := range t.Versions {
		if best == nil || v > best.Version {
			best = vt
		}
	}
	return best
}

var nodeImplicitFields = []FieldInfo{
	{Name: "id", Type: ast.FieldType{Kind: ast.TUuid}, Implicit: true},
	{Name: "label", Type: ast.FieldType{Kind: ast.TString}, Implicit: true},
}

var edgeImplicitFields = []FieldInfo{
	{Name: "id", Type: ast.FieldType{Kind: ast.TUuid}, Implicit: true},
	{Name: "label", Type: ast.FieldType{Kind: ast.TString}, Implicit: true},
	{Name: "from_node", Type: ast.FieldType{Kind: ast.TUuid}, Implicit: true},
	{Name: "to_node", Type: ast.FieldType{Kind: ast.TUuid}, Implicit: true},
}

var vectorImplicitFields = []FieldInfo{
	{Name: "id", Type: ast.FieldType{Kind: ast.TUuid}, Implicit: true},
	{Name: "label", Type: ast.FieldType{Kind: ast.TString}, Implicit: true},
	{Name: "data", Type: ast.FieldType{Kind: ast.TArray, Elem: &ast.FieldType{Kind: ast.TF64}}, Implicit: true},
	{Name: "score", Type: ast.FieldType{Kind: ast.TF64}, Implicit: true},
}

func seeded(implicit []FieldInfo) FieldLookup {
	fl := make(FieldLookup, len(implicit))
	for _, f := range implicit {
		fl[f.Name] = f
	}
	return fl
}
