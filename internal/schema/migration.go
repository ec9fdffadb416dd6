package schema

import (
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/types"
)

// validateMigration checks the [EXPANSION] migration rules of SPEC_FULL.md
// §4.2: both versions must exist, each item must exist in its version, and
// each property remapping must reference a real source field or carry a
// default/cast. It also resolves MigrationItemUnresolved to the table the
// item's name was actually declared in, now that both versions are built.
func (b *Builder) validateMigration(table *Table, m *ast.Migration) {
	from, fromOK := table.Versions[m.FromVersion]
	if !fromOK {
		b.bag.Error(diag.CodeUndeclaredType, m.FromVersionLoc, "migration references undeclared schema version")
	}
	to, toOK := table.Versions[m.ToVersion]
	if !toOK {
		b.bag.Error(diag.CodeUndeclaredType, m.ToVersionLoc, "migration references undeclared schema version")
	}
	if !fromOK || !toOK {
		return
	}
	for _, item := range m.Body {
		fromKind, fromFields := b.resolveMigrationItem(from, item.FromItem.Name, item.FromItemLoc)
		toKind, toFields := b.resolveMigrationItem(to, item.ToItem.Name, item.ToItemLoc)
		item.FromItem.Kind = fromKind
		item.ToItem.Kind = toKind
		for _, remap := range item.Remappings {
			b.validateRemapping(remap, fromFields, toFields)
		}
	}
}

func (b *Builder) resolveMigrationItem(vt *VersionTable, name string, loc diag.Loc) (ast.MigrationItemKind, FieldLookup) {
	switch vt.KindOf(name) {
	case ItemNode:
		return ast.MigrationItemNode, vt.NodeFields[name]
	case ItemEdge:
		return ast.MigrationItemEdge, vt.EdgeFields[name]
	case ItemVector:
		return ast.MigrationItemVector, vt.VectorFields[name]
	default:
		b.bag.Error(diag.CodeUndeclaredType, loc, "migration item \""+name+"\" is not declared in this schema version")
		return ast.MigrationItemUnresolved, nil
	}
}

// validateRemapping checks that a remapping's value expression references a
// real source field (when it is a bare identifier), and that the mapping's
// effective type is assignable to the destination field unless a cast or
// default makes the gap explicit.
func (b *Builder) validateRemapping(remap *ast.MigrationPropertyMapping, fromFields, toFields FieldLookup) {
	dst, hasDst := toFields[remap.PropertyName]
	if !hasDst {
		b.bag.Error(diag.CodeUnknownField, remap.PropertyLoc, "migration target has no field \""+remap.PropertyName+"\"")
	}
	if remap.Value == nil || remap.Value.Kind != ast.FieldValueIdentifier {
		return // literal/expression remappings are taken as-is
	}
	src, hasSrc := fromFields[remap.Value.Identifier]
	if !hasSrc {
		if remap.Default == nil {
			b.bag.Error(diag.CodeUnknownField, remap.Value.Loc,
				"migration source has no field \""+remap.Value.Identifier+"\" (add OR <default> to supply one)")
		}
		return
	}
	if !hasDst || remap.Cast != nil {
		return
	}
	if !types.AssignableFrom(types.From(dst.Type), types.From(src.Type)) && remap.Default == nil {
		b.bag.Error(diag.CodeInvalidFieldType, remap.Loc,
			"field \""+remap.PropertyName+"\" changed type; add AS <Type> or OR <default>")
	}
}
