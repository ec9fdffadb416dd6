package parser

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/token"
)

// parseTopLevelNode parses a bare `N::Name { ... }` into the version-0
// (unversioned) schema.
func (p *parser) parseTopLevelNode() {
	n := p.parseNodeSchema()
	s := p.schemaFor(0, n.Loc)
	s.NodeSchemas = append(s.NodeSchemas, n)
}

func (p *parser) parseTopLevelEdge() {
	e := p.parseEdgeSchema()
	s := p.schemaFor(0, e.Loc)
	s.EdgeSchemas = append(s.EdgeSchemas, e)
}

func (p *parser) parseTopLevelVector() {
	v := p.parseVectorSchema()
	s := p.schemaFor(0, v.Loc)
	s.VectorSchemas = append(s.VectorSchemas, v)
}

// parseVersionBlockOrMigration handles `V<n> { ... }` (a versioned schema
// block) and `V<from> => V<to> { ... }` (a migration).
func (p *parser) parseVersionBlockOrMigration() {
	start := p.cur().Loc
	p.advance() // "V"
	fromVerTok, _ := p.expect(token.Int)
	fromVer, _ := strconv.Atoi(fromVerTok.Lit)

	if p.at(token.Arrow) {
		p.advance()
		p.advance() // "V"
		toVerTok, _ := p.expect(token.Int)
		toVer, _ := strconv.Atoi(toVerTok.Lit)
		m := p.parseMigrationBody(fromVer, fromVerTok.Loc, toVer, toVerTok.Loc, start)
		p.src.Migrations = append(p.src.Migrations, m)
		return
	}

	if _, ok := p.expect(token.LBrace); !ok {
		p.recoverToBoundary()
		return
	}
	s := p.schemaFor(fromVer, start)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch {
		case p.at(token.KwN):
			s.NodeSchemas = append(s.NodeSchemas, p.parseNodeSchema())
		case p.at(token.KwE):
			s.EdgeSchemas = append(s.EdgeSchemas, p.parseEdgeSchema())
		case p.at(token.KwV):
			s.VectorSchemas = append(s.VectorSchemas, p.parseVectorSchema())
		default:
			p.errorf(p.cur().Loc, "expected N::/E::/V:: inside versioned schema block")
			p.recoverToBoundary()
			return
		}
	}
	p.expect(token.RBrace)
	s.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
}

func (p *parser) parseNodeSchema() *ast.NodeSchema {
	start := p.cur().Loc
	p.advance() // N
	p.expect(token.DblColon)
	nameTok, _ := p.expect(token.Ident)
	n := &ast.NodeSchema{Name: nameTok.Lit, NameLoc: nameTok.Loc, DefID: uuid.New()}
	n.Fields = p.parseFieldBlock()
	n.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return n
}

func (p *parser) parseVectorSchema() *ast.VectorSchema {
	start := p.cur().Loc
	p.advance() // V
	p.expect(token.DblColon)
	nameTok, _ := p.expect(token.Ident)
	v := &ast.VectorSchema{Name: nameTok.Lit, NameLoc: nameTok.Loc, DefID: uuid.New()}
	v.Fields = p.parseFieldBlock()
	v.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return v
}

func (p *parser) parseEdgeSchema() *ast.EdgeSchema {
	start := p.cur().Loc
	p.advance() // E
	p.expect(token.DblColon)
	nameTok, _ := p.expect(token.Ident)
	e := &ast.EdgeSchema{Name: nameTok.Lit, NameLoc: nameTok.Loc, DefID: uuid.New()}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch {
		case p.at(token.KwFrom):
			p.advance()
			p.expect(token.Colon)
			t, _ := p.expect(token.Ident)
			e.From, e.FromLoc = t.Lit, t.Loc
		case p.at(token.KwTo):
			p.advance()
			p.expect(token.Colon)
			t, _ := p.expect(token.Ident)
			e.To, e.ToLoc = t.Lit, t.Loc
		case p.at(token.KwProperties):
			p.advance()
			p.expect(token.Colon)
			e.Properties = p.parseFieldBlock()
		case p.at(token.KwUnique):
			p.advance()
			e.Unique = true
		default:
			p.errorf(p.cur().Loc, "expected From/To/Properties in edge schema")
			p.recoverToBoundary()
			return e
		}
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RBrace)
	e.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return e
}

// parseFieldBlock parses `{ field, field, ... }`.
func (p *parser) parseFieldBlock() []*ast.Field {
	p.expect(token.LBrace)
	var fields []*ast.Field
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fields = append(fields, p.parseField())
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RBrace)
	return fields
}

func (p *parser) parseField() *ast.Field {
	start := p.cur().Loc
	f := &ast.Field{}
	switch {
	case p.at(token.KwIndex):
		p.advance()
		f.Prefix = ast.PrefixIndex
	case p.at(token.KwUnique):
		p.advance()
		p.expect(token.KwIndex)
		f.Prefix = ast.PrefixUniqueIndex
	case p.at(token.KwOptional):
		p.advance()
		f.Prefix = ast.PrefixOptional
	}
	nameTok, _ := p.expect(token.Ident)
	f.Name = nameTok.Lit
	p.expect(token.Colon)
	f.FieldType = p.parseFieldType()
	if p.at(token.Eq) {
		p.advance()
		f.Default = p.parseDefaultValue()
	}
	f.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return f
}

func (p *parser) parseFieldType() ast.FieldType {
	switch {
	case p.atIdent("Array"):
		p.advance()
		p.expect(token.Lt)
		inner := p.parseFieldType()
		p.expect(token.Gt)
		return ast.FieldType{Kind: ast.TArray, Elem: &inner}
	case p.at(token.Ident):
		name := p.cur().Lit
		p.advance()
		switch name {
		case "String":
			return ast.FieldType{Kind: ast.TString}
		case "F32":
			return ast.FieldType{Kind: ast.TF32}
		case "F64":
			return ast.FieldType{Kind: ast.TF64}
		case "I8":
			return ast.FieldType{Kind: ast.TI8}
		case "I16":
			return ast.FieldType{Kind: ast.TI16}
		case "I32":
			return ast.FieldType{Kind: ast.TI32}
		case "I64":
			return ast.FieldType{Kind: ast.TI64}
		case "U8":
			return ast.FieldType{Kind: ast.TU8}
		case "U16":
			return ast.FieldType{Kind: ast.TU16}
		case "U32":
			return ast.FieldType{Kind: ast.TU32}
		case "U64":
			return ast.FieldType{Kind: ast.TU64}
		case "U128":
			return ast.FieldType{Kind: ast.TU128}
		case "Boolean":
			return ast.FieldType{Kind: ast.TBoolean}
		case "ID":
			return ast.FieldType{Kind: ast.TUuid}
		case "Date":
			return ast.FieldType{Kind: ast.TDate}
		default:
			return ast.FieldType{Kind: ast.TIdentifier, Name: name}
		}
	default:
		p.errorf(p.cur().Loc, "expected a field type, found %s", p.cur().Kind)
		p.advance()
		return ast.FieldType{Kind: ast.TString}
	}
}

func (p *parser) parseDefaultValue() *ast.DefaultValue {
	switch {
	case p.at(token.KwNow):
		p.advance()
		return &ast.DefaultValue{Kind: ast.DefaultNow}
	case p.at(token.String):
		t := p.advance()
		return &ast.DefaultValue{Kind: ast.DefaultString, Str: t.Lit}
	case p.at(token.Int):
		t := p.advance()
		n, _ := strconv.ParseFloat(t.Lit, 64)
		return &ast.DefaultValue{Kind: ast.DefaultInt, Num: n}
	case p.at(token.Float):
		t := p.advance()
		n, _ := strconv.ParseFloat(t.Lit, 64)
		return &ast.DefaultValue{Kind: ast.DefaultF64, Num: n}
	case p.at(token.KwTrue), p.at(token.KwFalse):
		t := p.advance()
		return &ast.DefaultValue{Kind: ast.DefaultBoolean, Bool: t.Kind == token.KwTrue}
	default:
		p.errorf(p.cur().Loc, "expected a default value literal")
		return &ast.DefaultValue{Kind: ast.DefaultEmpty}
	}
}

// parseMigrationBody parses `{ Item(src) => Item(dst) { remappings } ... }`.
func (p *parser) parseMigrationBody(fromVer int, fromLoc diag.Loc, toVer int, toLoc diag.Loc, start diag.Loc) *ast.Migration {
	m := &ast.Migration{FromVersion: fromVer, FromVersionLoc: fromLoc, ToVersion: toVer, ToVersionLoc: toLoc, DefID: uuid.New()}
	if _, ok := p.expect(token.LBrace); !ok {
		p.recoverToBoundary()
		return m
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		m.Body = append(m.Body, p.parseMigrationItemMapping())
	}
	p.expect(token.RBrace)
	m.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return m
}

// parseMigrationItem parses `Item(Name)`. Which schema table Name belongs to
// (node/edge/vector) is not syntactically marked, so it is left
// MigrationItemUnresolved here and resolved by the schema builder once the
// full schema set for both versions is known (spec §4.2).
func (p *parser) parseMigrationItem() (ast.MigrationItem, diag.Loc) {
	start := p.cur().Loc
	p.advance() // "Item"
	p.expect(token.LParen)
	nameTok, _ := p.expect(token.Ident)
	p.expect(token.RParen)
	return ast.MigrationItem{Kind: ast.MigrationItemUnresolved, Name: nameTok.Lit}, diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
}

func (p *parser) parseMigrationItemMapping() *ast.MigrationItemMapping {
	start := p.cur().Loc
	mm := &ast.MigrationItemMapping{}
	mm.FromItem, mm.FromItemLoc = p.parseMigrationItem()
	p.expect(token.Arrow)
	mm.ToItem, mm.ToItemLoc = p.parseMigrationItem()
	if p.at(token.LBrace) {
		p.advance()
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			mm.Remappings = append(mm.Remappings, p.parsePropertyMapping())
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBrace)
	}
	mm.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return mm
}

func (p *parser) parsePropertyMapping() *ast.MigrationPropertyMapping {
	start := p.cur().Loc
	nameTok, _ := p.expect(token.Ident)
	pm := &ast.MigrationPropertyMapping{PropertyName: nameTok.Lit, PropertyLoc: nameTok.Loc}
	p.expect(token.Colon)
	pm.Value = p.parseFieldValue()
	if p.at(token.KwAs) {
		p.advance()
		ft := p.parseFieldType()
		pm.Cast = &ft
	}
	if p.at(token.KwOr) {
		p.advance()
		pm.Default = p.parseDefaultValue()
	}
	pm.Loc = diag.Loc{File: p.file, Start: start.Start, End: p.cur().Loc.End}
	return pm
}
