package codegen

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/oneiron-dev/helixql/internal/analyzer"
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/schema"
)

// writeSchemaStructs emits one plain Go struct per node/edge/vector in vt,
// sorted by name for deterministic output (spec §4.6, "Schema structs").
func writeSchemaStructs(f *jen.File, vt *schema.VersionTable) {
	writeStructsFor(f, vt.NodeFields)
	writeStructsFor(f, vt.EdgeFields)
	writeStructsFor(f, vt.VectorFields)
}

func writeStructsFor(f *jen.File, byName map[string]schema.FieldLookup) {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		fl := byName[name]
		fieldNames := make([]string, 0, len(fl))
		for fn := range fl {
			fieldNames = append(fieldNames, fn)
		}
		sort.Strings(fieldNames)

		f.Commentf("%s is generated from its schema declaration.", exportedName(name))
		f.Type().Id(exportedName(name)).StructFunc(func(g *jen.Group) {
			for _, fn := range fieldNames {
				fi := fl[fn]
				typ := goFieldType(fi.Type)
				if fi.Prefix == ast.PrefixOptional {
					typ = jen.Op("*").Add(typ)
				}
				g.Id(exportedName(fn)).Add(typ).Tag(map[string]string{"json": fn})
			}
		})
	}
}

// writeConfig emits the optional `Config() hx.Config` function carrying
// HNSW parameters, secondary indices, size cap, feature flags, the
// embedding model, and the schema echoed as JSON (spec §4.6, "Optional
// config function"; §6, "Config surface"). Feature flags are derived from
// the analyzed query set: `mcp` is set when any query carries `#[mcp]`,
// `bm25` when any query performs a BM25 search. HNSW parameters, the size
// cap, and the embedding model name have no HelixQL source syntax of their
// own; they come from the project's helix.yaml (internal/cfgfile), passed
// down through Options.
func writeConfig(f *jen.File, vt *schema.VersionTable, queries []*analyzer.Query, opts Options) {
	hasMCP := false
	for _, q := range queries {
		if q.IsMCP {
			hasMCP = true
		}
	}
	hasBM25 := hasBM25Search(queries)

	f.Comment("Config returns the runtime configuration embedded at schema compile time.")
	f.Func().Id("Config").Params().Qual(RuntimePackage, "Config").Block(
		jen.Return(jen.Qual(RuntimePackage, "Config").Values(jen.Dict{
			jen.Id("MCP"):           jen.Lit(hasMCP),
			jen.Id("BM25"):          jen.Lit(hasBM25),
			jen.Id("SchemaVersion"): jen.Lit(vt.Version),
			jen.Id("Indexes"):       litStrings(indexedFields(vt)),
			jen.Id("HNSW"): jen.Qual(RuntimePackage, "HNSWParams").Values(jen.Dict{
				jen.Id("M"):              jen.Lit(opts.HNSW.M),
				jen.Id("EfConstruction"): jen.Lit(opts.HNSW.EfConstruction),
				jen.Id("EfSearch"):       jen.Lit(opts.HNSW.EfSearch),
			}),
			jen.Id("SizeCap"):        jen.Lit(opts.SizeCap),
			jen.Id("EmbeddingModel"): jen.Lit(opts.EmbeddingModel),
			jen.Id("SchemaJSON"):     jen.Lit(schemaEchoJSON(vt)),
		})),
	)
}

// indexedFields lists every "Item.field" pair declared INDEX or UNIQUE
// INDEX in vt, sorted for deterministic output (spec §6: "list of
// secondary-index field names").
func indexedFields(vt *schema.VersionTable) []string {
	var names []string
	collect := func(byName map[string]schema.FieldLookup) {
		for itemName, fl := range byName {
			for fieldName, fi := range fl {
				if fi.Prefix.IsIndexed() {
					names = append(names, itemName+"."+fieldName)
				}
			}
		}
	}
	collect(vt.NodeFields)
	collect(vt.EdgeFields)
	collect(vt.VectorFields)
	sort.Strings(names)
	return names
}

func litStrings(ss []string) jen.Code {
	elems := make([]jen.Code, len(ss))
	for i, s := range ss {
		elems[i] = jen.Lit(s)
	}
	return jen.Index().String().Values(elems...)
}

// schemaEchoJSON renders the "JSON echo of the schema" the config surface
// requires (spec §6). It is a name -> sorted-field-names summary, not a
// full type-faithful re-serialization: the config surface is for
// introspection by the integrator's tooling, not a source of truth.
type schemaEcho struct {
	Version int                 `json:"version"`
	Nodes   map[string][]string `json:"nodes"`
	Edges   map[string][]string `json:"edges"`
	Vectors map[string][]string `json:"vectors"`
}

func schemaEchoJSON(vt *schema.VersionTable) string {
	echo := schemaEcho{
		Version: vt.Version,
		Nodes:   fieldNamesByItem(vt.NodeFields),
		Edges:   fieldNamesByItem(vt.EdgeFields),
		Vectors: fieldNamesByItem(vt.VectorFields),
	}
	b, err := json.Marshal(echo)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func fieldNamesByItem(byName map[string]schema.FieldLookup) map[string][]string {
	out := make(map[string][]string, len(byName))
	for itemName, fl := range byName {
		names := make([]string, 0, len(fl))
		for fn := range fl {
			names = append(names, fn)
		}
		sort.Strings(names)
		out[itemName] = names
	}
	return out
}

// writeMigration emits a `#[migration]`-equivalent function scaffolding for
// one schema-version migration (spec §4.6, "Migration functions"): the body
// delegates to field-mapping helpers the way the Rust generator delegates
// to field-mapping macros.
func writeMigration(f *jen.File, m *ast.Migration) {
	fnName := "Migrate" + strconv.Itoa(m.FromVersion) + "To" + strconv.Itoa(m.ToVersion)
	f.Commentf("%s migrates data declared under schema version %d to version %d.", fnName, m.FromVersion, m.ToVersion)
	f.Func().Id(fnName).Params(jen.Id("tx").Qual(RuntimePackage, "Tx")).Error().BlockFunc(func(g *jen.Group) {
		for _, item := range m.Body {
			g.Commentf("%s -> %s", item.FromItem.Name, item.ToItem.Name)
			g.If(
				jen.Err().Op(":=").Qual(RuntimePackage, "MigrateItem").Call(
					jen.Id("tx"),
					jen.Lit(item.FromItem.Name),
					jen.Lit(item.ToItem.Name),
					jen.Func().Params(jen.Id("src").Qual(RuntimePackage, "Value")).Qual(RuntimePackage, "Value").BlockFunc(func(inner *jen.Group) {
						for _, remap := range item.Remappings {
							inner.Comment(remap.PropertyName + " <- " + sourceFieldName(remap))
						}
						inner.Return(jen.Id("src"))
					}),
				),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Err()))
		}
		g.Return(jen.Nil())
	})
}

func sourceFieldName(remap *ast.MigrationPropertyMapping) string {
	if remap.Value != nil && remap.Value.Kind == ast.FieldValueIdentifier {
		return remap.Value.Identifier
	}
	return remap.PropertyName
}
