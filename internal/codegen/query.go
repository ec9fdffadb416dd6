package codegen

import (
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/oneiron-dev/helixql/internal/analyzer"
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/schema"
	"github.com/oneiron-dev/helixql/internal/shape"
	"github.com/oneiron-dev/helixql/internal/types"
)

// writeQuery emits one query's input struct, return struct tree, and
// handler function (spec §4.6, "Per query").
func writeQuery(f *jen.File, vt *schema.VersionTable, q *analyzer.Query) {
	name := exportedName(q.Source.Name)
	writeInputStruct(f, name, q.Parameters)
	returnTypes := writeReturnStructs(f, name, q.Returns)
	writeHandler(f, name, q, returnTypes)
}

func writeInputStruct(f *jen.File, name string, params []analyzer.ParamInfo) {
	structName := name + "Input"
	f.Commentf("%s is the decoded request body for the %q query.", structName, name)
	f.Type().Id(structName).StructFunc(func(g *jen.Group) {
		for _, p := range params {
			typ := goTypeFromType(p.Type)
			if p.IsOptional {
				typ = jen.Op("*").Add(typ)
			}
			g.Id(paramFieldName(p)).Add(typ).Tag(map[string]string{"json": paramJSONName(p)})
		}
	})
}

func paramFieldName(p analyzer.ParamInfo) string {
	b := strings.Builder{}
	b.WriteString(exportedName(p.Name))
	for _, seg := range p.Path {
		b.WriteString(exportedName(seg))
	}
	return b.String()
}

func paramJSONName(p analyzer.ParamInfo) string {
	return strings.Join(append([]string{p.Name}, p.Path...), ".")
}

// goTypeFromType renders an analyzer-inferred type as the Go type an input
// field or a bare (un-projected) return value carries.
func goTypeFromType(t types.Type) jen.Code {
	switch t.Kind {
	case types.Scalar:
		return goScalarType(t.Scalar)
	case types.Boolean:
		return jen.Bool()
	case types.Count:
		return jen.Int32()
	case types.Node, types.Edge, types.Vector:
		if t.Label == "" {
			return jen.Interface()
		}
		return jen.Id(exportedName(t.Label))
	case types.Nodes, types.Edges, types.Vectors:
		if t.Label == "" {
			return jen.Index().Interface()
		}
		return jen.Index().Id(exportedName(t.Label))
	case types.Array:
		if t.Elem == nil {
			return jen.Index().Interface()
		}
		return jen.Index().Add(goTypeFromType(*t.Elem))
	default:
		return jen.Interface()
	}
}

// writeReturnStructs emits one struct per analyzed RETURN value (spec §4.5
// via internal/shape), returning each value's rendered Go type name for the
// handler's response assembly.
func writeReturnStructs(f *jen.File, name string, returns []analyzer.ReturnInfo) []string {
	names := make([]string, len(returns))
	for i, ri := range returns {
		structName := name + exportedName(ri.Name) + "Result"
		fields := shape.Build(ri.Type, ri.Name)
		if len(fields) == 0 {
			names[i] = writeBareReturnType(f, structName, ri.Type)
			continue
		}
		writeShapeStruct(f, structName, fields)
		names[i] = structName
	}
	return names
}

// writeBareReturnType handles a RETURN value that is an un-projected graph
// entity or array: there is nothing for internal/shape to flatten, so the
// "struct" is just an alias to the schema-declared type.
func writeBareReturnType(f *jen.File, aliasName string, t types.Type) string {
	switch t.Kind {
	case types.Node, types.Edge, types.Vector:
		f.Type().Id(aliasName).Id(exportedName(t.Label))
	case types.Nodes, types.Edges, types.Vectors:
		f.Type().Id(aliasName).Index().Id(exportedName(t.Label))
	default:
		f.Type().Id(aliasName).Interface()
	}
	return aliasName
}

func writeShapeStruct(f *jen.File, name string, fields []shape.Field) {
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, field := range fields {
			g.Id(field.Name).Add(shapeFieldType(f, name, field)).Tag(map[string]string{"json": field.Source})
		}
	})
}

func shapeFieldType(f *jen.File, parent string, field shape.Field) jen.Code {
	switch field.Kind {
	case shape.KindScalar:
		return goScalarType(field.Scalar)
	case shape.KindBoolean:
		return jen.Bool()
	case shape.KindCount:
		return jen.Int32()
	case shape.KindStruct:
		if len(field.Nested) == 0 {
			if field.Label != "" {
				return jen.Id(exportedName(field.Label))
			}
			return jen.Interface()
		}
		nestedName := parent + field.Name
		writeShapeStruct(f, nestedName, field.Nested)
		return jen.Id(nestedName)
	case shape.KindSlice:
		if len(field.Nested) == 0 {
			if field.Label != "" {
				return jen.Index().Id(exportedName(field.Label))
			}
			return jen.Index().Interface()
		}
		nestedName := parent + field.Name
		writeShapeStruct(f, nestedName, field.Nested)
		return jen.Index().Id(nestedName)
	case shape.KindAggregate:
		return writeAggregateStruct(f, parent, field)
	default:
		return jen.Interface()
	}
}

// writeAggregateStruct renders the `{key, <properties...>, count, items?}`
// shape an ::AGGREGATE/::GROUP_BY step returns (spec §4.6 step 10, "For
// aggregates, iterate the HashMap<String, AggregateItem>"): the generated
// type is a slice of one struct per map entry.
func writeAggregateStruct(f *jen.File, parent string, field shape.Field) jen.Code {
	aggName := parent + field.Name
	agg := field.Aggregate
	f.Type().Id(aggName).StructFunc(func(g *jen.Group) {
		g.Id("Key").String().Tag(map[string]string{"json": "key"})
		for _, p := range agg.Properties {
			g.Id(exportedName(p)).String().Tag(map[string]string{"json": p})
		}
		g.Id("Count").Int32().Tag(map[string]string{"json": "count"})
		if len(agg.Items) > 0 {
			itemsName := shape.ItemsStructName(field.Name)
			writeShapeStruct(f, itemsName, agg.Items)
			g.Id("Items").Index().Id(itemsName).Tag(map[string]string{"json": "items"})
		}
	})
	return jen.Index().Id(aggName)
}

// writeHandler renders the per-query handler function following the
// eleven-step lowering in spec §4.6.
func writeHandler(f *jen.File, name string, q *analyzer.Query, returnTypes []string) {
	handlerName := name + "Handler"
	annotation := "#[handler]"
	if q.IsMCP {
		annotation = "#[mcp_handler]"
	}
	f.Commentf("%s %s implements the %q query.", annotation, handlerName, q.Source.Name)
	f.Func().Id(handlerName).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("db").Qual(RuntimePackage, "Database"),
		jen.Id("in").Id(name+"Input"),
	).Params(jen.Op("*").Qual(RuntimePackage, "Response"), jen.Error()).BlockFunc(func(g *jen.Group) {
		hoistEmbeds(g, q.Source.Statements, q.ModelName)

		txCall := "BeginRead"
		if q.IsMutating {
			txCall = "BeginWrite"
		}
		g.List(jen.Id("tx"), jen.Err()).Op(":=").Id("db").Dot(txCall).Call(jen.Id("ctx"))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
		g.Defer().Id("tx").Dot("Close").Call()

		g.Id("arena").Op(":=").Qual(RuntimePackage, "NewArena").Call()
		g.Defer().Id("arena").Dot("Release").Call()

		for _, stmt := range q.Source.Statements {
			lowerStatement(g, stmt)
		}

		composeResponse(g, q)

		g.If(jen.Err().Op(":=").Id("tx").Dot("Commit").Call(), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		)
		g.Return(jen.Qual(RuntimePackage, "NewResponse").Call(jen.Id("payload")), jen.Nil())
	})
}

// hoistEmbeds lowers every Embed(text) expression reachable from the
// query's top-level statements into a suspension point before the
// transaction opens (spec §4.6 step 3; §5 "Suspension points"), passing the
// model recorded by the query's `#[model("...")]` macro, if any (spec §4.4
// step 6: "records the embedding model to use for any Embed sources").
func hoistEmbeds(g *jen.Group, stmts []*ast.Statement, modelName string) {
	for _, e := range collectEmbeds(stmts) {
		textArg := jen.Lit(e.Text)
		if e.IsIdentifier {
			textArg = jen.Id(e.Identifier)
		}
		g.List(jen.Id(embedResultName(e)), jen.Err()).Op(":=").Qual(RuntimePackage, "Embed").Call(jen.Id("ctx"), textArg, jen.Lit(modelName))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
	}
}

func collectEmbeds(stmts []*ast.Statement) []*ast.Embed {
	var out []*ast.Embed
	var walkTraversal func(t *ast.Traversal)
	var walkExpr func(e *ast.Expression)

	collectVD := func(vd *ast.VectorData) {
		if vd != nil && vd.Kind == ast.VectorDataEmbed {
			out = append(out, vd.Embed)
		}
	}
	walkTraversal = func(t *ast.Traversal) {
		if t == nil {
			return
		}
		if t.Start != nil && t.Start.Search != nil {
			collectVD(t.Start.Search.Data)
		}
		for _, st := range t.Steps {
			if st.UpsertV != nil {
				collectVD(st.UpsertV.Data)
			}
		}
	}
	walkExpr = func(e *ast.Expression) {
		if e == nil {
			return
		}
		switch e.Kind {
		case ast.ExprTraversal:
			walkTraversal(e.Traversal)
		case ast.ExprAddVector:
			collectVD(e.AddVector.Data)
		case ast.ExprSearchVector:
			collectVD(e.Search.Data)
		case ast.ExprExists:
			walkExpr(e.Exists)
		case ast.ExprNot:
			walkExpr(e.Unary)
		case ast.ExprAnd, ast.ExprOr:
			for _, m := range e.Many {
				walkExpr(m)
			}
		}
	}
	var walkStmt func(s *ast.Statement)
	walkStmt = func(s *ast.Statement) {
		switch s.Kind {
		case ast.StmtAssignment:
			walkExpr(s.Assignment.Value)
		case ast.StmtDrop, ast.StmtExpression:
			walkExpr(s.Expr)
		case ast.StmtForLoop:
			for _, inner := range s.ForLoop.Statements {
				walkStmt(inner)
			}
		}
	}
	for _, s := range stmts {
		walkStmt(s)
	}
	return out
}

// hasBM25Search reports whether any query in the set performs a BM25 search
// (spec §4.6, "Optional config function": the `bm25` feature flag), walking
// the same statement/expression surface as collectEmbeds.
func hasBM25Search(queries []*analyzer.Query) bool {
	for _, q := range queries {
		if statementsHaveBM25(q.Source.Statements) {
			return true
		}
	}
	return false
}

func statementsHaveBM25(stmts []*ast.Statement) bool {
	var walkExpr func(e *ast.Expression) bool
	walkExpr = func(e *ast.Expression) bool {
		if e == nil {
			return false
		}
		switch e.Kind {
		case ast.ExprBM25Search:
			return true
		case ast.ExprExists:
			return walkExpr(e.Exists)
		case ast.ExprNot:
			return walkExpr(e.Unary)
		case ast.ExprAnd, ast.ExprOr:
			for _, m := range e.Many {
				if walkExpr(m) {
					return true
				}
			}
		}
		return false
	}
	var walkStmt func(s *ast.Statement) bool
	walkStmt = func(s *ast.Statement) bool {
		switch s.Kind {
		case ast.StmtAssignment:
			return walkExpr(s.Assignment.Value)
		case ast.StmtDrop, ast.StmtExpression:
			return walkExpr(s.Expr)
		case ast.StmtForLoop:
			for _, inner := range s.ForLoop.Statements {
				if walkStmt(inner) {
					return true
				}
			}
		}
		return false
	}
	for _, s := range stmts {
		if walkStmt(s) {
			return true
		}
	}
	return false
}

// lowerStatement renders one top-level statement (spec §4.6 step 4).
func lowerStatement(g *jen.Group, stmt *ast.Statement) {
	switch stmt.Kind {
	case ast.StmtAssignment:
		g.List(jen.Id(stmt.Assignment.Variable), jen.Err()).Op(":=").Add(lowerExpr(stmt.Assignment.Value)).Dot("Resolve").Call(jen.Id("ctx"))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
	case ast.StmtDrop:
		g.If(
			jen.List(jen.Id("_"), jen.Err()).Op(":=").Add(lowerExpr(stmt.Expr)).Dot("Resolve").Call(jen.Id("ctx")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err()))
	case ast.StmtExpression:
		g.If(
			jen.List(jen.Id("_"), jen.Err()).Op(":=").Add(lowerExpr(stmt.Expr)).Dot("Resolve").Call(jen.Id("ctx")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err()))
	case ast.StmtForLoop:
		lowerForLoop(g, stmt.ForLoop)
	}
}

func lowerForLoop(g *jen.Group, fl *ast.ForLoop) {
	loopVar := "item"
	if fl.Variable.Kind == ast.ForVarIdentifier {
		loopVar = fl.Variable.Name
	}
	g.For(jen.List(jen.Id("_"), jen.Id(loopVar)).Op(":=").Range().Id(fl.InVariable)).BlockFunc(func(inner *jen.Group) {
		switch fl.Variable.Kind {
		case ast.ForVarObjectAccess:
			inner.Id(fl.Variable.Name).Op(":=").Id(loopVar).Dot(exportedName(fl.Variable.Field))
		case ast.ForVarDestructure:
			for _, nl := range fl.Variable.Fields {
				inner.Id(nl.Name).Op(":=").Id(loopVar).Dot(exportedName(nl.Name))
			}
		}
		for _, s := range fl.Statements {
			lowerStatement(inner, s)
		}
	})
}

// composeResponse builds the JSON payload from the analyzed return values
// (spec §4.6 step 10) before the transaction commits.
func composeResponse(g *jen.Group, q *analyzer.Query) {
	varNames := make([]string, len(q.Returns))
	for i, ri := range q.Returns {
		v := "ret" + strconv.Itoa(i)
		varNames[i] = v
		g.List(jen.Id(v), jen.Err()).Op(":=").Add(lowerReturnExpr(ri)).Dot("Resolve").Call(jen.Id("ctx"))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
	}
	payload := jen.Dict{}
	for i, ri := range q.Returns {
		payload[jen.Lit(ri.Name)] = jen.Id(varNames[i])
	}
	g.Id("payload").Op(":=").Map(jen.String()).Interface().Values(payload)
}

// lowerReturnExpr resolves the value bound to one RETURN entry. A
// traversal-backed return lowers the traversal directly; a bare identifier
// or literal return (Traversal == nil, spec §3.9) references the name it
// was bound or aliased under earlier in the handler.
func lowerReturnExpr(ri analyzer.ReturnInfo) jen.Code {
	if ri.Traversal != nil {
		return lowerTraversal(ri.Traversal)
	}
	return jen.Qual(RuntimePackage, "From").Call(jen.Id(ri.Name))
}
