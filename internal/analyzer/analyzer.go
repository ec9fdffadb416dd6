// Package analyzer walks a parsed query against the schema table and the
// type system, annotating it with inferred types and recording diagnostics
// (spec §4.4). It is grounded file-for-file on the original compiler's
// analyzer stage (analyzer.go ~ query_validation.rs, statements.go ~
// statement_validation.rs, objects.go ~ object_validation.rs, schema.go ~
// schema_methods.rs), translated to explicit Go control flow.
package analyzer

import (
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/schema"
	"github.com/oneiron-dev/helixql/internal/types"
)

// ParamInfo is one flattened query input parameter. Object-typed parameters
// are flattened into one ParamInfo per leaf field (spec §4.4 step 1), with
// Path recording the dotted field path from the declared parameter name.
type ParamInfo struct {
	Name       string
	Path       []string
	Type       types.Type
	IsOptional bool
	Loc        diag.Loc
}

// ReturnInfo is one analyzed RETURN value: its name (alias or inferred),
// resolved type, and the traversal that produced it, if any (a bare
// identifier or literal return has Traversal == nil).
type ReturnInfo struct {
	Name      string
	Type      types.Type
	Traversal *ast.Traversal
	Loc       diag.Loc
}

// Query is the fully annotated form of one ast.Query, the IR consumed by
// internal/shape and internal/codegen (spec §3.9).
type Query struct {
	Source      *ast.Query
	Parameters  []ParamInfo
	IsMutating  bool
	HasEmbed    bool
	Returns     []ReturnInfo
	VarTypes    map[string]types.VariableInfo
	ModelName   string
	IsMCP       bool
}

// Analyzer walks queries against one version's schema table.
type Analyzer struct {
	schema *schema.VersionTable
	bag    *diag.Bag
}

// New returns an Analyzer that checks queries against schema and reports
// into bag.
func New(schema *schema.VersionTable, bag *diag.Bag) *Analyzer {
	return &Analyzer{schema: schema, bag: bag}
}

// AnalyzeAll analyzes every query in src, independently: one query's
// diagnostics never prevent another from being analyzed (spec §4.4 failure
// semantics).
func (a *Analyzer) AnalyzeAll(queries []*ast.Query) []*Query {
	out := make([]*Query, 0, len(queries))
	for _, q := range queries {
		out = append(out, a.Analyze(q))
	}
	return out
}

// Analyze runs the full per-query pipeline of spec §4.4.
func (a *Analyzer) Analyze(q *ast.Query) *Query {
	aq := &Query{Source: q, VarTypes: map[string]types.VariableInfo{}}
	if name, ok := q.ModelName(); ok {
		aq.ModelName = name
	}
	aq.IsMCP = q.HasMacro(ast.MacroMCP)

	scope := types.NewScope()
	aq.Parameters = a.analyzeParameters(q.Parameters, scope)

	ctx := &walkCtx{a: a, scope: scope, aq: aq}
	for _, stmt := range q.Statements {
		ctx.walkStatement(stmt)
	}

	if len(q.ReturnValues) == 0 {
		a.bag.Warn(diag.CodeMissingReturn, q.Loc, "query \""+q.Name+"\" has no RETURN statement")
	}
	for _, rv := range q.ReturnValues {
		aq.Returns = append(aq.Returns, ctx.analyzeReturn(rv))
	}

	if aq.IsMCP && len(aq.Returns) != 1 {
		a.bag.Error(diag.CodeMCPArity, q.Loc, "#[mcp] query \""+q.Name+"\" must return exactly one value")
	}
	return aq
}

// analyzeParameters validates and flattens query parameters (spec §4.4
// step 1), inserting each into scope (step 2).
func (a *Analyzer) analyzeParameters(params []*ast.Parameter, scope *types.Scope) []ParamInfo {
	var out []ParamInfo
	for _, p := range params {
		if p.Type.Kind == ast.TIdentifier {
			if a.schema == nil || a.schema.KindOf(p.Type.Name) == schema.ItemUnknown {
				a.bag.Error(diag.CodeInvalidFieldType, p.TypeLoc, "unknown parameter type \""+p.Type.Name+"\"")
			}
		}
		out = append(out, flatten(p.Name, nil, p.Type, p.IsOptional, p.Loc)...)
		ty := types.From(p.Type)
		scope.Declare(p.Name, types.New(ty, !ty.IsPlural()))
	}
	return out
}

// flatten expands an Object-typed parameter into one ParamInfo per leaf
// field, the way the generated input struct needs one Go field per leaf
// rather than a nested map.
func flatten(name string, path []string, ft ast.FieldType, optional bool, loc diag.Loc) []ParamInfo {
	if ft.Kind != ast.TObject {
		return []ParamInfo{{Name: name, Path: path, Type: types.From(ft), IsOptional: optional, Loc: loc}}
	}
	var out []ParamInfo
	for field, sub := range ft.Object {
		out = append(out, flatten(name, append(append([]string{}, path...), field), *sub, optional, loc)...)
	}
	return out
}
