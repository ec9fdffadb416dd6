package ast

import "github.com/oneiron-dev/helixql/internal/diag"

// BuiltInMacroKind distinguishes `#[mcp]` from `#[model("...")]`.
type BuiltInMacroKind int

const (
	MacroNone BuiltInMacroKind = iota
	MacroMCP
	MacroModel
)

// BuiltInMacro is a parsed `#[...]` query annotation.
type BuiltInMacro struct {
	Kind      BuiltInMacroKind
	ModelName string // set when Kind == MacroModel
	Loc       diag.Loc
}

// Query is one `QUERY name(params) => statements RETURN exprs` declaration.
type Query struct {
	Name          string
	NameLoc       diag.Loc
	Macros        []BuiltInMacro
	Parameters    []*Parameter
	Statements    []*Statement
	ReturnValues  []*ReturnExpr
	OriginalQuery string
	Loc           diag.Loc
}

// HasMacro reports whether the query carries the given macro kind.
func (q *Query) HasMacro(kind BuiltInMacroKind) bool {
	for _, m := range q.Macros {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

// ModelName returns the `#[model("...")]` argument, if present.
func (q *Query) ModelName() (string, bool) {
	for _, m := range q.Macros {
		if m.Kind == MacroModel {
			return m.ModelName, true
		}
	}
	return "", false
}

// Parameter is one query input parameter.
type Parameter struct {
	Name       string
	NameLoc    diag.Loc
	Type       FieldType
	TypeLoc    diag.Loc
	IsOptional bool
	Loc        diag.Loc
}

// StatementKind enumerates the four statement forms (spec §3.6).
type StatementKind int

const (
	StmtAssignment StatementKind = iota
	StmtExpression
	StmtDrop
	StmtForLoop
)

// Statement is one statement in a query body.
type Statement struct {
	Kind       StatementKind
	Loc        diag.Loc
	Assignment *Assignment // Kind == StmtAssignment
	Expr       *Expression // Kind == StmtExpression or StmtDrop
	ForLoop    *ForLoop    // Kind == StmtForLoop
}

// Assignment is `name <- expr`.
type Assignment struct {
	Variable string
	NameLoc  diag.Loc
	Value    *Expression
	Loc      diag.Loc
}

// ForLoopVarKind enumerates the three loop-variable binding forms.
type ForLoopVarKind int

const (
	ForVarIdentifier ForLoopVarKind = iota
	ForVarObjectAccess
	ForVarDestructure
)

// ForLoopVars is the bound variable(s) of a FOR statement.
type ForLoopVars struct {
	Kind   ForLoopVarKind
	Name   string            // ForVarIdentifier, ForVarObjectAccess
	Field  string            // ForVarObjectAccess
	Fields []NameLoc         // ForVarDestructure
	Loc    diag.Loc
}

// NameLoc pairs an identifier with the location it was written at.
type NameLoc struct {
	Name string
	Loc  diag.Loc
}

// ForLoop is `FOR v IN coll { statements }` or the destructuring form.
type ForLoop struct {
	Variable   ForLoopVars
	InVariable string
	InLoc      diag.Loc
	Statements []*Statement
	Loc        diag.Loc
}

// ExpressionKind enumerates the expression forms (spec §3.6).
type ExpressionKind int

const (
	ExprTraversal ExpressionKind = iota
	ExprIdentifier
	ExprStringLiteral
	ExprIntLiteral
	ExprFloatLiteral
	ExprBoolLiteral
	ExprArrayLiteral
	ExprExists
	ExprAddNode
	ExprAddEdge
	ExprAddVector
	ExprNot
	ExprAnd
	ExprOr
	ExprSearchVector
	ExprBM25Search
	ExprMathCall
	ExprEmpty
)

// Expression is one expression node; exactly the field matching Kind is set.
type Expression struct {
	Kind ExpressionKind
	Loc  diag.Loc

	Traversal  *Traversal
	Identifier string
	Str        string
	Int        int64
	Float      float64
	Bool       bool
	Array      []*Expression
	Exists     *Expression
	AddNode    *AddNode
	AddEdge    *AddEdge
	AddVector  *AddVector
	Unary      *Expression   // ExprNot operand
	Many       []*Expression // ExprAnd / ExprOr operands
	Search     *SearchVector
	BM25       *BM25Search
	MathCall   *MathFunctionCall
}

// MathFunction enumerates the math/aggregate function names (spec §3.6).
type MathFunction int

const (
	MathAdd MathFunction = iota
	MathSub
	MathMul
	MathDiv
	MathPow
	MathMod
	MathAbs
	MathSqrt
	MathLn
	MathLog10
	MathLog
	MathExp
	MathCeil
	MathFloor
	MathRound
	MathSin
	MathCos
	MathTan
	MathAsin
	MathAcos
	MathAtan
	MathAtan2
	MathPi
	MathE
	MathMin
	MathMax
	MathSum
	MathAvg
	MathCount
)

// Arity returns the number of arguments a math function expects.
func (m MathFunction) Arity() int {
	switch m {
	case MathPi, MathE:
		return 0
	case MathAbs, MathSqrt, MathLn, MathLog10, MathExp, MathCeil, MathFloor,
		MathRound, MathSin, MathCos, MathTan, MathAsin, MathAcos, MathAtan,
		MathMin, MathMax, MathSum, MathAvg, MathCount:
		return 1
	default:
		return 2
	}
}

// Name returns the source-level function name, e.g. "SQRT".
func (m MathFunction) Name() string {
	names := [...]string{
		"ADD", "SUB", "MUL", "DIV", "POW", "MOD", "ABS", "SQRT", "LN", "LOG10",
		"LOG", "EXP", "CEIL", "FLOOR", "ROUND", "SIN", "COS", "TAN", "ASIN",
		"ACOS", "ATAN", "ATAN2", "PI", "E", "MIN", "MAX", "SUM", "AVG", "COUNT",
	}
	if int(m) < len(names) {
		return names[m]
	}
	return "UNKNOWN"
}

// MathFunctionCall is a call to one of the built-in math/aggregate functions.
type MathFunctionCall struct {
	Function MathFunction
	Args     []*Expression
	Loc      diag.Loc
}

// ReturnExprKind enumerates the shapes a RETURN value can take.
type ReturnExprKind int

const (
	ReturnArray ReturnExprKind = iota
	ReturnObject
	ReturnExpression
	ReturnEmpty
)

// ReturnExpr is one value named in a RETURN statement.
type ReturnExpr struct {
	Kind   ReturnExprKind
	Array  []*ReturnExpr
	Object map[string]*ReturnExpr
	Expr   *Expression
	Name   string // the alias the value is returned under, if any
	Loc    diag.Loc
}
