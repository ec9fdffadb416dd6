package ast

import "github.com/oneiron-dev/helixql/internal/diag"

// Traversal is a start node followed by a sequence of steps (spec §3.7).
type Traversal struct {
	Start *StartNode
	Steps []*Step
	Loc   diag.Loc
}

// StartNodeKind enumerates the traversal origin forms.
type StartNodeKind int

const (
	StartNode_ StartNodeKind = iota // N<Type>(ids?)
	StartEdge
	StartVector
	StartSearchVector
	StartIdentifier
	StartAnonymous
)

// StartNode is the origin of a traversal.
type StartNode struct {
	Kind       StartNodeKind
	TypeName   string // node/edge/vector type name
	Ids        []*IdType
	Identifier string
	Search     *SearchVector
	Loc        diag.Loc
}

// IdKind enumerates the ways an id can be written.
type IdKind int

const (
	IdLiteral IdKind = iota
	IdIdentifier
	IdByIndex
)

// IdType is one id argument to a source step, e.g. `N<User>(id)`.
type IdType struct {
	Kind  IdKind
	Value string
	Index *IdType    // IdByIndex
	By    *ValueType // IdByIndex
	Loc   diag.Loc
}

// StepKind enumerates every traversal step form (spec §3.7).
type StepKind int

const (
	StepOut StepKind = iota
	StepIn
	StepOutE
	StepInE
	StepFromN
	StepToN
	StepFromV
	StepToV
	StepWhere
	StepBooleanOp
	StepRange
	StepOrderBy
	StepCount
	StepDedup
	StepFirst
	StepUpdate
	StepUpsert
	StepUpsertN
	StepUpsertE
	StepUpsertV
	StepObject
	StepExclude
	StepClosure
	StepAggregate
	StepGroupBy
	StepRerankRRF
	StepRerankMMR
	StepShortestPath
	StepShortestPathBFS
	StepShortestPathDijkstra
	StepShortestPathAStar
	StepAddEdge
)

// Step is one traversal step; the field matching Kind is populated.
type Step struct {
	Kind StepKind
	Loc  diag.Loc

	Label       string // Out/In/OutE/InE edge-type label filter, "" if none
	Where       *Expression
	BooleanOp   *BooleanOp
	RangeLo     *Expression
	RangeHi     *Expression
	OrderBy     *OrderBy
	Update      *Update
	Upsert      *Upsert
	UpsertN     *UpsertN
	UpsertE     *UpsertE
	UpsertV     *UpsertV
	Object      *Object
	Exclude     *Exclude
	Closure     *Closure
	Aggregate   *Aggregate
	GroupBy     *GroupBy
	RerankRRF   *RerankRRF
	RerankMMR   *RerankMMR
	ShortestPath *ShortestPath
	AddEdge     *AddEdge
}

// OrderDirection is ASC or DESC.
type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

// OrderBy is `::ORDER(_::{field}, ASC|DESC)`.
type OrderBy struct {
	Direction  OrderDirection
	Expression *Expression
	Loc        diag.Loc
}

// Aggregate is `::AGGREGATE(props...)`.
type Aggregate struct {
	Properties []string
	Loc        diag.Loc
}

// GroupBy is `::GROUP_BY(props...)`.
type GroupBy struct {
	Properties []string
	Loc        diag.Loc
}

// RerankRRF is `::RERANK_RRF(k?)`.
type RerankRRF struct {
	K   *Expression
	Loc diag.Loc
}

// MMRDistanceKind enumerates distance functions available to RERANK_MMR.
type MMRDistanceKind int

const (
	MMRCosine MMRDistanceKind = iota
	MMREuclidean
	MMRDotProduct
	MMRIdentifier
)

// RerankMMR is `::RERANK_MMR(lambda, dist?)`.
type RerankMMR struct {
	Lambda       *Expression
	Distance     MMRDistanceKind
	DistanceName string // set when Distance == MMRIdentifier
	HasDistance  bool
	Loc          diag.Loc
}

// BooleanOpKind enumerates the comparison/connective operators.
type BooleanOpKind int

const (
	OpAnd BooleanOpKind = iota
	OpOr
	OpGT
	OpGTE
	OpLT
	OpLTE
	OpEq
	OpNotEq
	OpContains
	OpIsIn
)

// BooleanOp is `::<op>(rhs)` or the n-ary AND/OR forms.
type BooleanOp struct {
	Op   BooleanOpKind
	Rhs  *Expression // unary comparison ops
	Many []*Expression // OpAnd / OpOr
	Loc  diag.Loc
}

// FieldAddition is one `key: value` entry in an object/update/upsert/add.
type FieldAddition struct {
	Key   string
	Value *FieldValue
	Loc   diag.Loc
}

// FieldValueKind enumerates the right-hand side forms of a FieldAddition.
type FieldValueKind int

const (
	FieldValueTraversal FieldValueKind = iota
	FieldValueExpression
	FieldValueFields
	FieldValueLiteral
	FieldValueIdentifier
	FieldValueEmpty
)

// FieldValue is the value assigned to a field in an object/update/add step.
type FieldValue struct {
	Kind       FieldValueKind
	Traversal  *Traversal
	Expression *Expression
	Fields     []*FieldAddition
	Literal    Value
	Identifier string
	Loc        diag.Loc
}

// Update is `::UPDATE({fields})`.
type Update struct {
	Fields []*FieldAddition
	Loc    diag.Loc
}

// Upsert is `::UPSERT({fields})` with no declared target kind.
type Upsert struct {
	Fields []*FieldAddition
	Loc    diag.Loc
}

// UpsertN is `::UPSERT_N<Type>({fields})`.
type UpsertN struct {
	NodeType string
	Fields   []*FieldAddition
	Loc      diag.Loc
}

// UpsertE is `::UPSERT_E<Type>({fields})`, connected From/To.
type UpsertE struct {
	EdgeType   string
	Fields     []*FieldAddition
	Connection EdgeConnection
	Loc        diag.Loc
}

// UpsertV is `::UPSERT_V<Type>(data)`.
type UpsertV struct {
	VectorType string
	Fields     []*FieldAddition
	Data       *VectorData
	Loc        diag.Loc
}

// Object is `::{fields, ...}` — a projection step.
type Object struct {
	Fields       []*FieldAddition
	ShouldSpread bool
	Loc          diag.Loc
}

// Exclude is `::!{fields}`.
type Exclude struct {
	Fields []NameLoc
	Loc    diag.Loc
}

// Closure is `::|name|{object}`.
type Closure struct {
	Identifier string
	Object     *Object
	Loc        diag.Loc
}

// VectorDataKind enumerates how AddV/UpsertV vector data is supplied.
type VectorDataKind int

const (
	VectorDataLiteral VectorDataKind = iota
	VectorDataIdentifier
	VectorDataEmbed
)

// VectorData is the embedding payload for a vector insert/upsert.
type VectorData struct {
	Kind       VectorDataKind
	Vector     []float64
	Identifier string
	Embed      *Embed
	Loc        diag.Loc
}

// Embed is `EMBED(text)`, hoisted into an async call by the generator.
type Embed struct {
	IsIdentifier bool
	Text         string // literal text, when !IsIdentifier
	Identifier   string // source identifier, when IsIdentifier
	Loc          diag.Loc
}

// SearchVector is `::SearchV<T>(vec, k)` or a start-node vector search.
type SearchVector struct {
	VectorType string
	Data       *VectorData
	K          *Expression
	PreFilter  *Expression
	Loc        diag.Loc
}

// BM25Search is `::SearchBM25<T>(text, k)`.
type BM25Search struct {
	TypeArg string
	Data    *ValueType
	K       *Expression
	Loc     diag.Loc
}

// AddNode is `AddN<Type>({fields})`.
type AddNode struct {
	NodeType string
	Fields   map[string]*ValueType
	Loc      diag.Loc
}

// AddVector is `AddV<Type>(data, {fields})`.
type AddVector struct {
	VectorType string
	Data       *VectorData
	Fields     map[string]*ValueType
	Loc        diag.Loc
}

// EdgeConnection is the `From: x, To: y` pair of an edge insert/upsert.
type EdgeConnection struct {
	FromID *IdType
	ToID   *IdType
	Loc    diag.Loc
}

// AddEdge is `AddE<Type>({fields})::From(x)::To(y)`.
type AddEdge struct {
	EdgeType       string
	Fields         map[string]*ValueType
	Connection     EdgeConnection
	FromIdentifier bool
	Loc            diag.Loc
}

// ValueTypeKind enumerates literal/identifier/object value forms used in
// AddN/AddE/AddV field lists.
type ValueTypeKind int

const (
	ValueLiteral ValueTypeKind = iota
	ValueIdentifier
	ValueObject
)

// ValueType is the value supplied for one AddN/AddE/AddV field.
type ValueType struct {
	Kind       ValueTypeKind
	Literal    Value
	Identifier string
	Object     map[string]*ValueType
	Loc        diag.Loc
}

// ShortestPathAlgorithm enumerates the supported path-finding algorithms.
type ShortestPathAlgorithm int

const (
	PathDefault ShortestPathAlgorithm = iota
	PathBFS
	PathDijkstra
	PathAStar
)

// WeightExprKind enumerates how a shortest-path weight is expressed.
type WeightExprKind int

const (
	WeightDefault WeightExprKind = iota
	WeightProperty
	WeightExpression
)

// WeightExpr is the optional edge-weight expression on a weighted path step.
type WeightExpr struct {
	Kind     WeightExprKind
	Property string
	Expr     *Expression
}

// ShortestPath is `::SHORTEST_PATH[_BFS|_DIJKSTRA|_ASTAR]<Label>(from, to, weight?, heuristic?)`.
type ShortestPath struct {
	Algorithm         ShortestPathAlgorithm
	Label             string
	From              *IdType
	To                *IdType
	Weight            *WeightExpr
	HeuristicProperty string // PathAStar only
	Loc               diag.Loc
}
