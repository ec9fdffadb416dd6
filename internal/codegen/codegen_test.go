package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiron-dev/helixql/internal/analyzer"
	"github.com/oneiron-dev/helixql/internal/codegen"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/parser"
	"github.com/oneiron-dev/helixql/internal/schema"
)

func compile(t *testing.T, src string) ([]byte, *diag.Bag) {
	t.Helper()
	src2, parseBag := parser.ParseAll([]parser.File{{Name: "t.hx", Text: src}})
	require.False(t, parseBag.HasErrors(), "%v", parseBag.All())

	bag := &diag.Bag{}
	table := schema.NewBuilder(bag).Build(src2)
	require.False(t, bag.HasErrors(), "%v", bag.All())

	an := analyzer.New(table.Latest(), bag)
	queries := an.AnalyzeAll(src2.Queries)
	require.False(t, bag.HasErrors(), "%v", bag.All())

	out, err := codegen.Generate(table, src2.Migrations, queries, codegen.Options{Package: "generated"})
	require.NoError(t, err)
	return out, bag
}

func TestGenerateSchemaStructsAndInputStruct(t *testing.T) {
	out, _ := compile(t, `
N::User { name: String, age: I32 }
QUERY GetUser(id: ID) =>
  user <- N<User>(id)
  RETURN user
`)
	src := string(out)
	assert.Contains(t, src, "package generated")
	assert.Contains(t, src, "type User struct")
	assert.Contains(t, src, "type GetUserInput struct")
	assert.Contains(t, src, "func GetUserHandler(")
	assert.Contains(t, src, "hx \""+codegen.RuntimePackage+"\"")
}

func TestGenerateObjectProjectionReturnStruct(t *testing.T) {
	out, _ := compile(t, `
N::User { name: String, age: I32 }
QUERY ListUsers() =>
  users <- N<User>::{name: name}
  RETURN users
`)
	src := string(out)
	assert.Contains(t, src, "type ListUsersUsersResult struct")
	assert.Contains(t, src, "Name")
}

func TestGenerateMutatingQueryOpensWriteTransaction(t *testing.T) {
	out, _ := compile(t, `
N::User { name: String }
QUERY AddUser(name: String) =>
  user <- AddN<User>({name: name})
  RETURN user
`)
	src := string(out)
	assert.Contains(t, src, "BeginWrite")
}

func TestGenerateFilesOutputsOnePerQuery(t *testing.T) {
	src2, parseBag := parser.ParseAll([]parser.File{{Name: "t.hx", Text: `
N::User { name: String }
QUERY GetUsers() =>
  users <- N<User>
  RETURN users
QUERY AddUser(name: String) =>
  user <- AddN<User>({name: name})
  RETURN user
`}})
	require.False(t, parseBag.HasErrors(), "%v", parseBag.All())
	bag := &diag.Bag{}
	table := schema.NewBuilder(bag).Build(src2)
	require.False(t, bag.HasErrors(), "%v", bag.All())
	queries := analyzer.New(table.Latest(), bag).AnalyzeAll(src2.Queries)
	require.False(t, bag.HasErrors(), "%v", bag.All())

	files, err := codegen.GenerateFiles(table, src2.Migrations, queries, codegen.Options{Package: "generated"})
	require.NoError(t, err)
	assert.Contains(t, files, "schema.gen.go")
	assert.Contains(t, files, "getusers.gen.go")
	assert.Contains(t, files, "adduser.gen.go")
	assert.Contains(t, string(files["getusers.gen.go"]), "func GetUsersHandler(")
}

func TestGenerateReadOnlyQueryOpensReadTransaction(t *testing.T) {
	out, _ := compile(t, `
N::User { name: String }
QUERY GetUsers() =>
  users <- N<User>
  RETURN users
`)
	src := string(out)
	assert.Contains(t, src, "BeginRead")
	assert.NotContains(t, src, "BeginWrite")
}

func TestGenerateShortestPathEmitsWeightAndAlgorithm(t *testing.T) {
	out, _ := compile(t, `
N::City { name: String }
E::Road { From: City, To: City, Properties: { distance: F64 } }
QUERY Route(a: ID, b: ID) =>
  path <- N<City>(a)::SHORTEST_PATH_DIJKSTRA<Road>(a, b, WEIGHT(distance))
  RETURN path
`)
	src := string(out)
	assert.Contains(t, src, "ShortestPathArgs")
	assert.Contains(t, src, "PathDijkstra")
	assert.Contains(t, src, "distance")
}

func TestGenerateShortestPathAStarEmitsHeuristic(t *testing.T) {
	out, _ := compile(t, `
N::City { name: String, heat: F64 }
E::Road { From: City, To: City, Properties: { distance: F64 } }
QUERY Route(a: ID, b: ID) =>
  path <- N<City>(a)::SHORTEST_PATH_ASTAR<Road>(a, b, heat)
  RETURN path
`)
	src := string(out)
	assert.Contains(t, src, "PathAStar")
	assert.Contains(t, src, `"heat"`)
}

func TestGenerateAggregateReturnsKeyCountAndItems(t *testing.T) {
	out, _ := compile(t, `
N::Order { status: String, total: F64 }
QUERY OrdersByStatus() =>
  res <- N<Order>::GROUP_BY(status)
  RETURN res
`)
	src := string(out)
	assert.Contains(t, src, "Key")
	assert.Contains(t, src, `json:"key"`)
	assert.Contains(t, src, "Count")
	assert.Contains(t, src, `json:"count"`)
	assert.Contains(t, src, "Status")
}
