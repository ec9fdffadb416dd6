package codegen

import (
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/oneiron-dev/helixql/internal/analyzer"
	"github.com/oneiron-dev/helixql/internal/ast"
	"github.com/oneiron-dev/helixql/internal/schema"
)

// GenerateFiles renders a directory of per-query files instead of one
// concatenated module (spec §4.6's "directory of per-query files" mode):
// one shared schema/config/migration file plus one file per query,
// rendered in parallel with golang.org/x/sync/errgroup (teacher's
// generate.go/writer.go worker-pool pattern). The returned map keys are
// file names relative to the output directory.
func GenerateFiles(table *schema.Table, migrations []*ast.Migration, queries []*analyzer.Query, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(queries)+1)
	var mu sync.Mutex
	var g errgroup.Group

	g.Go(func() error {
		f := newFile(opts.pkg())
		writeHeader(f)
		if latest := table.Latest(); latest != nil {
			writeConfig(f, latest, queries, opts)
			writeSchemaStructs(f, latest)
		}
		for _, m := range migrations {
			writeMigration(f, m)
		}
		b, err := renderFile(f)
		if err != nil {
			return err
		}
		mu.Lock()
		out["schema.gen.go"] = b
		mu.Unlock()
		return nil
	})

	for _, q := range queries {
		q := q
		g.Go(func() error {
			f := newFile(opts.pkg())
			writeHeader(f)
			writeQuery(f, table.Latest(), q)
			b, err := renderFile(f)
			if err != nil {
				return err
			}
			mu.Lock()
			out[strings.ToLower(q.Source.Name)+".gen.go"] = b
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
