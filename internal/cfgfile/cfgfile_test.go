package cfgfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiron-dev/helixql/internal/cfgfile"
)

func TestLoadParsesPackageAndFeatures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "helix.yaml")
	require.NoError(t, os.WriteFile(path, []byte("package: myapp\nschema_version: 2\nfeatures: [mcp, bm25]\n"), 0o644))

	cfg, err := cfgfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "myapp", cfg.Package)
	assert.Equal(t, 2, cfg.SchemaVersion)
	assert.True(t, cfg.HasFeature("mcp"))
	assert.False(t, cfg.HasFeature("vector"))
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := cfgfile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultUsesGeneratedPackage(t *testing.T) {
	assert.Equal(t, "generated", cfgfile.Default().Package)
}
