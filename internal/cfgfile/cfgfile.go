// Package cfgfile reads a project's helix.yaml (spec SPEC_FULL.md §4.6,
// "Diagnostics rendering CLI & config"), grounded on the teacher
// dependency gopkg.in/yaml.v3 used for the same purpose the teacher would
// use it: declarative project configuration.
package cfgfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the decoded contents of a project's helix.yaml.
type Config struct {
	// Package is the Go package name for generated code.
	Package string `yaml:"package"`
	// SchemaVersion is the schema version named in helix.yaml. The helixc
	// CLI does not read it: code generation always uses the latest
	// declared schema version.
	SchemaVersion int `yaml:"schema_version"`
	// Features lists feature flag names (e.g. "mcp", "bm25"), queried with
	// HasFeature. The helixc CLI does not read it: the generated Config()
	// flags are derived from the analyzed queries.
	Features []string `yaml:"features"`
	// HNSW tunes the generated vector index (spec §6, "Config surface").
	HNSW HNSWConfig `yaml:"hnsw"`
	// SizeCap is the storage size cap echoed into the generated Config().
	SizeCap int `yaml:"size_cap"`
	// EmbeddingModel is the default embedding model echoed into the
	// generated Config(); per-query `#[model("...")]` macros override it.
	EmbeddingModel string `yaml:"embedding_model"`
}

// HNSWConfig is the project's vector-index build/search tuning.
type HNSWConfig struct {
	M              int `yaml:"m"`
	EfConstruction int `yaml:"ef_construction"`
	EfSearch       int `yaml:"ef_search"`
}

// Default returns the configuration used when no helix.yaml is present.
func Default() Config {
	return Config{Package: "generated"}
}

// Load reads and parses a helix.yaml file at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// HasFeature reports whether the named feature flag is set.
func (c Config) HasFeature(name string) bool {
	for _, f := range c.Features {
		if f == name {
			return true
		}
	}
	return false
}
