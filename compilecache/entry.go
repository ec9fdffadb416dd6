package compilecache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oneiron-dev/helixql/internal/analyzer"
	"github.com/oneiron-dev/helixql/internal/diag"
)

// Entry is what one cache slot holds for a single source file: the
// diagnostics its pipeline run produced and the fully annotated queries, so
// a CLI rerun over an unchanged file can skip straight to code generation.
type Entry struct {
	Diagnostics []diag.Diagnostic
	Queries     []*analyzer.Query
	// DefIDs lists the parse-time DefID (SPEC_FULL.md §3.5a) of every
	// schema item the source file contributed when this entry was built.
	// Key itself stays content-hash based; DefIDs lets a consumer confirm
	// which schema declarations a hit is actually standing in for, without
	// re-parsing the file.
	DefIDs []uuid.UUID
}

// Key returns the cache key for a source file's bytes: its queries are
// invalidated the moment a single byte of the file changes, so the key is
// simply the file's content hash (spec SPEC_FULL.md §4, "Compile cache").
func Key(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Encode msgpack-encodes an Entry for storage (teacher dependency
// vmihailenco/msgpack/v5, repurposed from SQL row encoding to cache
// payloads).
func Encode(e Entry) ([]byte, error) {
	return msgpack.Marshal(e)
}

// Decode is the inverse of Encode.
func Decode(b []byte) (Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
