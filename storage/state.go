// Package storage persists what a run needs to pick up where the previous one
// stopped: the post-sale graph state and the URI rewrite map.
package storage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/c360studio/semprov/graph"
)

// StateStore persists graph state between runs. Load returns ErrNotFound
// when no state has been saved.
type StateStore interface {
	Load(ctx context.Context) (*graph.State, error)
	Save(ctx context.Context, s *graph.State) error
	Close() error
}

// OpenState picks the backend from the path: .db, .sqlite and .sqlite3 open
// a SQLite database, anything else a JSON file (zstd-compressed when the
// name ends in .zst).
func OpenState(path string) (StateStore, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLiteState(path)
	default:
		return NewFileState(path), nil
	}
}
