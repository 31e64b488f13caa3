package storage

import (
	"context"
	"fmt"

	"github.com/c360studio/semprov/rewrite"
)

// MapStore persists the URI rewrite map. Load returns ErrNotFound when no
// map has been saved.
type MapStore interface {
	LoadMap(ctx context.Context) (rewrite.Map, error)
	SaveMap(ctx context.Context, m rewrite.Map) error
}

// MapFile keeps the rewrite map as a JSON object of URI to URI.
type MapFile struct {
	path string
}

// NewMapFile returns a store for path.
func NewMapFile(path string) *MapFile {
	return &MapFile{path: path}
}

// LoadMap reads the map file. A missing file returns ErrNotFound.
func (f *MapFile) LoadMap(_ context.Context) (rewrite.Map, error) {
	m := rewrite.Map{}
	if err := readJSON(f.path, &m); err != nil {
		return nil, fmt.Errorf("load rewrite map: %w", err)
	}
	return m, nil
}

// SaveMap replaces the map file atomically. A nil map is written as an
// empty object.
func (f *MapFile) SaveMap(_ context.Context, m rewrite.Map) error {
	if m == nil {
		m = rewrite.Map{}
	}
	if err := writeJSON(f.path, m); err != nil {
		return fmt.Errorf("save rewrite map: %w", err)
	}
	return nil
}
