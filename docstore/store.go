// Package docstore reads and writes the exported documents, either on the
// local filesystem or in an S3-compatible bucket.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when the document does not exist.
var ErrNotFound = errors.New("document not found")

// Store holds documents addressed by slash-separated names.
type Store interface {
	// List returns the names matching any of the doublestar patterns, sorted
	// and without duplicates.
	List(ctx context.Context, patterns []string) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i > 0 && s == sorted[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}
