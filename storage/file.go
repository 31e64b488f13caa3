package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/c360studio/semprov/graph"
)

// FileState keeps graph state in a single JSON document.
type FileState struct {
	path string
}

// NewFileState returns a store for path. Nothing is read until Load.
func NewFileState(path string) *FileState {
	return &FileState{path: path}
}

// Load decodes the state file, decompressing it when the path ends in .zst.
// A missing file returns ErrNotFound.
func (f *FileState) Load(_ context.Context) (*graph.State, error) {
	var s graph.State
	if err := readJSON(f.path, &s); err != nil {
		return nil, fmt.Errorf("load graph state: %w", err)
	}
	return &s, nil
}

// Save replaces the state file atomically.
func (f *FileState) Save(_ context.Context, s *graph.State) error {
	if err := writeJSON(f.path, s); err != nil {
		return fmt.Errorf("save graph state: %w", err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (f *FileState) Close() error { return nil }

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

func readJSON(path string, v any) error {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return err
	}
	defer file.Close()

	var r io.Reader = file
	if compressed(path) {
		dec, err := zstd.NewReader(file)
		if err != nil {
			return fmt.Errorf("open zstd %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	if compressed(path) {
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return err
		}
		if err := json.NewEncoder(enc).Encode(v); err != nil {
			enc.Close()
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("compress %s: %w", path, err)
		}
	} else {
		e := json.NewEncoder(&buf)
		e.SetIndent("", "  ")
		if err := e.Encode(v); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}
	return writeFileAtomic(path, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
