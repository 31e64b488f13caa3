package record

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"
)

// maxLineSize bounds a single JSON line.
const maxLineSize = 16 << 20

// Reader streams records from JSON-lines files.
type Reader struct {
	files []string
	limit int
}

// NewReader expands the glob patterns (doublestar syntax, relative to root)
// into a sorted, de-duplicated file list. limit caps the number of records
// read per file; 0 means no limit.
func NewReader(root string, patterns []string, limit int) (*Reader, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files match %v", patterns)
	}
	sort.Strings(files)
	return &Reader{files: files, limit: limit}, nil
}

// Files returns the resolved input files.
func (r *Reader) Files() []string {
	return r.files
}

// Each calls fn for every record in file order. A malformed line stops the
// read with an error naming the file and line.
func (r *Reader) Each(ctx context.Context, fn func(*NormalizedSaleRecord) error) error {
	for _, path := range r.files {
		if err := r.readFile(ctx, path, fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readFile(ctx context.Context, path string, fn func(*NormalizedSaleRecord) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("open zstd records %s: %w", path, err)
		}
		defer dec.Close()
		src = dec
	}

	return Decode(ctx, src, r.limit, func(line int, rec *NormalizedSaleRecord, err error) error {
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		return fn(rec)
	})
}

// Decode reads JSON-lines records from src. Blank lines are skipped.
func Decode(ctx context.Context, src io.Reader, limit int, fn func(line int, rec *NormalizedSaleRecord, err error) error) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line, n := 0, 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if limit > 0 && n >= limit {
			break
		}
		n++

		var rec NormalizedSaleRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			if ferr := fn(line, nil, fmt.Errorf("decode record: %w", err)); ferr != nil {
				return ferr
			}
			continue
		}
		if err := fn(line, &rec, nil); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan records: %w", err)
	}
	return nil
}
