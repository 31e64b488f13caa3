package rewrite

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Defaults for NewEngine.
const (
	DefaultWorkers   = 8
	DefaultMinPrefix = 20
)

// Store is the document store the engine rewrites in place.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of documents rewritten concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMinPrefix sets how long the keys' common prefix must be before
// documents that do not contain it are skipped.
func WithMinPrefix(n int) Option {
	return func(e *Engine) { e.minPrefix = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDryRun counts the documents that would change without writing them.
func WithDryRun(dry bool) Option {
	return func(e *Engine) { e.dryRun = dry }
}

// WithCounter records each document's outcome on c, labeled by result.
func WithCounter(c *prometheus.CounterVec) Option {
	return func(e *Engine) { e.counter = c }
}

// NewDocumentCounter creates the per-document outcome counter and registers
// it on reg.
func NewDocumentCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semprov",
		Name:      "rewrite_documents_total",
		Help:      "Documents visited by the URI rewrite, by result.",
	}, []string{"result"})
	reg.MustRegister(c)
	return c
}

// Engine rewrites URIs in documents. The map is read-only once the engine is
// built, so one engine may serve many goroutines.
type Engine struct {
	m       Map
	lengths []int
	prefix  []byte
	filter  bool

	workers   int
	minPrefix int
	dryRun    bool
	logger    *slog.Logger
	counter   *prometheus.CounterVec
}

// NewEngine builds an engine for m. The map should already be compressed.
func NewEngine(m Map, opts ...Option) *Engine {
	e := &Engine{
		m:         m,
		workers:   DefaultWorkers,
		minPrefix: DefaultMinPrefix,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	// Keys come longest first, so the distinct lengths do too.
	for _, k := range m.Keys() {
		if n := len(e.lengths); n == 0 || e.lengths[n-1] != len(k) {
			e.lengths = append(e.lengths, len(k))
		}
	}

	prefix := m.CommonPrefix()
	e.prefix = []byte(prefix)
	e.filter = len(prefix) > e.minPrefix
	return e
}

// Prefix returns the keys' common prefix and whether it is long enough to
// filter documents.
func (e *Engine) Prefix() (string, bool) {
	return string(e.prefix), e.filter
}

// Rewrite returns doc with every mapped URI replaced, longest key first. A
// match directly followed by a letter, digit, '%' or ',' is part of a longer
// identifier and is left alone. The second result reports whether anything
// changed.
func (e *Engine) Rewrite(doc []byte) ([]byte, bool) {
	if len(e.m) == 0 {
		return doc, false
	}
	var out bytes.Buffer
	changed := false
	last := 0
	i := 0
	for i < len(doc) {
		if len(e.prefix) > 0 {
			j := bytes.Index(doc[i:], e.prefix)
			if j < 0 {
				break
			}
			i += j
		}
		key, ok := e.match(doc, i)
		if !ok {
			i++
			continue
		}
		if !changed {
			out.Grow(len(doc))
			changed = true
		}
		out.Write(doc[last:i])
		out.WriteString(e.m[key])
		i += len(key)
		last = i
	}
	if !changed {
		return doc, false
	}
	out.Write(doc[last:])
	return out.Bytes(), true
}

func (e *Engine) match(doc []byte, i int) (string, bool) {
	for _, n := range e.lengths {
		end := i + n
		if end > len(doc) {
			continue
		}
		if _, ok := e.m[string(doc[i:end])]; !ok {
			continue
		}
		if end < len(doc) && continues(doc[end]) {
			continue
		}
		return string(doc[i:end]), true
	}
	return "", false
}

func continues(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '%' || c == ','
}

// Run rewrites the named documents in place with a bounded pool of workers.
// Documents that fail are reported in the Report; the returned error is
// non-nil only when ctx is cancelled.
func (e *Engine) Run(ctx context.Context, store Store, names []string) (*Report, error) {
	rep := &Report{}
	if len(e.m) == 0 {
		rep.Unchanged = len(names)
		return rep, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, name := range names {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			e.rewriteOne(gctx, store, name, rep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, fmt.Errorf("rewrite documents: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("rewrite documents: %w", err)
	}

	e.logger.Info("URI rewrite finished",
		"documents", len(names),
		"rewritten", rep.Rewritten,
		"unchanged", rep.Unchanged,
		"skipped", rep.Skipped,
		"failed", rep.Failed())
	return rep, nil
}

func (e *Engine) rewriteOne(ctx context.Context, store Store, name string, rep *Report) {
	data, err := store.Read(ctx, name)
	if err != nil {
		e.fail(rep, name, "read", err)
		return
	}
	if e.filter && !bytes.Contains(data, e.prefix) {
		rep.add(&rep.Skipped)
		e.count("skipped")
		return
	}
	out, changed := e.Rewrite(data)
	if !changed {
		rep.add(&rep.Unchanged)
		e.count("unchanged")
		return
	}
	if !e.dryRun {
		if err := store.Write(ctx, name, out); err != nil {
			e.fail(rep, name, "write", err)
			return
		}
	}
	rep.add(&rep.Rewritten)
	e.count("rewritten")
}

func (e *Engine) fail(rep *Report, name, op string, err error) {
	e.logger.Warn("Document rewrite failed", "document", name, "op", op, "error", err)
	rep.fail(&DocumentError{Name: name, Op: op, Err: err})
	e.count("failed")
}

func (e *Engine) count(result string) {
	if e.counter != nil {
		e.counter.WithLabelValues(result).Inc()
	}
}

// Report summarizes a Run.
type Report struct {
	mu        sync.Mutex
	Rewritten int
	Unchanged int
	Skipped   int
	Errors    []*DocumentError
}

func (r *Report) add(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}

func (r *Report) fail(err *DocumentError) {
	r.mu.Lock()
	r.Errors = append(r.Errors, err)
	r.mu.Unlock()
}

// Failed returns the number of documents that could not be rewritten.
func (r *Report) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors)
}
