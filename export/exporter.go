package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semprov/docstore"
	"github.com/c360studio/semprov/ledger"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

// Document is one top-level node and the model it is filed under.
type Document struct {
	Model string
	Node  *Node
}

// Name is the document's stable file name: a name-based UUID of its URI,
// partitioned by model and the UUID's first two characters.
func (d Document) Name(ext string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(d.Node.ID)).String()
	return d.Model + "/" + id[:2] + "/" + id + ext
}

// Marshal serializes the document with its JSON-LD context.
func (d Document) Marshal() ([]byte, error) {
	n := *d.Node
	n.Properties = make(map[string]any, len(d.Node.Properties)+1)
	for k, v := range d.Node.Properties {
		n.Properties[k] = v
	}
	n.Properties[linkedart.PropContext] = linkedart.Context
	return marshal(&n)
}

// Documents returns the book as documents: objects, then provenance entries,
// then parties, each in the book's order.
func Documents(book *ledger.Book) []Document {
	var docs []Document
	for _, o := range book.Objects() {
		docs = append(docs, Document{Model: linkedart.ClassHumanMadeObject, Node: ObjectNode(o)})
	}
	for _, e := range book.Entries() {
		docs = append(docs, Document{Model: linkedart.ClassActivity, Node: EntryNode(e)})
	}
	for _, p := range book.Parties() {
		model := p.Class
		if model == "" {
			model = linkedart.ClassPerson
		}
		docs = append(docs, Document{Model: model, Node: PartyNode(p)})
	}
	return docs
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFormat sets the layout of the written documents.
func WithFormat(f Format) Option {
	return func(e *Exporter) { e.format = f }
}

// WithWorkers sets how many documents are written concurrently.
func WithWorkers(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCounter records the written documents on c, labeled by model.
func WithCounter(c *prometheus.CounterVec) Option {
	return func(e *Exporter) { e.counter = c }
}

// NewDocumentCounter creates the written-documents counter and registers it
// on reg.
func NewDocumentCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semprov",
		Name:      "export_documents_total",
		Help:      "Documents written by the export, by model.",
	}, []string{"model"})
	reg.MustRegister(c)
	return c
}

// Exporter writes documents to a store.
type Exporter struct {
	store   docstore.Store
	format  Format
	workers int
	logger  *slog.Logger
	counter *prometheus.CounterVec
}

// NewExporter returns an exporter writing to store.
func NewExporter(store docstore.Store, opts ...Option) *Exporter {
	e := &Exporter{
		store:   store,
		format:  FormatJSONLD,
		workers: 8,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Write exports the book and returns the names written. The first failed
// write cancels the rest.
func (e *Exporter) Write(ctx context.Context, book *ledger.Book) ([]string, error) {
	info, ok := GetFormatInfo(e.format)
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", e.format)
	}
	files, err := e.layout(Documents(book), info)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, name := range names {
		f := files[name]
		g.Go(func() error {
			if err := e.store.Write(gctx, name, f.data); err != nil {
				return fmt.Errorf("export %s: %w", name, err)
			}
			if e.counter != nil {
				e.counter.WithLabelValues(f.model).Add(float64(f.docs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Info("Export written", "format", e.format, "files", len(names))
	return names, nil
}

type file struct {
	model string
	docs  int
	data  []byte
}

func (e *Exporter) layout(docs []Document, info FormatInfo) (map[string]*file, error) {
	files := make(map[string]*file)
	for _, d := range docs {
		data, err := d.Marshal()
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", d.Node.ID, err)
		}
		var name string
		switch info.Name {
		case FormatJSONL:
			name = d.Model + info.Extension
		default:
			name = d.Name(info.Extension)
		}
		f, ok := files[name]
		if !ok {
			f = &file{model: d.Model}
			files[name] = f
		}
		if info.Name == FormatJSONL {
			f.data = append(f.data, data...)
			f.data = append(f.data, '\n')
		} else {
			f.data = indent(data)
		}
		f.docs++
	}
	return files, nil
}

func indent(data []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return data
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
