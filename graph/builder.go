// Package graph accumulates links between sale records that refer to the same
// physical object and resolves each linked group to a canonical record.
//
// Nodes live in an arena: a slice of sale keys addressed by integer handle,
// with a side index from key to handle. Edges, lot counts and the canonical
// cache refer to handles only, which keeps the state free of pointer cycles
// and trivially serializable.
package graph

import (
	"log/slog"
	"sort"

	"github.com/c360studio/semprov/identity"
	"github.com/c360studio/semprov/record"
)

// Edge links an earlier sale (From) to a later sale (To). Cited is the
// endpoint that was named by the citation; the other endpoint is the record
// that carried it.
type Edge struct {
	From  int
	To    int
	Cited int
}

func (e Edge) citing() int {
	if e.Cited == e.From {
		return e.To
	}
	return e.From
}

type cacheEntry struct {
	canonical int
	steps     int
}

// Builder accumulates citation edges during the main pass. It is not safe
// for concurrent use; shards must merge into a single builder before
// Finalize.
type Builder struct {
	keys    []record.SaleRecordKey
	index   map[record.SaleRecordKey]int
	uris    map[int]string
	edges   []Edge
	edgeSet map[Edge]bool

	// accepted remembers the previous run's decision per edge index.
	accepted map[int]bool
	lots     map[record.SaleRecordKey]int
	cache    map[int]cacheEntry
	dirty    map[int]bool

	minter *identity.Minter
	logger *slog.Logger
}

// NewBuilder returns an empty builder.
func NewBuilder(minter *identity.Minter, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		index:    make(map[record.SaleRecordKey]int),
		uris:     make(map[int]string),
		edgeSet:  make(map[Edge]bool),
		accepted: make(map[int]bool),
		lots:     make(map[record.SaleRecordKey]int),
		cache:    make(map[int]cacheEntry),
		dirty:    make(map[int]bool),
		minter:   minter,
		logger:   logger,
	}
}

func (b *Builder) intern(k record.SaleRecordKey) int {
	if h, ok := b.index[k]; ok {
		return h
	}
	h := len(b.keys)
	b.keys = append(b.keys, k)
	b.index[k] = h
	b.dirty[h] = true
	return h
}

// Observe records that a sale record with key was processed and minted
// objectURI for its object. Each distinct key counts once toward its shared
// lot, so records seen again on a later run do not inflate the count.
func (b *Builder) Observe(key record.SaleRecordKey, objectURI string) {
	h := b.intern(key)
	if objectURI == "" {
		objectURI = b.URI(h)
	}
	prev, seen := b.uris[h]
	if !seen {
		b.lots[key.SharedLot()]++
	}
	if prev != objectURI {
		b.uris[h] = objectURI
		b.dirty[h] = true
	}
}

// AddCitation records that the record with key subject cites another sale of
// the same object. A Prev citation yields cited → subject, a Post citation
// subject → cited. An edge already present is not added again.
func (b *Builder) AddCitation(subject, cited record.SaleRecordKey, dir record.Direction) {
	s, c := b.intern(subject), b.intern(cited)
	if s == c {
		return
	}
	e := Edge{From: c, To: s, Cited: c}
	if dir == record.Post {
		e = Edge{From: s, To: c, Cited: c}
	}
	if b.edgeSet[e] {
		return
	}
	b.edgeSet[e] = true
	b.edges = append(b.edges, e)
	b.dirty[s] = true
	b.dirty[c] = true
}

// Len returns the number of nodes and edges.
func (b *Builder) Len() (nodes, edges int) {
	return len(b.keys), len(b.edges)
}

// Key returns the key for a handle.
func (b *Builder) Key(h int) record.SaleRecordKey {
	return b.keys[h]
}

// URI returns the object URI for a handle: the URI minted when the record was
// observed, or a shared object URI derived from the key.
func (b *Builder) URI(h int) string {
	if u, ok := b.uris[h]; ok {
		return u
	}
	k := b.keys[h]
	return b.minter.Shared("OBJECT", k.Catalog, k.Lot, k.Date)
}

// LotCount returns how many records were observed for key's shared lot.
func (b *Builder) LotCount(key record.SaleRecordKey) int {
	return b.lots[key.SharedLot()]
}

func (b *Builder) less(a, c int) bool {
	return b.keys[a].Less(b.keys[c])
}

func (b *Builder) sortHandles(hs []int) {
	sort.Slice(hs, func(i, j int) bool { return b.less(hs[i], hs[j]) })
}
