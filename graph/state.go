package graph

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/c360studio/semprov/identity"
	"github.com/c360studio/semprov/record"
)

// StateVersion is the current layout of State.
const StateVersion = 1

// State is the serializable form of a Builder. Node handles are the indexes
// of Nodes.
type State struct {
	Version   int              `json:"version"`
	Nodes     []NodeState      `json:"nodes"`
	Edges     []EdgeState      `json:"edges"`
	Lots      []LotState       `json:"lots"`
	Canonical []CanonicalState `json:"canonical"`
}

// NodeState is one arena slot.
type NodeState struct {
	Key record.SaleRecordKey `json:"key"`
	URI string               `json:"uri,omitempty"`
}

// EdgeState is one citation edge and the decision made for it.
type EdgeState struct {
	From     int  `json:"from"`
	To       int  `json:"to"`
	Cited    int  `json:"cited"`
	Accepted bool `json:"accepted"`
}

// LotState is the observation count of a shared lot.
type LotState struct {
	Lot   record.SaleRecordKey `json:"lot"`
	Count int                  `json:"count"`
}

// CanonicalState is a cached resolution for one node.
type CanonicalState struct {
	Node      int `json:"node"`
	Canonical int `json:"canonical"`
	Steps     int `json:"steps"`
}

// State snapshots the builder. Slices are ordered so that equal builders
// produce equal snapshots.
func (b *Builder) State() *State {
	s := &State{Version: StateVersion}
	for h, k := range b.keys {
		s.Nodes = append(s.Nodes, NodeState{Key: k, URI: b.uris[h]})
	}
	for i, e := range b.edges {
		s.Edges = append(s.Edges, EdgeState{From: e.From, To: e.To, Cited: e.Cited, Accepted: b.accepted[i]})
	}
	for lot, n := range b.lots {
		s.Lots = append(s.Lots, LotState{Lot: lot, Count: n})
	}
	sort.Slice(s.Lots, func(i, j int) bool { return s.Lots[i].Lot.Less(s.Lots[j].Lot) })
	for h, c := range b.cache {
		s.Canonical = append(s.Canonical, CanonicalState{Node: h, Canonical: c.canonical, Steps: c.steps})
	}
	sort.Slice(s.Canonical, func(i, j int) bool { return s.Canonical[i].Node < s.Canonical[j].Node })
	return s
}

// Restore rebuilds a builder from a snapshot. Restored nodes are clean, so
// components untouched by the new run keep their cached resolution.
func Restore(s *State, minter *identity.Minter, logger *slog.Logger) (*Builder, error) {
	b := NewBuilder(minter, logger)
	if s == nil {
		return b, nil
	}
	if s.Version != StateVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrCorruptState, s.Version, StateVersion)
	}
	n := len(s.Nodes)
	valid := func(h int) bool { return h >= 0 && h < n }

	for h, node := range s.Nodes {
		if _, dup := b.index[node.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate node %s", ErrCorruptState, node.Key)
		}
		b.keys = append(b.keys, node.Key)
		b.index[node.Key] = h
		if node.URI != "" {
			b.uris[h] = node.URI
		}
	}
	for i, e := range s.Edges {
		if !valid(e.From) || !valid(e.To) || (e.Cited != e.From && e.Cited != e.To) {
			return nil, fmt.Errorf("%w: edge %d refers to unknown nodes", ErrCorruptState, i)
		}
		edge := Edge{From: e.From, To: e.To, Cited: e.Cited}
		if b.edgeSet[edge] {
			return nil, fmt.Errorf("%w: duplicate edge %d", ErrCorruptState, i)
		}
		b.edgeSet[edge] = true
		b.edges = append(b.edges, edge)
		b.accepted[i] = e.Accepted
	}
	for _, l := range s.Lots {
		b.lots[l.Lot] = l.Count
	}
	for _, c := range s.Canonical {
		if !valid(c.Node) || !valid(c.Canonical) {
			return nil, fmt.Errorf("%w: canonical entry for node %d", ErrCorruptState, c.Node)
		}
		b.cache[c.Node] = cacheEntry{canonical: c.Canonical, steps: c.Steps}
	}
	return b, nil
}
