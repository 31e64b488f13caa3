package graph

import (
	"fmt"
	"sort"

	"github.com/c360studio/semprov/identity"
	"github.com/c360studio/semprov/record"
)

// UnknownLotPolicy decides what Finalize does with citations of lots that no
// processed record ever produced.
type UnknownLotPolicy string

const (
	// SkipUnknownLots rejects the edge and records a diagnostic.
	SkipUnknownLots UnknownLotPolicy = "skip"
	// FailOnUnknownLots makes Finalize return an *UnknownLotError.
	FailOnUnknownLots UnknownLotPolicy = "error"
)

// DiagnosticKind classifies a rejected citation.
type DiagnosticKind string

const (
	// MultiObjectLot marks a cited lot that covers more than one object, or
	// a key claimed as the later sale by more than one distinct earlier key.
	MultiObjectLot DiagnosticKind = "multi_object_lot"
	// UnknownLot marks a cited lot that was never observed.
	UnknownLot DiagnosticKind = "unknown_lot"
)

// Diagnostic explains why citations of Lot produced no rewrite.
type Diagnostic struct {
	Kind      DiagnosticKind         `json:"kind"`
	Lot       record.SaleRecordKey   `json:"lot"`
	Observed  int                    `json:"observed"`
	Claimants []record.SaleRecordKey `json:"claimants"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (observed %d, cited by %d)", d.Kind, d.Lot, d.Observed, len(d.Claimants))
}

// Member is a node of a component with its distance from the canonical key.
type Member struct {
	Key   record.SaleRecordKey `json:"key"`
	URI   string               `json:"uri"`
	Steps int                  `json:"steps"`
}

// Link is an accepted edge expressed in keys.
type Link struct {
	From record.SaleRecordKey `json:"from"`
	To   record.SaleRecordKey `json:"to"`
}

// Component is one group of records resolved to the same object.
type Component struct {
	Canonical record.SaleRecordKey `json:"canonical"`
	Members   []Member             `json:"members"`
	Links     []Link               `json:"links"`
	Reused    bool                 `json:"reused"`
}

// Result is the outcome of Finalize.
type Result struct {
	// Rewrites maps member object URIs to the canonical object URI.
	Rewrites    map[string]string
	Components  []Component
	Diagnostics []Diagnostic
	Accepted    int
	Rejected    int
	Reused      int
}

// Finalize decides which edges to accept, groups the graph into connected
// components and produces the URI rewrite map. The builder keeps its edges so
// that State can persist them for the next run.
func (b *Builder) Finalize(policy UnknownLotPolicy) (*Result, error) {
	// citers[c] holds every record citing c; claimants[t] holds the distinct
	// earlier keys that name t as their later sale.
	citers := make(map[int]map[int]bool)
	claimants := make(map[int]map[int]bool)
	for _, e := range b.edges {
		addTo(citers, e.Cited, e.citing())
		addTo(claimants, e.To, e.From)
	}

	res := &Result{Rewrites: make(map[string]string)}
	diagnosed := make(map[int]bool)
	var unknown []record.SaleRecordKey
	dsu := identity.NewDisjointSet(len(b.keys))
	adj := make(map[int][]int)
	var links []Edge

	for i, e := range b.edges {
		subject := e.Cited
		observed := b.LotCount(b.keys[e.Cited])
		var kind DiagnosticKind
		var claims map[int]bool
		switch {
		case observed == 0:
			kind, claims = UnknownLot, citers[e.Cited]
		case observed > 1:
			kind, claims = MultiObjectLot, citers[e.Cited]
		case len(claimants[e.To]) > 1:
			subject = e.To
			observed = b.LotCount(b.keys[e.To])
			kind, claims = MultiObjectLot, claimants[e.To]
		}

		ok := kind == ""
		if prev, seen := b.accepted[i]; seen && prev != ok {
			b.dirty[e.From] = true
			b.dirty[e.To] = true
		}
		b.accepted[i] = ok

		if !ok {
			res.Rejected++
			if !diagnosed[subject] {
				diagnosed[subject] = true
				res.Diagnostics = append(res.Diagnostics, b.diagnostic(kind, subject, observed, claims))
				if kind == UnknownLot {
					unknown = append(unknown, b.keys[subject])
				}
			}
			continue
		}
		res.Accepted++
		dsu.Union(e.From, e.To)
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
		links = append(links, e)
	}

	sort.Slice(res.Diagnostics, func(i, j int) bool {
		return res.Diagnostics[i].Lot.Less(res.Diagnostics[j].Lot)
	})
	if len(unknown) > 0 {
		if policy == FailOnUnknownLots {
			sort.Slice(unknown, func(i, j int) bool { return unknown[i].Less(unknown[j]) })
			return nil, &UnknownLotError{Lots: unknown}
		}
		b.logger.Warn("Citations of unobserved lots skipped", "count", len(unknown))
	}

	b.joinSharedURIs(dsu, adj)

	linksByRoot := make(map[int][]Edge)
	for _, e := range links {
		r := dsu.Find(e.From)
		linksByRoot[r] = append(linksByRoot[r], e)
	}

	for _, members := range b.sortedClasses(dsu) {
		root := dsu.Find(members[0])
		if len(linksByRoot[root]) == 0 {
			// A lone node, or records that already share one object URI.
			for _, m := range members {
				delete(b.cache, m)
			}
			continue
		}
		steps, reused := b.resolve(members, adj)
		canonical := -1
		for h, s := range steps {
			if s == 0 {
				canonical = h
			}
		}
		comp := b.component(canonical, members, steps, linksByRoot[root])
		comp.Reused = reused
		if reused {
			res.Reused++
		}
		res.Components = append(res.Components, comp)

		target := b.URI(canonical)
		for _, m := range members {
			if m == canonical {
				continue
			}
			if u := b.URI(m); u != target {
				res.Rewrites[u] = target
			}
		}
	}

	sort.Slice(res.Components, func(i, j int) bool {
		return res.Components[i].Canonical.Less(res.Components[j].Canonical)
	})
	for h := range b.dirty {
		delete(b.dirty, h)
	}
	b.logger.Info("Post-sale graph finalized",
		"nodes", len(b.keys),
		"edges", len(b.edges),
		"accepted", res.Accepted,
		"rejected", res.Rejected,
		"components", len(res.Components),
		"reused", res.Reused,
		"rewrites", len(res.Rewrites))
	return res, nil
}

func addTo(sets map[int]map[int]bool, key, member int) {
	set := sets[key]
	if set == nil {
		set = make(map[int]bool)
		sets[key] = set
	}
	set[member] = true
}

// joinSharedURIs unions records observed with the same object URI. They
// describe one object, so they must resolve to one canonical key.
func (b *Builder) joinSharedURIs(dsu *identity.DisjointSet, adj map[int][]int) {
	byURI := make(map[string][]int)
	for h, u := range b.uris {
		byURI[u] = append(byURI[u], h)
	}
	for _, hs := range byURI {
		if len(hs) < 2 {
			continue
		}
		b.sortHandles(hs)
		for i := 1; i < len(hs); i++ {
			dsu.Union(hs[0], hs[i])
			adj[hs[0]] = append(adj[hs[0]], hs[i])
			adj[hs[i]] = append(adj[hs[i]], hs[0])
		}
	}
}

// sortedClasses returns the union-find classes, each sorted by key, in order
// of their smallest key.
func (b *Builder) sortedClasses(dsu *identity.DisjointSet) [][]int {
	classes := dsu.Classes()
	out := make([][]int, 0, len(classes))
	for _, members := range classes {
		b.sortHandles(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return b.less(out[i][0], out[j][0]) })
	return out
}

// resolve returns each member's distance from the component's canonical key.
// When no member changed since the cache was written and the cache covers the
// whole component with one canonical key, the cached distances are reused.
func (b *Builder) resolve(members []int, adj map[int][]int) (map[int]int, bool) {
	if steps, ok := b.cached(members); ok {
		return steps, true
	}

	canonical := members[0]
	for _, m := range members[1:] {
		if b.less(m, canonical) {
			canonical = m
		}
	}

	steps := map[int]int{canonical: 0}
	queue := []int{canonical}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range adj[n] {
			if _, seen := steps[next]; seen {
				continue
			}
			steps[next] = steps[n] + 1
			queue = append(queue, next)
		}
	}
	for h, s := range steps {
		b.cache[h] = cacheEntry{canonical: canonical, steps: s}
	}
	return steps, false
}

func (b *Builder) cached(members []int) (map[int]int, bool) {
	canonical := -1
	steps := make(map[int]int, len(members))
	for _, m := range members {
		if b.dirty[m] {
			return nil, false
		}
		c, ok := b.cache[m]
		if !ok {
			return nil, false
		}
		if canonical == -1 {
			canonical = c.canonical
		}
		if c.canonical != canonical {
			return nil, false
		}
		steps[m] = c.steps
	}
	if s, ok := steps[canonical]; !ok || s != 0 {
		return nil, false
	}
	return steps, true
}

func (b *Builder) component(canonical int, members []int, steps map[int]int, edges []Edge) Component {
	sorted := append([]int(nil), members...)
	b.sortHandles(sorted)
	comp := Component{Canonical: b.keys[canonical]}
	for _, m := range sorted {
		comp.Members = append(comp.Members, Member{Key: b.keys[m], URI: b.URI(m), Steps: steps[m]})
	}
	seen := make(map[[2]int]bool)
	for _, e := range edges {
		pair := [2]int{e.From, e.To}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		comp.Links = append(comp.Links, Link{From: b.keys[e.From], To: b.keys[e.To]})
	}
	sort.Slice(comp.Links, func(i, j int) bool {
		if comp.Links[i].From != comp.Links[j].From {
			return comp.Links[i].From.Less(comp.Links[j].From)
		}
		return comp.Links[i].To.Less(comp.Links[j].To)
	})
	return comp
}

func (b *Builder) diagnostic(kind DiagnosticKind, subject, observed int, claimants map[int]bool) Diagnostic {
	d := Diagnostic{Kind: kind, Lot: b.keys[subject], Observed: observed}
	hs := make([]int, 0, len(claimants))
	for h := range claimants {
		hs = append(hs, h)
	}
	b.sortHandles(hs)
	for _, h := range hs {
		d.Claimants = append(d.Claimants, b.keys[h])
	}
	return d
}
