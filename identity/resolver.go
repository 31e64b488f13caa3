// Package identity resolves raw object identifiers to stable canonical keys
// and mints the URIs used throughout the ledger.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
)

// Resolver maps raw object identifiers to a canonical representative. It is
// built once per run and is read-only afterwards, so it is safe for
// concurrent use.
type Resolver struct {
	canonical map[string]string
	distinct  map[string]bool
}

// NewResolver merges the equivalence groups transitively and picks the
// lexicographically smallest member of each class as its representative.
// Identifiers in distinct are flagged as physically different objects that
// happen to share an identifier.
func NewResolver(groups [][]string, distinct []string) *Resolver {
	index := make(map[string]int)
	var ids []string
	intern := func(s string) int {
		if h, ok := index[s]; ok {
			return h
		}
		h := len(ids)
		index[s] = h
		ids = append(ids, s)
		return h
	}
	for _, g := range groups {
		for _, id := range g {
			intern(id)
		}
	}

	ds := NewDisjointSet(len(ids))
	for _, g := range groups {
		for i := 1; i < len(g); i++ {
			ds.Union(index[g[0]], index[g[i]])
		}
	}

	r := &Resolver{
		canonical: make(map[string]string, len(ids)),
		distinct:  make(map[string]bool, len(distinct)),
	}
	for _, members := range ds.Classes() {
		leader := ids[members[0]]
		for _, h := range members[1:] {
			if ids[h] < leader {
				leader = ids[h]
			}
		}
		for _, h := range members {
			r.canonical[ids[h]] = leader
		}
	}
	for _, id := range distinct {
		r.distinct[id] = true
	}
	return r
}

// Canonical returns the representative for id. Unknown identifiers are their
// own representative.
func (r *Resolver) Canonical(id string) string {
	if c, ok := r.canonical[id]; ok {
		return c
	}
	return id
}

// IsDistinct reports whether id is flagged as shared by distinct objects.
func (r *Resolver) IsDistinct(id string) bool {
	return r.distinct[id]
}

// Len is the number of identifiers that take part in an equivalence.
func (r *Resolver) Len() int {
	return len(r.canonical)
}

// ObjectKey returns the URI key for the object identified by id in the given
// record. A distinct-flagged id is qualified by the record number so that
// each record gets its own object.
func (r *Resolver) ObjectKey(recordNo, id string) []string {
	switch {
	case id == "":
		return []string{"Object", "Internal", recordNo}
	case r.IsDistinct(id):
		return []string{"Object", "flag-separated", id, recordNo}
	default:
		return []string{"Object", r.Canonical(id)}
	}
}

type sameObjectsFile struct {
	Objects [][]string `json:"objects"`
}

type differentObjectsFile struct {
	KnoedlerNumbers []string `json:"knoedler_numbers"`
}

// LoadEquivalences reads {"objects": [[id, ...], ...]}.
func LoadEquivalences(path string) ([][]string, error) {
	var f sameObjectsFile
	if err := readJSON(path, &f); err != nil {
		return nil, fmt.Errorf("load same-object groups: %w", err)
	}
	return f.Objects, nil
}

// LoadDistinct reads {"knoedler_numbers": [id, ...]}.
func LoadDistinct(path string) ([]string, error) {
	var f differentObjectsFile
	if err := readJSON(path, &f); err != nil {
		return nil, fmt.Errorf("load distinct objects: %w", err)
	}
	return f.KnoedlerNumbers, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
