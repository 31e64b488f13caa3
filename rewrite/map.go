// Package rewrite replaces object URIs across exported documents so that
// every record of the same object points at one canonical URI.
package rewrite

import (
	"sort"
)

// Map maps URIs to their replacements. After Compress every value is a
// fixpoint: no value is also a key, so applying the map twice changes
// nothing more than applying it once.
type Map map[string]string

// Merge adds other's entries to m. Entries in other win.
func (m Map) Merge(other Map) {
	for k, v := range other {
		m[k] = v
	}
}

// Compress returns a copy of m with every chain followed to its end.
// Self-mappings are dropped. A cycle, which a consistent run never produces,
// is broken by sending every member to the smallest URI in it.
func (m Map) Compress() Map {
	out := make(Map, len(m))
	for k := range m {
		target := m.resolve(k)
		if target != k {
			out[k] = target
		}
	}
	return out
}

func (m Map) resolve(k string) string {
	seen := map[string]bool{k: true}
	cur := k
	for {
		next, ok := m[cur]
		if !ok || next == cur {
			return cur
		}
		if seen[next] {
			// cycle: pick the smallest member
			least := next
			for c := m[next]; c != next; c = m[c] {
				if c < least {
					least = c
				}
			}
			return least
		}
		seen[next] = true
		cur = next
	}
}

// Apply returns the replacement for uri, or uri itself.
func (m Map) Apply(uri string) string {
	if v, ok := m[uri]; ok {
		return v
	}
	return uri
}

// Keys returns the keys longest first, ties in lexical order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// CommonPrefix returns the longest prefix shared by every key.
func (m Map) CommonPrefix() string {
	var prefix string
	first := true
	for k := range m {
		if first {
			prefix, first = k, false
			continue
		}
		n := 0
		for n < len(prefix) && n < len(k) && prefix[n] == k[n] {
			n++
		}
		prefix = prefix[:n]
		if prefix == "" {
			break
		}
	}
	return prefix
}
