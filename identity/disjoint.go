package identity

// DisjointSet is an arena union-find over dense integer handles.
type DisjointSet struct {
	parent []int
	size   []int
}

// NewDisjointSet returns a set of n singleton classes.
func NewDisjointSet(n int) *DisjointSet {
	d := &DisjointSet{}
	d.Grow(n)
	return d
}

// Grow extends the arena to n handles. Existing classes are kept.
func (d *DisjointSet) Grow(n int) {
	for i := len(d.parent); i < n; i++ {
		d.parent = append(d.parent, i)
		d.size = append(d.size, 1)
	}
}

// Len is the number of handles.
func (d *DisjointSet) Len() int {
	return len(d.parent)
}

// Find returns the root of x's class, halving paths on the way.
func (d *DisjointSet) Find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

// Union merges the classes of a and b and reports whether they were distinct.
func (d *DisjointSet) Union(a, b int) bool {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return false
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
	return true
}

// Classes groups all handles by root. Members are in ascending handle order.
func (d *DisjointSet) Classes() map[int][]int {
	out := make(map[int][]int)
	for i := range d.parent {
		r := d.Find(i)
		out[r] = append(out[r], i)
	}
	return out
}
