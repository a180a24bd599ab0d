package mst

// DisjointSet is a union-find structure over the integers [0, n) with full
// path compression and union by rank.
//
// A DisjointSet is not safe for concurrent use. Compute creates a fresh one
// per call.
type DisjointSet struct {
	parent []int
	rank   []int
	count  int
}

// NewDisjointSet creates n singleton sets. A negative n is treated as zero.
func NewDisjointSet(n int) *DisjointSet {
	if n < 0 {
		n = 0
	}
	ds := &DisjointSet{
		parent: make([]int, n),
		rank:   make([]int, n),
		count:  n,
	}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

// Len returns the number of elements
func (ds *DisjointSet) Len() int {
	return len(ds.parent)
}

// Count returns the number of disjoint sets
func (ds *DisjointSet) Count() int {
	return ds.count
}

// Find returns the representative of x's set. Every element on the path
// from x to the root is re-pointed directly at the root.
func (ds *DisjointSet) Find(x int) (int, error) {
	if err := ds.check(x); err != nil {
		return 0, err
	}

	root := x
	for ds.parent[root] != root {
		root = ds.parent[root]
	}
	for ds.parent[x] != root {
		next := ds.parent[x]
		ds.parent[x] = root
		x = next
	}
	return root, nil
}

// Union merges the sets containing x and y and reports whether a merge
// happened. The root of lower rank is attached under the root of higher rank.
// On equal rank y's root goes under x's root and x's root gains one rank.
func (ds *DisjointSet) Union(x, y int) (bool, error) {
	rx, err := ds.Find(x)
	if err != nil {
		return false, err
	}
	ry, err := ds.Find(y)
	if err != nil {
		return false, err
	}
	if rx == ry {
		return false, nil
	}

	switch {
	case ds.rank[rx] < ds.rank[ry]:
		ds.parent[rx] = ry
	case ds.rank[rx] > ds.rank[ry]:
		ds.parent[ry] = rx
	default:
		ds.parent[ry] = rx
		ds.rank[rx]++
	}
	ds.count--
	return true, nil
}

// Connected reports whether x and y are in the same set
func (ds *DisjointSet) Connected(x, y int) (bool, error) {
	rx, err := ds.Find(x)
	if err != nil {
		return false, err
	}
	ry, err := ds.Find(y)
	if err != nil {
		return false, err
	}
	return rx == ry, nil
}

func (ds *DisjointSet) check(x int) error {
	if x < 0 || x >= len(ds.parent) {
		return &IndexError{Index: x, Len: len(ds.parent)}
	}
	return nil
}
