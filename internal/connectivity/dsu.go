// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package connectivity

// dsu is a disjoint-set union over dense vertex indices with path halving
// and union by size.
type dsu struct {
	parent []int
	size   []int
}

func (d *dsu) add() int {
	i := len(d.parent)
	d.parent = append(d.parent, i)
	d.size = append(d.size, 1)
	return i
}

func (d *dsu) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *dsu) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
}
