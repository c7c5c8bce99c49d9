// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hierarchy builds the cluster forest from parent/child edges and
// derives expert groups from it and from cluster membership.
package hierarchy

import (
	"sort"

	"github.com/pdiddy/ppi-curator/pkg/types"
)

// Forest is the directed parent-to-child cluster hierarchy. Multiple roots
// are allowed. Cycles are tolerated: nodes on a cycle that no root reaches
// get no depth and are reported as unreachable.
type Forest struct {
	nodes    []string
	children map[string][]string
	indeg    map[string]int
	edges    int
	roots    []string
	leaves   []string
	depth    map[string]int
}

// NewForest builds the forest from edges. Repeated edges collapse.
func NewForest(edges []types.ClusterEdge) *Forest {
	f := &Forest{
		children: make(map[string][]string),
		indeg:    make(map[string]int),
	}
	seen := make(map[[2]string]struct{})
	nodes := types.NewIDSet()
	for _, e := range edges {
		nodes.Add(e.Parent)
		nodes.Add(e.Child)
		key := [2]string{e.Parent, e.Child}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		f.children[e.Parent] = append(f.children[e.Parent], e.Child)
		f.indeg[e.Child]++
		f.edges++
	}
	for _, c := range f.children {
		sort.Strings(c)
	}

	f.nodes = nodes.Sorted()
	for _, n := range f.nodes {
		if f.indeg[n] == 0 {
			f.roots = append(f.roots, n)
		}
		if len(f.children[n]) == 0 {
			f.leaves = append(f.leaves, n)
		}
	}
	f.depth = f.bfs(f.roots, -1)
	return f
}

// bfs returns the shortest distance from any of sources to every node it
// reaches, stopping at cutoff when cutoff >= 0.
func (f *Forest) bfs(sources []string, cutoff int) map[string]int {
	dist := make(map[string]int, len(f.nodes))
	queue := make([]string, 0, len(sources))
	for _, s := range sources {
		if _, ok := dist[s]; !ok {
			dist[s] = 0
			queue = append(queue, s)
		}
	}
	for head := 0; head < len(queue); head++ {
		n := queue[head]
		d := dist[n]
		if cutoff >= 0 && d >= cutoff {
			continue
		}
		for _, c := range f.children[n] {
			if _, ok := dist[c]; !ok {
				dist[c] = d + 1
				queue = append(queue, c)
			}
		}
	}
	return dist
}

// Nodes returns every cluster id in ascending order.
func (f *Forest) Nodes() []string { return f.nodes }

// Roots returns the nodes with no parent in ascending order.
func (f *Forest) Roots() []string { return f.roots }

// Leaves returns the nodes with no children in ascending order.
func (f *Forest) Leaves() []string { return f.leaves }

// Children returns the direct children of id in ascending order.
func (f *Forest) Children(id string) []string { return f.children[id] }

// Depth returns the minimum distance of id from any root. ok is false for
// unknown nodes and nodes no root reaches.
func (f *Forest) Depth(id string) (depth int, ok bool) {
	depth, ok = f.depth[id]
	return depth, ok
}

// NodesAtDepth returns, in ascending order, every node that lies exactly
// depth edges below at least one root along that root's shortest paths.
// A node closer to another root still qualifies.
func (f *Forest) NodesAtDepth(depth int) []string {
	if depth < 0 {
		return nil
	}
	found := types.NewIDSet()
	for _, r := range f.roots {
		for n, d := range f.bfs([]string{r}, depth) {
			if d == depth {
				found.Add(n)
			}
		}
	}
	return found.Sorted()
}

// DepthCount is the number of nodes at one minimum depth.
type DepthCount struct {
	Depth int `json:"depth" yaml:"depth"`
	Nodes int `json:"nodes" yaml:"nodes"`
}

// ForestStats describes the shape of the forest.
type ForestStats struct {
	Nodes       int          `json:"nodes" yaml:"nodes"`
	Edges       int          `json:"edges" yaml:"edges"`
	Roots       int          `json:"roots" yaml:"roots"`
	Leaves      int          `json:"leaves" yaml:"leaves"`
	MaxDepth    int          `json:"max_depth" yaml:"max_depth"`
	Unreachable int          `json:"unreachable" yaml:"unreachable"`
	Depths      []DepthCount `json:"depths,omitempty" yaml:"depths,omitempty"`
}

// Stats summarizes the forest.
func (f *Forest) Stats() ForestStats {
	st := ForestStats{
		Nodes:       len(f.nodes),
		Edges:       f.edges,
		Roots:       len(f.roots),
		Leaves:      len(f.leaves),
		Unreachable: len(f.nodes) - len(f.depth),
	}
	counts := make(map[int]int)
	for _, d := range f.depth {
		counts[d]++
		if d > st.MaxDepth {
			st.MaxDepth = d
		}
	}
	for d := 0; d <= st.MaxDepth && len(f.depth) > 0; d++ {
		st.Depths = append(st.Depths, DepthCount{Depth: d, Nodes: counts[d]})
	}
	return st
}
