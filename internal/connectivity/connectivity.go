// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package connectivity builds the undirected interaction graph, finds its
// connected components, and reduces a dataset to a single component.
package connectivity

import (
	"slices"
	"sort"

	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// Stats describes the connectivity of an interaction graph.
type Stats struct {
	Vertices int `json:"vertices" yaml:"vertices"`

	// Edges counts distinct undirected pairs; both orderings of a pair and
	// repeated rows collapse into one edge. Self-loops are counted apart.
	Edges          int `json:"edges" yaml:"edges"`
	DuplicateEdges int `json:"duplicate_edges" yaml:"duplicate_edges"`
	SelfLoops      int `json:"self_loops" yaml:"self_loops"`

	Components          int           `json:"components" yaml:"components"`
	SingletonComponents int           `json:"singleton_components" yaml:"singleton_components"`
	LargestSize         int           `json:"largest_component_size" yaml:"largest_component_size"`
	LargestFraction     float64       `json:"largest_component_fraction" yaml:"largest_component_fraction"`
	ComponentSizes      stats.Summary `json:"component_sizes" yaml:"component_sizes"`
}

// Result is the outcome of Analyze.
type Result struct {
	Stats Stats

	// Largest holds the members of the largest component in ascending order.
	Largest []string
}

type graph struct {
	ids   []string
	index map[string]int
	sets  dsu
	edges map[[2]int]struct{}
	loops int
	dups  int
}

func newGraph() *graph {
	return &graph{index: make(map[string]int), edges: make(map[[2]int]struct{})}
}

func (g *graph) vertex(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := g.sets.add()
	g.index[id] = i
	g.ids = append(g.ids, id)
	return i
}

func (g *graph) addEdge(p1, p2 string) {
	u, v := g.vertex(p1), g.vertex(p2)
	if u == v {
		g.loops++
		return
	}
	if u > v {
		u, v = v, u
	}
	key := [2]int{u, v}
	if _, ok := g.edges[key]; ok {
		g.dups++
		return
	}
	g.edges[key] = struct{}{}
	g.sets.union(u, v)
}

// components returns every component as a sorted member list.
func (g *graph) components() [][]string {
	byRoot := make(map[int][]string)
	var roots []int
	for i, id := range g.ids {
		r := g.sets.find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], id)
	}
	out := make([][]string, 0, len(roots))
	for _, r := range roots {
		members := byRoot[r]
		sort.Strings(members)
		out = append(out, members)
	}
	return out
}

// largest picks the component with the most members; among equal sizes the
// lexicographically smallest sorted member list wins.
func largest(comps [][]string) []string {
	var best []string
	for _, c := range comps {
		switch {
		case len(c) > len(best):
			best = c
		case len(c) == len(best) && slices.Compare(c, best) < 0:
			best = c
		}
	}
	return best
}

// Analyze builds the graph whose vertices are the endpoints of interactions
// and reports its components.
func Analyze(interactions []types.InteractionRecord) Result {
	g := newGraph()
	for _, rec := range interactions {
		g.addEdge(rec.Protein1, rec.Protein2)
	}

	comps := g.components()
	sizes := make([]int, len(comps))
	singletons := 0
	for i, c := range comps {
		sizes[i] = len(c)
		if len(c) == 1 {
			singletons++
		}
	}
	big := largest(comps)

	return Result{
		Stats: Stats{
			Vertices:            len(g.ids),
			Edges:               len(g.edges),
			DuplicateEdges:      g.dups,
			SelfLoops:           g.loops,
			Components:          len(comps),
			SingletonComponents: singletons,
			LargestSize:         len(big),
			LargestFraction:     stats.Rate(len(big), len(g.ids)),
			ComponentSizes:      stats.SummarizeInts(sizes, stats.ComponentPercentiles...),
		},
		Largest: big,
	}
}
