// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ppi-curator/pkg/types"
)

// testForest has two roots (A, R) that both reach D, and a two-node cycle
// (X, Y) that no root reaches.
func testForest() *Forest {
	return NewForest([]types.ClusterEdge{
		{Child: "B", Parent: "A", Distance: 0.1},
		{Child: "C", Parent: "A", Distance: 0.2},
		{Child: "D", Parent: "B", Distance: 0.1},
		{Child: "E", Parent: "D", Distance: 0.3},
		{Child: "D", Parent: "R", Distance: 0.5},
		{Child: "Y", Parent: "X", Distance: 1},
		{Child: "X", Parent: "Y", Distance: 1},
		{Child: "B", Parent: "A", Distance: 0.1},
	})
}

func TestForestShape(t *testing.T) {
	f := testForest()
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "R", "X", "Y"}, f.Nodes())
	assert.Equal(t, []string{"A", "R"}, f.Roots())
	assert.Equal(t, []string{"C", "E"}, f.Leaves())
	assert.Equal(t, []string{"B", "C"}, f.Children("A"))
}

func TestForestDepths(t *testing.T) {
	f := testForest()
	tests := []struct {
		node  string
		depth int
		ok    bool
	}{
		{"A", 0, true},
		{"R", 0, true},
		{"B", 1, true},
		{"D", 1, true},
		{"E", 2, true},
		{"X", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			d, ok := f.Depth(tt.node)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.depth, d)
			}
		})
	}
}

func TestNodesAtDepth(t *testing.T) {
	f := testForest()
	assert.Equal(t, []string{"A", "R"}, f.NodesAtDepth(0))
	assert.Equal(t, []string{"B", "C", "D"}, f.NodesAtDepth(1))
	// D is two below A and E is two below R.
	assert.Equal(t, []string{"D", "E"}, f.NodesAtDepth(2))
	assert.Empty(t, f.NodesAtDepth(5))
	assert.Empty(t, f.NodesAtDepth(-1))
}

func TestForestStats(t *testing.T) {
	st := testForest().Stats()
	assert.Equal(t, 8, st.Nodes)
	assert.Equal(t, 7, st.Edges)
	assert.Equal(t, 2, st.Roots)
	assert.Equal(t, 2, st.Leaves)
	assert.Equal(t, 2, st.MaxDepth)
	assert.Equal(t, 2, st.Unreachable)
	assert.Equal(t, []DepthCount{{0, 2}, {1, 3}, {2, 1}}, st.Depths)
}

func TestForestSelfLoopAndEmpty(t *testing.T) {
	f := NewForest([]types.ClusterEdge{{Child: "L", Parent: "L"}})
	assert.Empty(t, f.Roots())
	assert.Equal(t, 1, f.Stats().Unreachable)

	empty := NewForest(nil)
	assert.Empty(t, empty.Nodes())
	assert.Equal(t, ForestStats{}, empty.Stats())
}

func membership(pairs ...string) *Membership {
	var rows []types.ClusterMembership
	for i := 0; i+1 < len(pairs); i += 2 {
		rows = append(rows, types.ClusterMembership{ClusterID: pairs[i], ProteinID: pairs[i+1]})
	}
	return NewMembership(rows)
}

func flatMembership() *Membership {
	return membership(
		"c1", "p3", "c1", "p1", "c1", "p2",
		"c3", "p6", "c3", "p7",
		"c2", "p4", "c2", "p5",
		"c4", "p8",
	)
}

func TestFlatGroups(t *testing.T) {
	groups := FlatGroups(flatMembership(), []string{"p1", "p9"}, 2, 2)
	assert.Equal(t, []types.ExpertGroup{
		{Name: "expert_c1", Proteins: []string{"p1", "p2", "p3"}},
		{Name: "expert_c2", Proteins: []string{"p4", "p5"}},
		{Name: "expert_others", Proteins: []string{"p6", "p7", "p8", "p9"}},
	}, groups)
}

func TestFlatGroupsMinSize(t *testing.T) {
	groups := FlatGroups(flatMembership(), nil, 3, 50)
	require.Len(t, groups, 2)
	assert.Equal(t, "expert_c1", groups[0].Name)
	assert.Equal(t, types.ExpertOthers, groups[1].Name)
	assert.Len(t, groups[1].Proteins, 5)
}

func TestHierarchicalGroups(t *testing.T) {
	m := membership("D", "p2", "D", "p1", "E", "p3", "B", "p4")
	groups := HierarchicalGroups(testForest(), m, 2)
	assert.Equal(t, []types.ExpertGroup{
		{Name: "expert_hierarchical_D", Proteins: []string{"p1", "p2"}},
		{Name: "expert_hierarchical_E", Proteins: []string{"p3"}},
	}, groups)
}

func universe(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("9606.P%04d", i)
	}
	return out
}

func TestRandomGroupsCoverage(t *testing.T) {
	u := universe(103)
	groups := RandomGroups(u, 10, 42)
	require.Len(t, groups, 10)

	seen := make(map[string]int)
	for i, g := range groups {
		assert.Equal(t, fmt.Sprintf("expert_%d", i), g.Name)
		assert.True(t, len(g.Proteins) == 10 || len(g.Proteins) == 11, "group %d has %d", i, len(g.Proteins))
		for _, p := range g.Proteins {
			seen[p]++
		}
	}
	require.Len(t, seen, len(u))
	for _, p := range u {
		assert.Equal(t, 1, seen[p], p)
	}

	assert.Equal(t, groups, RandomGroups(u, 10, 42))
}

func TestRandomGroupsSmall(t *testing.T) {
	groups := RandomGroups([]string{"b", "a", "c", "a"}, 50, 42)
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.Len(t, g.Proteins, 1)
	}
	assert.Nil(t, RandomGroups(nil, 5, 42))
}

func TestExpertGroupsFallsBackToRandom(t *testing.T) {
	u := universe(40)
	groups, st, err := ExpertGroups(types.DefaultGroupingConfig(), GroupInput{Universe: u})
	require.NoError(t, err)

	assert.Equal(t, types.GroupingHierarchical, st.RequestedMode)
	assert.Equal(t, types.GroupingRandom, st.Mode)
	require.Len(t, st.Degradations, 2)
	assert.Equal(t, types.GroupingFlat, st.Degradations[0].To)
	assert.Equal(t, types.GroupingRandom, st.Degradations[1].To)
	assert.Equal(t, "no cluster membership data", st.Degradations[1].Reason)

	covered := types.NewIDSet()
	total := 0
	for _, g := range groups {
		total += len(g.Proteins)
		for _, p := range g.Proteins {
			covered.Add(p)
		}
	}
	assert.Equal(t, len(u), total)
	assert.Equal(t, types.NewIDSet(u...), covered)
	assert.Equal(t, len(u), st.Summary.Members)
}

func TestExpertGroupsHierarchical(t *testing.T) {
	m := membership("D", "p1", "E", "p2")
	cfg := types.DefaultGroupingConfig()
	groups, st, err := ExpertGroups(cfg, GroupInput{Membership: m, Forest: testForest()})
	require.NoError(t, err)
	assert.Equal(t, types.GroupingHierarchical, st.Mode)
	assert.Empty(t, st.Degradations)
	assert.Len(t, groups, 2)
}

func TestExpertGroupsEmptyDepthFallsBackToFlat(t *testing.T) {
	cfg := types.DefaultGroupingConfig()
	cfg.TargetDepth = 5
	cfg.MinClusterSize = 1
	groups, st, err := ExpertGroups(cfg, GroupInput{Membership: flatMembership(), Forest: testForest()})
	require.NoError(t, err)
	assert.Equal(t, types.GroupingFlat, st.Mode)
	require.Len(t, st.Degradations, 1)
	assert.Contains(t, st.Degradations[0].String(), "depth 5")
	assert.Len(t, groups, 4)
}

func TestExpertGroupsMissingTree(t *testing.T) {
	cfg := types.DefaultGroupingConfig()
	cfg.MinClusterSize = 2
	_, st, err := ExpertGroups(cfg, GroupInput{Membership: flatMembership(), Forest: NewForest(nil)})
	require.NoError(t, err)
	assert.Equal(t, types.GroupingFlat, st.Mode)
	assert.Equal(t, "no cluster tree data", st.Degradations[0].Reason)
}

func TestExpertGroupsRejectsBadConfig(t *testing.T) {
	for _, mutate := range []func(*types.GroupingConfig){
		func(c *types.GroupingConfig) { c.Mode = "spectral" },
		func(c *types.GroupingConfig) { c.MaxExperts = 0 },
		func(c *types.GroupingConfig) { c.MinClusterSize = -1 },
		func(c *types.GroupingConfig) { c.TargetDepth = -2 },
	} {
		cfg := types.DefaultGroupingConfig()
		mutate(&cfg)
		_, _, err := ExpertGroups(cfg, GroupInput{})
		assert.Error(t, err)
	}
}

func TestValidate(t *testing.T) {
	groups := []types.ExpertGroup{
		{Name: "expert_c1", Proteins: []string{"a", "b", "x"}},
		{Name: "expert_c2", Proteins: []string{"y"}},
	}
	out, st := Validate(groups, types.NewIDSet("a", "b"))
	assert.Equal(t, []types.ExpertGroup{{Name: "expert_c1", Proteins: []string{"a", "b"}}}, out)
	assert.Equal(t, ValidationStats{
		GroupsBefore:   2,
		GroupsAfter:    1,
		MembersBefore:  4,
		MembersAfter:   2,
		DroppedMembers: 2,
		DroppedGroups:  1,
	}, st)

	// Inputs are untouched.
	assert.Len(t, groups[0].Proteins, 3)
}

func TestValidateInvariant(t *testing.T) {
	u := universe(50)
	final := types.NewIDSet(u[:17]...)
	out, _ := Validate(RandomGroups(u, 8, 7), final)
	for _, g := range out {
		assert.NotEmpty(t, g.Proteins)
		for _, p := range g.Proteins {
			assert.True(t, final.Has(p), p)
		}
	}
}

func TestClusterStatistics(t *testing.T) {
	m := membership("c1", "p1", "c1", "p2", "c1", "p1", "c2", "p1")
	info := []types.ClusterNode{
		{ID: "c1", Name: "kinases"},
		{ID: "c2", Name: "ligases"},
		{ID: "c9", Name: "orphans"},
	}
	st := ClusterStatistics(info, m)
	assert.Equal(t, 3, st.TotalClusters)
	assert.Equal(t, 3, st.Mappings)
	assert.Equal(t, 1, st.DuplicateMappings)
	assert.Equal(t, 2, st.ProteinsWithClusters)
	assert.Equal(t, 2, st.ClustersWithProteins)
	assert.Equal(t, 2.0, st.ClusterSizes.Max)
	assert.Equal(t, []ClusterCount{
		{ClusterID: "c1", Name: "kinases", Members: 2},
		{ClusterID: "c2", Name: "ligases", Members: 1},
	}, st.TopClusters)
	assert.Equal(t, Multiplicity{SingleCluster: 1, MultipleClusters: 1, MaxClusters: 2, MeanClusters: 1.5}, st.Multiplicity)
}

func TestClusterStatisticsNil(t *testing.T) {
	st := ClusterStatistics(nil, nil)
	assert.Equal(t, 0, st.TotalClusters)
	assert.Empty(t, st.TopClusters)
}
