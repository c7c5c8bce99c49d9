// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// FlatGroups ranks clusters by member count (ties by id), selects up to
// maxExperts of those with at least minSize members, and makes each one an
// expert group. Proteins of universe or membership left outside every
// selected cluster form the "expert_others" group.
func FlatGroups(m *Membership, universe []string, minSize, maxExperts int) []types.ExpertGroup {
	var groups []types.ExpertGroup
	clustered := types.NewIDSet()
	for _, id := range m.Ranked() {
		if len(groups) >= maxExperts {
			break
		}
		members := m.Members(id)
		if len(members) < minSize {
			// Ranked is descending, so no later cluster qualifies.
			break
		}
		groups = append(groups, types.ExpertGroup{
			Name:     types.ExpertPrefix + id,
			Proteins: append([]string(nil), members...),
		})
		for _, p := range members {
			clustered.Add(p)
		}
	}

	rest := types.NewIDSet()
	for _, p := range m.Proteins() {
		if !clustered.Has(p) {
			rest.Add(p)
		}
	}
	for _, p := range universe {
		if !clustered.Has(p) {
			rest.Add(p)
		}
	}
	if len(rest) > 0 {
		groups = append(groups, types.ExpertGroup{Name: types.ExpertOthers, Proteins: rest.Sorted()})
	}
	return groups
}

// HierarchicalGroups makes one expert group per cluster lying exactly depth
// levels below a root, holding that cluster's direct members. Clusters with
// no members are skipped. Groups are ordered by cluster id.
func HierarchicalGroups(f *Forest, m *Membership, depth int) []types.ExpertGroup {
	var groups []types.ExpertGroup
	for _, id := range f.NodesAtDepth(depth) {
		members := m.Members(id)
		if len(members) == 0 {
			continue
		}
		groups = append(groups, types.ExpertGroup{
			Name:     types.ExpertHierarchicalPrefix + id,
			Proteins: append([]string(nil), members...),
		})
	}
	return groups
}

// RandomGroups shuffles the distinct proteins of universe with a PCG source
// seeded by seed and splits them into at most k groups whose sizes differ by
// at most one. Every protein lands in exactly one group. Members of each
// group are sorted.
func RandomGroups(universe []string, k int, seed uint64) []types.ExpertGroup {
	ids := types.NewIDSet(universe...).Sorted()
	n := len(ids)
	if n == 0 || k <= 0 {
		return nil
	}
	k = min(k, n)

	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	groups := make([]types.ExpertGroup, k)
	for i := range k {
		part := append([]string(nil), ids[i*n/k:(i+1)*n/k]...)
		sort.Strings(part)
		groups[i] = types.ExpertGroup{Name: types.ExpertPrefix + strconv.Itoa(i), Proteins: part}
	}
	return groups
}

// Degradation records a grouping mode that could not be honored.
type Degradation struct {
	From   types.GroupingMode `json:"from" yaml:"from"`
	To     types.GroupingMode `json:"to" yaml:"to"`
	Reason string             `json:"reason" yaml:"reason"`
}

func (d Degradation) String() string {
	return fmt.Sprintf("%s grouping fell back to %s: %s", d.From, d.To, d.Reason)
}

// GroupSummary describes a set of expert groups.
type GroupSummary struct {
	Groups  int           `json:"groups" yaml:"groups"`
	Members int           `json:"members" yaml:"members"`
	Sizes   stats.Summary `json:"group_sizes" yaml:"group_sizes"`
}

// Summarize describes groups.
func Summarize(groups []types.ExpertGroup) GroupSummary {
	sizes := make([]int, len(groups))
	total := 0
	for i, g := range groups {
		sizes[i] = len(g.Proteins)
		total += len(g.Proteins)
	}
	return GroupSummary{Groups: len(groups), Members: total, Sizes: stats.SummarizeInts(sizes)}
}

// GroupStats describes how expert groups were derived.
type GroupStats struct {
	RequestedMode types.GroupingMode `json:"requested_mode" yaml:"requested_mode"`
	Mode          types.GroupingMode `json:"mode" yaml:"mode"`
	Degradations  []Degradation      `json:"degradations,omitempty" yaml:"degradations,omitempty"`
	Summary       GroupSummary       `json:"summary" yaml:"summary"`
}

// GroupInput carries the optional cluster data. A nil or empty Membership
// or Forest means the corresponding file was not available. Universe lists
// the proteins that random and flat grouping must cover.
type GroupInput struct {
	Membership *Membership
	Forest     *Forest
	Universe   []string
}

// ValidateGroupingConfig checks cfg for values no grouping mode accepts.
func ValidateGroupingConfig(cfg types.GroupingConfig) error {
	switch cfg.Mode {
	case types.GroupingHierarchical, types.GroupingFlat, types.GroupingRandom:
	default:
		return fmt.Errorf("unknown grouping mode %q", cfg.Mode)
	}
	if cfg.MaxExperts <= 0 {
		return fmt.Errorf("max experts must be positive, got %d", cfg.MaxExperts)
	}
	if cfg.MinClusterSize < 0 {
		return fmt.Errorf("min cluster size must not be negative, got %d", cfg.MinClusterSize)
	}
	if cfg.TargetDepth < 0 {
		return fmt.Errorf("target depth must not be negative, got %d", cfg.TargetDepth)
	}
	return nil
}

// ExpertGroups derives groups in the configured mode. Missing cluster data
// degrades hierarchical to flat and flat to random; each step is recorded
// in the returned stats.
func ExpertGroups(cfg types.GroupingConfig, in GroupInput) ([]types.ExpertGroup, GroupStats, error) {
	if err := ValidateGroupingConfig(cfg); err != nil {
		return nil, GroupStats{}, err
	}
	st := GroupStats{RequestedMode: cfg.Mode}
	mode := cfg.Mode
	degrade := func(to types.GroupingMode, reason string) {
		st.Degradations = append(st.Degradations, Degradation{From: mode, To: to, Reason: reason})
		mode = to
	}

	var groups []types.ExpertGroup
	if mode == types.GroupingHierarchical {
		switch {
		case in.Forest == nil || len(in.Forest.Nodes()) == 0:
			degrade(types.GroupingFlat, "no cluster tree data")
		case in.Membership.Empty():
			degrade(types.GroupingFlat, "no cluster membership data")
		default:
			groups = HierarchicalGroups(in.Forest, in.Membership, cfg.TargetDepth)
			if len(groups) == 0 {
				degrade(types.GroupingFlat, fmt.Sprintf("no clusters with members at depth %d", cfg.TargetDepth))
			}
		}
	}
	if mode == types.GroupingFlat {
		if in.Membership.Empty() {
			degrade(types.GroupingRandom, "no cluster membership data")
		} else {
			groups = FlatGroups(in.Membership, in.Universe, cfg.MinClusterSize, cfg.MaxExperts)
		}
	}
	if mode == types.GroupingRandom {
		groups = RandomGroups(in.Universe, cfg.MaxExperts, cfg.Seed)
	}

	st.Mode = mode
	st.Summary = Summarize(groups)
	return groups, st, nil
}
