// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package connectivity

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ppi-curator/pkg/types"
)

func edge(p1, p2 string) types.InteractionRecord {
	return types.InteractionRecord{Protein1: p1, Protein2: p2, Combined: 0.9}
}

func proteins(ids ...string) []types.ProteinRecord {
	out := make([]types.ProteinRecord, len(ids))
	for i, id := range ids {
		out[i] = types.ProteinRecord{ID: id, Size: 100}
	}
	return out
}

func TestAnalyzeTwoComponents(t *testing.T) {
	interactions := []types.InteractionRecord{
		edge("A", "B"),
		edge("B", "C"),
		edge("D", "D"),
	}

	res := Analyze(interactions)
	assert.Equal(t, []string{"A", "B", "C"}, res.Largest)
	assert.Equal(t, 4, res.Stats.Vertices)
	assert.Equal(t, 2, res.Stats.Edges)
	assert.Equal(t, 1, res.Stats.SelfLoops)
	assert.Equal(t, 2, res.Stats.Components)
	assert.Equal(t, 1, res.Stats.SingletonComponents)
	assert.Equal(t, 3, res.Stats.LargestSize)
	assert.InDelta(t, 0.75, res.Stats.LargestFraction, 1e-12)
	assert.Equal(t, 2, res.Stats.ComponentSizes.Count)
	assert.Equal(t, 3.0, res.Stats.ComponentSizes.Max)

	kept, keptInteractions, st := ReduceToComponent(res.Largest, proteins("A", "B", "C", "D"), interactions)
	assert.Equal(t, proteins("A", "B", "C"), kept)
	assert.Equal(t, interactions[:2], keptInteractions)
	assert.Equal(t, 1, st.ProteinsDropped)
	assert.Equal(t, 1, st.InteractionsDropped)
	assert.Equal(t, 3, st.Network.Proteins)
	assert.InDelta(t, 4.0/3.0, st.Network.MeanDegree, 1e-12)
	assert.Equal(t, 1.0, st.Network.Degrees.Min)
	assert.Equal(t, 2.0, st.Network.Degrees.Max)
}

func TestAnalyzeDuplicateEdges(t *testing.T) {
	res := Analyze([]types.InteractionRecord{edge("A", "B"), edge("B", "A"), edge("A", "B")})
	assert.Equal(t, 1, res.Stats.Edges)
	assert.Equal(t, 2, res.Stats.DuplicateEdges)
	assert.Equal(t, 1, res.Stats.Components)
}

func TestLargestTieBreak(t *testing.T) {
	interactions := []types.InteractionRecord{
		edge("X", "Y"),
		edge("M", "N"),
		edge("B", "Z"),
	}
	res := Analyze(interactions)
	assert.Equal(t, []string{"B", "Z"}, res.Largest)

	// Input order must not matter.
	reversed := []types.InteractionRecord{interactions[2], interactions[1], interactions[0]}
	assert.Equal(t, res.Largest, Analyze(reversed).Largest)
}

func TestAnalyzeEmpty(t *testing.T) {
	res := Analyze(nil)
	assert.Empty(t, res.Largest)
	assert.Equal(t, 0, res.Stats.Components)
}

func reachable(from string, interactions []types.InteractionRecord) types.IDSet {
	adj := make(map[string][]string)
	for _, rec := range interactions {
		adj[rec.Protein1] = append(adj[rec.Protein1], rec.Protein2)
		adj[rec.Protein2] = append(adj[rec.Protein2], rec.Protein1)
	}
	seen := types.NewIDSet(from)
	queue := []string{from}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range adj[v] {
			if !seen.Has(w) {
				seen.Add(w)
				queue = append(queue, w)
			}
		}
	}
	return seen
}

func TestReduceConnectivityInvariant(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	var ids []string
	for i := range 60 {
		ids = append(ids, fmt.Sprintf("P%02d", i))
	}
	var interactions []types.InteractionRecord
	for range 70 {
		interactions = append(interactions, edge(ids[r.IntN(len(ids))], ids[r.IntN(len(ids))]))
	}

	res := Analyze(interactions)
	require.NotEmpty(t, res.Largest)
	kept, keptInteractions, _ := ReduceToComponent(res.Largest, proteins(ids...), interactions)

	keptIDs := types.NewIDSet()
	for _, p := range kept {
		keptIDs.Add(p.ID)
	}
	endpoints := types.NewIDSet()
	for _, rec := range keptInteractions {
		endpoints.Add(rec.Protein1)
		endpoints.Add(rec.Protein2)
	}
	assert.Equal(t, keptIDs, endpoints)
	assert.Equal(t, keptIDs, reachable(kept[0].ID, keptInteractions))

	again := Analyze(keptInteractions)
	assert.Equal(t, 1, again.Stats.Components)
	assert.Equal(t, res.Largest, again.Largest)
}

func TestNetworkPropertiesChannels(t *testing.T) {
	ev := func(exp, text float64) []float64 {
		e := make([]float64, types.NumChannels)
		e[types.ChannelExperimental] = exp
		e[types.ChannelTextmining] = text
		return e
	}
	interactions := []types.InteractionRecord{
		{Protein1: "A", Protein2: "B", Evidence: ev(0.8, 0), Combined: 0.9},
		{Protein1: "B", Protein2: "C", Evidence: ev(0, 0.4), Combined: 0.7},
	}
	p := NetworkProperties(interactions)
	require.Len(t, p.Channels, types.NumChannels)

	exp := p.Channels[types.ChannelExperimental]
	assert.Equal(t, "experimental", exp.Channel)
	assert.Equal(t, 1, exp.NonZero)
	assert.InDelta(t, 50.0, exp.Percent, 1e-12)
	assert.InDelta(t, 0.4, exp.Mean, 1e-12)
	assert.InDelta(t, 0.8, exp.Max, 1e-12)
	assert.Equal(t, 0, p.Channels[types.ChannelFusion].NonZero)
	assert.InDelta(t, 0.8, p.CombinedScores.Mean, 1e-12)

	basic := NetworkProperties([]types.InteractionRecord{edge("A", "B")})
	assert.Empty(t, basic.Channels)
}
