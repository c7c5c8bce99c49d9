// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package connectivity

import (
	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// ChannelStats summarizes one evidence channel over a set of interactions.
type ChannelStats struct {
	Channel string  `json:"channel" yaml:"channel"`
	NonZero int     `json:"non_zero" yaml:"non_zero"`
	Percent float64 `json:"non_zero_percent" yaml:"non_zero_percent"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Max     float64 `json:"max" yaml:"max"`
}

// Properties describes the network formed by a set of interactions.
type Properties struct {
	Proteins     int `json:"proteins" yaml:"proteins"`
	Interactions int `json:"interactions" yaml:"interactions"`

	// MeanDegree is 2E/N over distinct undirected edges.
	MeanDegree float64       `json:"mean_degree" yaml:"mean_degree"`
	Degrees    stats.Summary `json:"degree_distribution" yaml:"degree_distribution"`

	CombinedScores stats.Summary  `json:"combined_score_distribution" yaml:"combined_score_distribution"`
	Channels       []ChannelStats `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// NetworkProperties computes degree, score, and evidence-channel summaries.
// Channel statistics are only reported when every record is detailed.
func NetworkProperties(interactions []types.InteractionRecord) Properties {
	g := newGraph()
	combined := make([]float64, len(interactions))
	detailed := len(interactions) > 0
	for i, rec := range interactions {
		g.addEdge(rec.Protein1, rec.Protein2)
		combined[i] = rec.Combined
		if !rec.Detailed() {
			detailed = false
		}
	}

	degrees := make([]int, len(g.ids))
	for e := range g.edges {
		degrees[e[0]]++
		degrees[e[1]]++
	}

	p := Properties{
		Proteins:       len(g.ids),
		Interactions:   len(interactions),
		Degrees:        stats.SummarizeInts(degrees, stats.ComponentPercentiles...),
		CombinedScores: stats.Summarize(combined, stats.QualityPercentiles...),
	}
	if len(g.ids) > 0 {
		p.MeanDegree = 2 * float64(len(g.edges)) / float64(len(g.ids))
	}
	if detailed {
		p.Channels = channelStats(interactions)
	}
	return p
}

func channelStats(interactions []types.InteractionRecord) []ChannelStats {
	out := make([]ChannelStats, 0, types.NumChannels)
	for _, c := range types.Channels() {
		cs := ChannelStats{Channel: c.String()}
		var sum float64
		for _, rec := range interactions {
			v := rec.Channel(c)
			sum += v
			if v > 0 {
				cs.NonZero++
			}
			if v > cs.Max {
				cs.Max = v
			}
		}
		cs.Mean = sum / float64(len(interactions))
		cs.Percent = 100 * stats.Rate(cs.NonZero, len(interactions))
		out = append(out, cs)
	}
	return out
}

// ReduceStats describes a reduction to one component.
type ReduceStats struct {
	ComponentSize       int `json:"component_size" yaml:"component_size"`
	ProteinsBefore      int `json:"proteins_before" yaml:"proteins_before"`
	ProteinsAfter       int `json:"proteins_after" yaml:"proteins_after"`
	InteractionsBefore  int `json:"interactions_before" yaml:"interactions_before"`
	InteractionsAfter   int `json:"interactions_after" yaml:"interactions_after"`
	ProteinsDropped     int `json:"proteins_dropped" yaml:"proteins_dropped"`
	InteractionsDropped int `json:"interactions_dropped" yaml:"interactions_dropped"`

	Network Properties `json:"network" yaml:"network"`
}

// ReduceToComponent keeps the proteins in component and the interactions
// whose endpoints are both in component, preserving input order.
func ReduceToComponent(component []string, proteins []types.ProteinRecord, interactions []types.InteractionRecord) ([]types.ProteinRecord, []types.InteractionRecord, ReduceStats) {
	members := types.NewIDSet(component...)

	var keptInteractions []types.InteractionRecord
	for _, rec := range interactions {
		if members.Has(rec.Protein1) && members.Has(rec.Protein2) {
			keptInteractions = append(keptInteractions, rec)
		}
	}
	var keptProteins []types.ProteinRecord
	for _, p := range proteins {
		if members.Has(p.ID) {
			keptProteins = append(keptProteins, p)
		}
	}

	return keptProteins, keptInteractions, ReduceStats{
		ComponentSize:       len(members),
		ProteinsBefore:      len(proteins),
		ProteinsAfter:       len(keptProteins),
		InteractionsBefore:  len(interactions),
		InteractionsAfter:   len(keptInteractions),
		ProteinsDropped:     len(proteins) - len(keptProteins),
		InteractionsDropped: len(interactions) - len(keptInteractions),
		Network:             NetworkProperties(keptInteractions),
	}
}
