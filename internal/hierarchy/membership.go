// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"sort"

	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// Membership indexes protein-to-cluster assignments. A protein may belong
// to several clusters; repeated rows collapse.
type Membership struct {
	byCluster  map[string][]string
	byProtein  map[string]int
	clusters   []string
	proteins   []string
	mappings   int
	duplicates int
}

// NewMembership indexes rows.
func NewMembership(rows []types.ClusterMembership) *Membership {
	m := &Membership{
		byCluster: make(map[string][]string),
		byProtein: make(map[string]int),
	}
	seen := make(map[types.ClusterMembership]struct{}, len(rows))
	for _, r := range rows {
		if _, ok := seen[r]; ok {
			m.duplicates++
			continue
		}
		seen[r] = struct{}{}
		m.byCluster[r.ClusterID] = append(m.byCluster[r.ClusterID], r.ProteinID)
		m.byProtein[r.ProteinID]++
		m.mappings++
	}
	for id, members := range m.byCluster {
		sort.Strings(members)
		m.clusters = append(m.clusters, id)
	}
	sort.Strings(m.clusters)
	for id := range m.byProtein {
		m.proteins = append(m.proteins, id)
	}
	sort.Strings(m.proteins)
	return m
}

// Empty reports whether there are no assignments.
func (m *Membership) Empty() bool { return m == nil || m.mappings == 0 }

// Members returns the proteins of cluster in ascending order.
func (m *Membership) Members(cluster string) []string { return m.byCluster[cluster] }

// Clusters returns every cluster with at least one protein, ascending.
func (m *Membership) Clusters() []string { return m.clusters }

// Proteins returns every assigned protein, ascending.
func (m *Membership) Proteins() []string { return m.proteins }

// Ranked returns clusters by descending member count, ties by ascending id.
func (m *Membership) Ranked() []string {
	out := append([]string(nil), m.clusters...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(m.byCluster[out[i]]) > len(m.byCluster[out[j]])
	})
	return out
}

// ClusterCount is one entry of the largest-clusters listing.
type ClusterCount struct {
	ClusterID string `json:"cluster_id" yaml:"cluster_id"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Members   int    `json:"members" yaml:"members"`
}

// Multiplicity describes how many clusters each protein belongs to.
type Multiplicity struct {
	SingleCluster    int     `json:"single_cluster" yaml:"single_cluster"`
	MultipleClusters int     `json:"multiple_clusters" yaml:"multiple_clusters"`
	MaxClusters      int     `json:"max_clusters" yaml:"max_clusters"`
	MeanClusters     float64 `json:"mean_clusters" yaml:"mean_clusters"`
}

// ClusterStats summarizes cluster metadata and membership.
type ClusterStats struct {
	TotalClusters        int            `json:"total_clusters" yaml:"total_clusters"`
	Mappings             int            `json:"mappings" yaml:"mappings"`
	DuplicateMappings    int            `json:"duplicate_mappings" yaml:"duplicate_mappings"`
	ProteinsWithClusters int            `json:"proteins_with_clusters" yaml:"proteins_with_clusters"`
	ClustersWithProteins int            `json:"clusters_with_proteins" yaml:"clusters_with_proteins"`
	ClusterSizes         stats.Summary  `json:"cluster_sizes" yaml:"cluster_sizes"`
	TopClusters          []ClusterCount `json:"top_clusters,omitempty" yaml:"top_clusters,omitempty"`
	Multiplicity         Multiplicity   `json:"multiplicity" yaml:"multiplicity"`
}

// TopClustersLimit caps ClusterStats.TopClusters.
const TopClustersLimit = 20

// ClusterStatistics summarizes info and membership. info may be nil; the
// cluster total then counts clusters seen in membership.
func ClusterStatistics(info []types.ClusterNode, m *Membership) ClusterStats {
	if m == nil {
		m = NewMembership(nil)
	}
	names := make(map[string]string, len(info))
	all := types.NewIDSet(m.clusters...)
	for _, n := range info {
		names[n.ID] = n.Name
		all.Add(n.ID)
	}

	sizes := make([]int, 0, len(m.clusters))
	for _, id := range m.clusters {
		sizes = append(sizes, len(m.byCluster[id]))
	}

	st := ClusterStats{
		TotalClusters:        len(all),
		Mappings:             m.mappings,
		DuplicateMappings:    m.duplicates,
		ProteinsWithClusters: len(m.proteins),
		ClustersWithProteins: len(m.clusters),
		ClusterSizes:         stats.SummarizeInts(sizes, stats.ClusterPercentiles...),
	}
	for i, id := range m.Ranked() {
		if i == TopClustersLimit {
			break
		}
		st.TopClusters = append(st.TopClusters, ClusterCount{ClusterID: id, Name: names[id], Members: len(m.byCluster[id])})
	}

	for _, n := range m.byProtein {
		if n == 1 {
			st.Multiplicity.SingleCluster++
		} else {
			st.Multiplicity.MultipleClusters++
		}
		if n > st.Multiplicity.MaxClusters {
			st.Multiplicity.MaxClusters = n
		}
	}
	st.Multiplicity.MeanClusters = stats.Rate(m.mappings, len(m.proteins))
	return st
}
