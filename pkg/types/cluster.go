// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ClusterNode is one row of a clusters.info file.
type ClusterNode struct {
	ID          string `json:"cluster_id" yaml:"cluster_id"`
	Name        string `json:"cluster_name" yaml:"cluster_name"`
	Description string `json:"cluster_description" yaml:"cluster_description"`

	// Size is the declared member count; 0 when the column is absent.
	Size int `json:"cluster_size" yaml:"cluster_size"`
}

// ClusterMembership is one row of a clusters.proteins file.
type ClusterMembership struct {
	ClusterID string `json:"cluster_id" yaml:"cluster_id"`
	ProteinID string `json:"protein_id" yaml:"protein_id"`
}

// ClusterEdge is one row of a clusters.tree file. The forest is built with
// edges pointing from Parent to Child.
type ClusterEdge struct {
	Child  string `json:"child_cluster_id" yaml:"child_cluster_id"`
	Parent string `json:"parent_cluster_id" yaml:"parent_cluster_id"`

	// Distance is the non-negative dissimilarity between the clusters.
	Distance float64 `json:"distance" yaml:"distance"`
}

// ExpertGroup is a named set of proteins assigned to one expert of a
// downstream mixture-of-experts model.
type ExpertGroup struct {
	Name     string   `json:"name" yaml:"name"`
	Proteins []string `json:"proteins" yaml:"proteins"`
}

// Expert group naming.
const (
	ExpertPrefix             = "expert_"
	ExpertOthers             = "expert_others"
	ExpertHierarchicalPrefix = "expert_hierarchical_"
)
