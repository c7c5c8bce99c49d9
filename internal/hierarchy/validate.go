// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import "github.com/pdiddy/ppi-curator/pkg/types"

// ValidationStats describes what Validate removed.
type ValidationStats struct {
	GroupsBefore   int `json:"groups_before" yaml:"groups_before"`
	GroupsAfter    int `json:"groups_after" yaml:"groups_after"`
	MembersBefore  int `json:"members_before" yaml:"members_before"`
	MembersAfter   int `json:"members_after" yaml:"members_after"`
	DroppedMembers int `json:"dropped_members" yaml:"dropped_members"`
	DroppedGroups  int `json:"dropped_groups" yaml:"dropped_groups"`
}

// Validate intersects each group with final, dropping absent members and
// then groups left empty. Group order and member order are preserved.
func Validate(groups []types.ExpertGroup, final types.IDSet) ([]types.ExpertGroup, ValidationStats) {
	st := ValidationStats{GroupsBefore: len(groups)}
	var out []types.ExpertGroup
	for _, g := range groups {
		st.MembersBefore += len(g.Proteins)
		var kept []string
		for _, p := range g.Proteins {
			if final.Has(p) {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			continue
		}
		st.MembersAfter += len(kept)
		out = append(out, types.ExpertGroup{Name: g.Name, Proteins: kept})
	}
	st.GroupsAfter = len(out)
	st.DroppedGroups = st.GroupsBefore - st.GroupsAfter
	st.DroppedMembers = st.MembersBefore - st.MembersAfter
	return out, st
}
