package expand

import (
	"slices"

	"github.com/hammamikhairi/dojotimer/internal/domain"
)

// resolvedGroup is a role group with its references checked against the rows.
type resolvedGroup struct {
	id        string
	members   []int // row indices in row order
	mode      domain.SetsMode
	fixed     int
	alternate bool
}

// resolveGroups keeps only the memberships both sides agree on: the group
// lists the row id and the row does not claim a different group. A row
// belongs to at most one group; groups left without members are dropped.
func resolveGroups(rows []domain.Row, groups []domain.RoleGroup) (map[int]*resolvedGroup, []*resolvedGroup) {
	if len(groups) == 0 {
		return nil, nil
	}

	byID := make(map[string]int, len(rows))
	for i, r := range rows {
		if r.ID == "" {
			continue
		}
		if _, dup := byID[r.ID]; !dup {
			byID[r.ID] = i
		}
	}

	membership := make(map[int]*resolvedGroup)
	var out []*resolvedGroup

	for _, g := range groups {
		if g.ID == "" {
			continue
		}
		rg := &resolvedGroup{id: g.ID}
		for _, timerID := range g.TimerIDs {
			idx, ok := byID[timerID]
			if !ok {
				continue
			}
			if claimed := rows[idx].RoleGroupID; claimed != "" && claimed != g.ID {
				continue
			}
			if _, taken := membership[idx]; taken {
				continue
			}
			membership[idx] = rg
			rg.members = append(rg.members, idx)
		}
		if len(rg.members) == 0 {
			continue
		}
		slices.Sort(rg.members)
		applySettings(rg, g, rows[rg.members[0]])
		out = append(out, rg)
	}

	return membership, out
}

// applySettings copies the group's repeat settings, falling back to the
// denormalized copy on its first row when the group has no mode.
func applySettings(rg *resolvedGroup, g domain.RoleGroup, first domain.Row) {
	if g.SetsMode != "" {
		rg.mode = g.SetsMode
		rg.fixed = g.FixedSetsCount
		rg.alternate = g.PersonAlternationEnabled
		return
	}
	rg.mode = first.SetsMode
	rg.fixed = first.FixedSetsCount
	rg.alternate = first.PersonAlternationEnabled || g.PersonAlternationEnabled
	if rg.mode == "" {
		rg.mode = domain.SetsFixed
	}
}
