package program

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/hammamikhairi/dojotimer/internal/domain"
)

// Normalize validates p and returns a cleaned copy ready for expansion:
// names and ids trimmed, missing row ids generated, set counts at least 1,
// and role group references made consistent (dangling ids removed, empty
// groups dropped). Structural faults return domain.ErrInvalidProgram or
// domain.ErrEmptyProgram.
func Normalize(p domain.Program) (domain.Program, error) {
	p = clone(p)
	p.ID = strings.TrimSpace(p.ID)
	p.Title = strings.TrimSpace(p.Title)

	if p.ID == "" {
		return p, fmt.Errorf("program has no id: %w", domain.ErrInvalidProgram)
	}
	if len(p.Rows) == 0 {
		return p, fmt.Errorf("program %s: %w", p.ID, domain.ErrEmptyProgram)
	}
	if p.Title == "" {
		p.Title = p.ID
	}

	rowIDs := make(map[string]int, len(p.Rows))
	for i := range p.Rows {
		r := &p.Rows[i]
		r.ID = strings.TrimSpace(r.ID)
		r.Name = strings.TrimSpace(r.Name)
		r.RoleGroupID = strings.TrimSpace(r.RoleGroupID)
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, dup := rowIDs[r.ID]; dup {
			return p, fmt.Errorf("program %s: duplicate row id %q: %w", p.ID, r.ID, domain.ErrInvalidProgram)
		}
		rowIDs[r.ID] = i

		if r.DurationSec < 0 {
			return p, fmt.Errorf("program %s: row %q has negative duration: %w", p.ID, r.ID, domain.ErrInvalidProgram)
		}
		if r.SetCount < 1 {
			r.SetCount = 1
		}
		if err := checkMode(r.SetsMode); err != nil {
			return p, fmt.Errorf("program %s: row %q: %w", p.ID, r.ID, err)
		}
	}

	groups := make([]domain.RoleGroup, 0, len(p.RoleGroups))
	groupIDs := make(map[string]bool, len(p.RoleGroups))
	claimed := make(map[string]bool)
	for _, g := range p.RoleGroups {
		g.ID = strings.TrimSpace(g.ID)
		if g.ID == "" || groupIDs[g.ID] {
			return p, fmt.Errorf("program %s: missing or duplicate role group id %q: %w", p.ID, g.ID, domain.ErrInvalidProgram)
		}
		if err := checkMode(g.SetsMode); err != nil {
			return p, fmt.Errorf("program %s: group %q: %w", p.ID, g.ID, err)
		}

		var members []string
		for _, id := range g.TimerIDs {
			i, ok := rowIDs[id]
			if !ok || claimed[id] {
				continue
			}
			if own := p.Rows[i].RoleGroupID; own != "" && own != g.ID {
				continue
			}
			claimed[id] = true
			members = append(members, id)
		}
		if len(members) == 0 {
			continue
		}
		g.TimerIDs = members
		if g.SetsMode == domain.SetsFixed && g.FixedSetsCount < 1 {
			g.FixedSetsCount = 1
		}
		groupIDs[g.ID] = true
		groups = append(groups, g)
	}

	for i := range p.Rows {
		r := &p.Rows[i]
		switch {
		case claimed[r.ID]:
			for _, g := range groups {
				if slices.Contains(g.TimerIDs, r.ID) {
					r.RoleGroupID = g.ID
				}
			}
		case r.RoleGroupID != "":
			// Points at a group that does not list it.
			r.RoleGroupID = ""
		}
	}

	p.RoleGroups = nil
	if len(groups) > 0 {
		p.RoleGroups = groups
	}
	return p, nil
}

func checkMode(m domain.SetsMode) error {
	switch m {
	case "", domain.SetsFixed, domain.SetsInfinite:
		return nil
	default:
		return fmt.Errorf("unknown sets mode %q: %w", m, domain.ErrInvalidProgram)
	}
}
