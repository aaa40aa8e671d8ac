package program

import "github.com/hammamikhairi/dojotimer/internal/domain"

// seed populates the catalog with built-in programs.
func (c *Catalog) seed() {
	programs := []domain.Program{
		uchikomiDrill(),
		randoriRounds(),
		toriUkeRotation(),
	}
	for _, p := range programs {
		c.programs[p.ID] = &p
	}
	c.log.Debug("seeded %d programs", len(programs))
}

func uchikomiDrill() domain.Program {
	return domain.Program{
		ID:    "uchikomi-drill",
		Title: "Uchikomi Drill",
		Rows: []domain.Row{
			{ID: "uchikomi", Name: "Uchikomi", DurationSec: 30, SetCount: 5},
			{ID: "rest", Name: "Rest", DurationSec: 15, SetCount: 1},
		},
	}
}

func randoriRounds() domain.Program {
	return domain.Program{
		ID:    "randori-rounds",
		Title: "Randori Rounds",
		Rows: []domain.Row{
			{ID: "randori", Name: "Randori", DurationSec: 240, SetCount: 4, HasSides: true},
			{ID: "break", Name: "Break", DurationSec: 60, SetCount: 1},
		},
	}
}

// toriUkeRotation mixes an ungrouped warm-up and cool-down with a role
// group that alternates tori and uke for three sets.
func toriUkeRotation() domain.Program {
	return domain.Program{
		ID:    "tori-uke-rotation",
		Title: "Tori / Uke Rotation",
		Rows: []domain.Row{
			{ID: "warmup", Name: "Warm-up", DurationSec: 120, SetCount: 1},
			{ID: "nagekomi", Name: "Nagekomi", DurationSec: 45, SetCount: 1, RoleGroupID: "pairs"},
			{ID: "switch", Name: "Switch", DurationSec: 10, SetCount: 1, RoleGroupID: "pairs"},
			{ID: "cooldown", Name: "Cool-down", DurationSec: 90, SetCount: 1},
		},
		RoleGroups: []domain.RoleGroup{{
			ID:                       "pairs",
			TimerIDs:                 []string{"nagekomi", "switch"},
			SetsMode:                 domain.SetsFixed,
			FixedSetsCount:           3,
			PersonAlternationEnabled: true,
		}},
	}
}
