// Package expand turns an authored program into the flat, ordered list of
// timed steps the engine plays.
package expand

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hammamikhairi/dojotimer/internal/domain"
)

// DefaultInfiniteSets is how many loops an infinite role group materializes
// when the host does not choose. It matches the display cap for set numbers.
const DefaultInfiniteSets = 99

// Option configures an expansion.
type Option func(*expander)

// WithInfiniteSets sets how many loops an infinite role group produces.
func WithInfiniteSets(n int) Option {
	return func(e *expander) {
		if n > 0 {
			e.infiniteSets = n
		}
	}
}

// WithIDFunc overrides step id generation.
func WithIDFunc(fn func() string) Option {
	return func(e *expander) {
		if fn != nil {
			e.newID = fn
		}
	}
}

type expander struct {
	infiniteSets int
	newID        func() string
}

// Program expands p's rows and role groups.
func Program(p domain.Program, opts ...Option) []domain.Step {
	return Expand(p.Rows, p.RoleGroups, opts...)
}

// Expand returns one step per row per repeat loop. Rows in a role group are
// pulled together into one block at the position of the group's first row
// and repeat by the group's settings; all other rows repeat by the first
// row's set count. Dangling group references are ignored.
func Expand(rows []domain.Row, groups []domain.RoleGroup, opts ...Option) []domain.Step {
	e := &expander{
		infiniteSets: DefaultInfiniteSets,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	steps := []domain.Step{}
	if len(rows) == 0 {
		return steps
	}

	alternate := false
	for _, r := range rows {
		if r.HasSides {
			alternate = true
			break
		}
	}

	membership, resolved := resolveGroups(rows, groups)
	if len(resolved) == 0 {
		all := make([]int, len(rows))
		for i := range rows {
			all[i] = i
		}
		return e.block(steps, rows, all, setCount(rows[0].SetCount), alternate, "")
	}

	// Mixed programs: ungrouped runs repeat by the first ungrouped row.
	legacyLoops := 1
	for i, r := range rows {
		if _, grouped := membership[i]; !grouped {
			legacyLoops = setCount(r.SetCount)
			break
		}
	}

	emitted := make(map[string]bool, len(resolved))
	var run []int
	flush := func() {
		if len(run) > 0 {
			steps = e.block(steps, rows, run, legacyLoops, alternate, "")
			run = nil
		}
	}

	for i := range rows {
		g, grouped := membership[i]
		if !grouped {
			run = append(run, i)
			continue
		}
		if emitted[g.id] {
			continue
		}
		flush()
		emitted[g.id] = true
		steps = e.block(steps, rows, g.members, e.groupLoops(g), g.alternate, g.id)
	}
	flush()

	return steps
}

// block appends loops × members steps to out.
func (e *expander) block(out []domain.Step, rows []domain.Row, members []int, loops int, alternate bool, groupID string) []domain.Step {
	for loop := 1; loop <= loops; loop++ {
		side, color := domain.SideNone, domain.ColorNone
		if alternate {
			side, color = domain.SideOmote, domain.ColorRed
			if loop%2 == 0 {
				side, color = domain.SideUra, domain.ColorBlue
			}
		}
		for _, idx := range members {
			r := rows[idx]
			out = append(out, domain.Step{
				ID:             e.newID(),
				Label:          label(r, idx),
				DurationSec:    max(r.DurationSec, 0),
				Side:           side,
				Color:          color,
				RoleGroupID:    groupID,
				SetNumber:      loop,
				FixedSetsCount: loops,
				RoundNumber:    idx + 1,
			})
		}
	}
	return out
}

func (e *expander) groupLoops(g *resolvedGroup) int {
	if g.mode == domain.SetsInfinite {
		return e.infiniteSets
	}
	return setCount(g.fixed)
}

func label(r domain.Row, idx int) string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Step %d", idx+1)
}

func setCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
