package domain

// Side is the omote/ura role tag applied to alternating loops.
type Side string

const (
	SideNone  Side = ""
	SideOmote Side = "omote"
	SideUra   Side = "ura"
)

// Color is the visual tag paired with a side.
type Color string

const (
	ColorNone Color = ""
	ColorRed  Color = "red"
	ColorBlue Color = "blue"
)

// Step is one concrete, already-timed unit of playback. Steps are produced by
// expansion and never modified afterwards; edits replace them.
type Step struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	DurationSec    int    `json:"durationSec"`
	Side           Side   `json:"side,omitempty"`
	Color          Color  `json:"color,omitempty"`
	RoleGroupID    string `json:"roleGroupId,omitempty"`
	SetNumber      int    `json:"setNumber,omitempty"`
	FixedSetsCount int    `json:"fixedSetsCount,omitempty"`
	RoundNumber    int    `json:"roundNumber,omitempty"`
}

// Alternating reports whether the step carries person alternation.
func (s Step) Alternating() bool {
	return s.Side != SideNone
}

// WithDuration returns a copy of the step with a new duration.
func (s Step) WithDuration(sec int) Step {
	if sec < 0 {
		sec = 0
	}
	s.DurationSec = sec
	return s
}

// TotalDuration sums the durations of the given steps.
func TotalDuration(steps []Step) int {
	total := 0
	for _, s := range steps {
		total += s.DurationSec
	}
	return total
}
