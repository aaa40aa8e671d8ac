// Package domain defines the core types and interfaces for the round timer.
// All other packages depend on domain; domain depends on nothing.
package domain

// SetsMode controls how a role group repeats.
type SetsMode string

const (
	SetsFixed    SetsMode = "fixed"
	SetsInfinite SetsMode = "infinite"
)

// Program is an authored training program. It is the only input to step
// expansion and is never mutated by the engine.
type Program struct {
	ID         string      `json:"id" yaml:"id"`
	Title      string      `json:"title" yaml:"title"`
	Rows       []Row       `json:"rows" yaml:"rows"`
	RoleGroups []RoleGroup `json:"roleGroups,omitempty" yaml:"roleGroups,omitempty"`
}

// Row is one authored line of a program.
type Row struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	DurationSec int    `json:"durationSec" yaml:"durationSec"`
	SetCount    int    `json:"setCount" yaml:"setCount"`
	HasSides    bool   `json:"hasSides" yaml:"hasSides"`
	RoleGroupID string `json:"roleGroupId,omitempty" yaml:"roleGroupId,omitempty"`

	// Denormalized copies of the owning group's settings, kept for older
	// program files. The group itself wins when both are present.
	SetsMode                 SetsMode `json:"setsMode,omitempty" yaml:"setsMode,omitempty"`
	FixedSetsCount           int      `json:"fixedSetsCount,omitempty" yaml:"fixedSetsCount,omitempty"`
	PersonAlternationEnabled bool     `json:"personAlternationEnabled,omitempty" yaml:"personAlternationEnabled,omitempty"`
}

// RoleGroup is a set of rows repeated together as one unit.
type RoleGroup struct {
	ID                       string   `json:"id" yaml:"id"`
	TimerIDs                 []string `json:"timerIds" yaml:"timerIds"`
	SetsMode                 SetsMode `json:"setsMode" yaml:"setsMode"`
	FixedSetsCount           int      `json:"fixedSetsCount,omitempty" yaml:"fixedSetsCount,omitempty"`
	PersonAlternationEnabled bool     `json:"personAlternationEnabled" yaml:"personAlternationEnabled"`
}

// ProgramSummary is a lightweight view of a program for listing.
type ProgramSummary struct {
	ID          string
	Title       string
	Rows        int
	DurationSec int
}

// Summary returns a listing view of the program. DurationSec is the sum of
// row durations for a single pass, without repeats.
func (p *Program) Summary() ProgramSummary {
	total := 0
	for _, r := range p.Rows {
		total += r.DurationSec
	}
	return ProgramSummary{
		ID:          p.ID,
		Title:       p.Title,
		Rows:        len(p.Rows),
		DurationSec: total,
	}
}
