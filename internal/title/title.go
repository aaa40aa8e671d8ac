// Package title renders the display title of a step from its label and its
// position in its repeat block.
package title

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/dojotimer/internal/domain"
)

// MaxDisplayedSets caps set numbers shown in titles; infinite groups would
// otherwise show their materialized loop count.
const MaxDisplayedSets = 99

// Format returns the title for step. roundIndex is used only when the step
// has no label. A set suffix appears only when totalSets is at least 2, and
// person info only when the step alternates.
func Format(step domain.Step, roundIndex, currentSet, totalSets int) string {
	name := strings.TrimSpace(step.Label)
	if name == "" {
		name = fmt.Sprintf("Round %d", roundIndex)
	}

	currentSet = clampSet(currentSet)
	totalSets = clampSet(totalSets)

	if step.Alternating() {
		person := 1
		if step.Side == domain.SideUra {
			person = 2
		}
		if totalSets >= 2 {
			return fmt.Sprintf("%s / Person%d - %dset", name, person, currentSet)
		}
		return fmt.Sprintf("%s / Person%d", name, person)
	}

	if totalSets >= 2 {
		return fmt.Sprintf("%s / %dset", name, currentSet)
	}
	return name
}

// ForStep formats step using the position recorded on it at expansion.
func ForStep(step domain.Step) string {
	return Format(step, step.RoundNumber, step.SetNumber, step.FixedSetsCount)
}

func clampSet(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxDisplayedSets {
		return MaxDisplayedSets
	}
	return n
}
