// Package engine implements the round timer state machine.
//
// The engine owns an ordered list of steps and a countdown over it. It is
// advanced one second at a time by Tick and reports every state change as a
// domain.Transition on its Transitions event. It never waits on cue playback.
package engine

import (
	"sync"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/events"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

// Engine is a second-resolution countdown over a step list. All methods are
// safe for concurrent use; each call is one atomic state change.
type Engine struct {
	log         *logger.Logger
	transitions *events.Event[domain.Transition]

	mu    sync.Mutex
	steps []domain.Step
	state domain.EngineState
}

// New creates an idle engine over steps.
func New(steps []domain.Step, log *logger.Logger) *Engine {
	e := &Engine{
		log:         log,
		transitions: events.New[domain.Transition](),
		steps:       cloneSteps(steps),
	}
	e.state = e.idleState()
	return e
}

// Transitions is notified after every state change, outside the engine lock.
func (e *Engine) Transitions() *events.Event[domain.Transition] {
	return e.transitions
}

// Start begins playback at the first step. Valid from idle and finished
// (a paused or running engine is left alone). With no steps it is a no-op
// and the engine stays idle.
func (e *Engine) Start() {
	e.mu.Lock()
	if len(e.steps) == 0 {
		e.mu.Unlock()
		e.log.Debug("engine: start ignored, no steps")
		return
	}
	prev := e.state.Status
	if prev != domain.StatusIdle && prev != domain.StatusFinished {
		e.mu.Unlock()
		e.log.Debug("engine: start ignored while %s", prev)
		return
	}

	e.state = domain.EngineState{
		Status:       domain.StatusRunning,
		RemainingSec: e.steps[0].DurationSec,
	}
	tr := e.transitionLocked(domain.TransitionStarted, prev, 0)
	n, total := len(e.steps), domain.TotalDuration(e.steps)
	e.mu.Unlock()

	e.log.Info("engine: started (%d steps, %ds)", n, total)
	e.transitions.Notify(tr)
}

// Pause moves running to paused. No-op otherwise.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.state.Status != domain.StatusRunning {
		e.mu.Unlock()
		return
	}
	e.state.Status = domain.StatusPaused
	left := e.state.RemainingSec
	tr := e.transitionLocked(domain.TransitionPaused, domain.StatusRunning, e.state.CurrentStepIndex)
	e.mu.Unlock()

	e.log.Info("engine: paused at step %d (%ds left)", tr.ToIndex+1, left)
	e.transitions.Notify(tr)
}

// Resume moves paused to running. No-op otherwise.
func (e *Engine) Resume() {
	e.mu.Lock()
	if e.state.Status != domain.StatusPaused {
		e.mu.Unlock()
		return
	}
	e.state.Status = domain.StatusRunning
	tr := e.transitionLocked(domain.TransitionResumed, domain.StatusPaused, e.state.CurrentStepIndex)
	e.mu.Unlock()

	e.log.Info("engine: resumed at step %d", tr.ToIndex+1)
	e.transitions.Notify(tr)
}

// Tick consumes one second. When the current step expires it advances to the
// next step (TransitionAdvanced) or finishes (TransitionFinished). Ticks
// outside the running state are ignored.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.state.Status != domain.StatusRunning {
		e.mu.Unlock()
		return
	}

	if e.state.RemainingSec > 1 {
		e.state.RemainingSec--
		e.state.ElapsedInStepSec++
		e.state.TotalElapsedSec++
		e.mu.Unlock()
		return
	}

	// The current step expires on this tick.
	consumed := e.state.RemainingSec
	idx := e.state.CurrentStepIndex
	next := idx + 1

	if next < len(e.steps) {
		e.state.CurrentStepIndex = next
		e.state.RemainingSec = e.steps[next].DurationSec
		e.state.ElapsedInStepSec = 0
		e.state.TotalElapsedSec += consumed
		tr := e.transitionLocked(domain.TransitionAdvanced, domain.StatusRunning, idx)
		e.mu.Unlock()

		e.log.Debug("engine: advanced %d -> %d", idx+1, next+1)
		e.transitions.Notify(tr)
		return
	}

	e.state.Status = domain.StatusFinished
	e.state.RemainingSec = 0
	e.state.TotalElapsedSec += consumed
	if idx < len(e.steps) {
		e.state.ElapsedInStepSec = e.steps[idx].DurationSec
	}
	total := e.state.TotalElapsedSec
	tr := e.transitionLocked(domain.TransitionFinished, domain.StatusRunning, idx)
	e.mu.Unlock()

	e.log.Info("engine: finished after %ds", total)
	e.transitions.Notify(tr)
}

// Next jumps to the following step. Manual navigation does not count as
// elapsed time.
func (e *Engine) Next() {
	e.jump(func(cur int) int { return cur + 1 })
}

// Prev jumps to the preceding step.
func (e *Engine) Prev() {
	e.jump(func(cur int) int { return cur - 1 })
}

// SkipTo jumps to step i.
func (e *Engine) SkipTo(i int) {
	e.jump(func(int) int { return i })
}

// jump moves to the index chosen by target. Out-of-range targets, the
// current index, and a finished engine are silent no-ops.
func (e *Engine) jump(target func(cur int) int) {
	e.mu.Lock()
	from := e.state.CurrentStepIndex
	i := target(from)
	if i < 0 || i >= len(e.steps) || i == from || e.state.Status == domain.StatusFinished {
		e.mu.Unlock()
		return
	}

	e.state.CurrentStepIndex = i
	e.state.RemainingSec = e.steps[i].DurationSec
	e.state.ElapsedInStepSec = 0
	tr := e.transitionLocked(domain.TransitionNavigated, e.state.Status, from)
	e.mu.Unlock()

	e.log.Debug("engine: navigated %d -> %d", from+1, i+1)
	e.transitions.Notify(tr)
}

// Reset returns to the idle snapshot of the current step list, so edits made
// while idle or paused apply on the next start.
func (e *Engine) Reset() {
	e.mu.Lock()
	prev := e.state.Status
	from := e.state.CurrentStepIndex
	e.state = e.idleState()
	tr := e.transitionLocked(domain.TransitionReset, prev, from)
	e.mu.Unlock()

	e.log.Info("engine: reset")
	e.transitions.Notify(tr)
}

// EditRemainingSteps replaces the step list without touching the countdown.
// The active index is clamped into the new list; an empty list resets the
// engine to idle. Use EditActiveDuration to change the step being played.
func (e *Engine) EditRemainingSteps(steps []domain.Step) {
	e.mu.Lock()
	prev := e.state.Status
	from := e.state.CurrentStepIndex
	e.steps = cloneSteps(steps)

	if len(e.steps) == 0 {
		e.state = e.idleState()
	} else {
		idx := e.state.CurrentStepIndex
		if idx >= len(e.steps) {
			idx = len(e.steps) - 1
			e.state.CurrentStepIndex = idx
			e.state.RemainingSec = min(e.state.RemainingSec, e.steps[idx].DurationSec)
			e.state.ElapsedInStepSec = e.steps[idx].DurationSec - e.state.RemainingSec
		}
		if prev == domain.StatusIdle {
			e.state.RemainingSec = e.steps[idx].DurationSec
			e.state.ElapsedInStepSec = 0
		}
	}
	tr := e.transitionLocked(domain.TransitionEdited, prev, from)
	e.mu.Unlock()

	e.log.Debug("engine: step list replaced (%d steps)", len(steps))
	e.transitions.Notify(tr)
}

// EditActiveDuration rewrites the active step's duration and restarts its
// countdown from the new value. Status and index are unchanged.
func (e *Engine) EditActiveDuration(sec int) {
	if sec < 0 {
		sec = 0
	}

	e.mu.Lock()
	idx := e.state.CurrentStepIndex
	if idx >= len(e.steps) {
		e.mu.Unlock()
		return
	}

	steps := cloneSteps(e.steps)
	steps[idx] = steps[idx].WithDuration(sec)
	e.steps = steps
	e.state.RemainingSec = sec
	e.state.ElapsedInStepSec = 0
	tr := e.transitionLocked(domain.TransitionEdited, e.state.Status, idx)
	e.mu.Unlock()

	e.log.Debug("engine: step %d duration set to %ds", idx+1, sec)
	e.transitions.Notify(tr)
}

// State returns a copy of the countdown state.
func (e *Engine) State() domain.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Steps returns a copy of the current step list.
func (e *Engine) Steps() []domain.Step {
	return e.stepsCopy()
}

// Snapshot returns the observable state for presentation.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state
	snap := domain.Snapshot{
		Status:           st.Status,
		CurrentStepIndex: st.CurrentStepIndex,
		StepCount:        len(e.steps),
		RemainingSec:     st.RemainingSec,
		ElapsedInStepSec: st.ElapsedInStepSec,
		TotalElapsedSec:  st.TotalElapsedSec,
		TotalSec:         domain.TotalDuration(e.steps),
	}

	if idx := st.CurrentStepIndex; idx < len(e.steps) {
		cur := e.steps[idx]
		snap.CurrentStep = &cur
		if cur.DurationSec > 0 {
			snap.ProgressInStep = ratio(st.ElapsedInStepSec, cur.DurationSec)
		} else if st.Status == domain.StatusFinished {
			snap.ProgressInStep = 1
		}
		if idx+1 < len(e.steps) {
			nxt := e.steps[idx+1]
			snap.NextStep = &nxt
		}
	}

	switch {
	case st.Status == domain.StatusFinished:
		snap.ProgramProgress = 1
	case snap.TotalSec > 0:
		snap.ProgramProgress = ratio(st.TotalElapsedSec, snap.TotalSec)
	}
	return snap
}

// idleState is the pre-start snapshot. Must be called with e.mu held.
func (e *Engine) idleState() domain.EngineState {
	st := domain.EngineState{Status: domain.StatusIdle}
	if len(e.steps) > 0 {
		st.RemainingSec = e.steps[0].DurationSec
	}
	return st
}

// transitionLocked builds the event for a change that has already been
// applied. Must be called with e.mu held.
func (e *Engine) transitionLocked(kind domain.TransitionKind, prev domain.Status, from int) domain.Transition {
	tr := domain.Transition{
		Kind:       kind,
		PrevStatus: prev,
		Status:     e.state.Status,
		FromIndex:  from,
		ToIndex:    e.state.CurrentStepIndex,
		HadNext:    from+1 < len(e.steps),
	}
	if idx := e.state.CurrentStepIndex; idx < len(e.steps) {
		tr.Step = e.steps[idx]
	}
	return tr
}

func (e *Engine) stepsCopy() []domain.Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSteps(e.steps)
}

func cloneSteps(steps []domain.Step) []domain.Step {
	out := make([]domain.Step, len(steps))
	copy(out, steps)
	return out
}

func ratio(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	r := float64(part) / float64(whole)
	if r > 1 {
		return 1
	}
	return r
}
