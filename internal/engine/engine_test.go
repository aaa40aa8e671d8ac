package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

type recorder struct {
	mu  sync.Mutex
	got []domain.Transition
}

func (r *recorder) record(tr domain.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, tr)
}

func (r *recorder) kinds() []domain.TransitionKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TransitionKind, len(r.got))
	for i, tr := range r.got {
		out[i] = tr.Kind
	}
	return out
}

func (r *recorder) count(kind domain.TransitionKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func setupEngine(t *testing.T, steps ...domain.Step) (*Engine, *recorder) {
	t.Helper()
	eng := New(steps, logger.New(logger.LevelOff, nil))
	rec := &recorder{}
	eng.Transitions().Listen(rec.record)
	return eng, rec
}

func step(id string, sec int) domain.Step {
	return domain.Step{ID: id, Label: id, DurationSec: sec}
}

func TestScenarioTwoSteps(t *testing.T) {
	eng, rec := setupEngine(t, step("Uchikomi", 5), step("Rest", 3))

	eng.Start()
	require.Equal(t, domain.StatusRunning, eng.State().Status)

	advancedAt := -1
	for tick := 1; tick <= 8; tick++ {
		before := rec.count(domain.TransitionAdvanced)
		eng.Tick()
		if rec.count(domain.TransitionAdvanced) > before {
			advancedAt = tick
		}
		if tick < 8 {
			assert.Equal(t, domain.StatusRunning, eng.State().Status, "tick %d", tick)
		}
	}

	assert.Equal(t, 5, advancedAt)
	assert.Equal(t, 1, rec.count(domain.TransitionAdvanced))
	assert.Equal(t, 1, rec.count(domain.TransitionFinished))

	st := eng.State()
	assert.Equal(t, domain.StatusFinished, st.Status)
	assert.Equal(t, 1, st.CurrentStepIndex)
	assert.Equal(t, 0, st.RemainingSec)
	assert.Equal(t, 3, st.ElapsedInStepSec)
	assert.Equal(t, 8, st.TotalElapsedSec)

	// Ticks after finish are ignored.
	eng.Tick()
	assert.Equal(t, 1, rec.count(domain.TransitionFinished))
}

func TestAdvanceTransitionCarriesStep(t *testing.T) {
	eng, rec := setupEngine(t, step("a", 1), step("b", 2))
	eng.Start()
	eng.Tick()

	require.Len(t, rec.got, 2)
	tr := rec.got[1]
	assert.Equal(t, domain.TransitionAdvanced, tr.Kind)
	assert.Equal(t, 0, tr.FromIndex)
	assert.Equal(t, 1, tr.ToIndex)
	assert.True(t, tr.HadNext)
	assert.Equal(t, "b", tr.Step.ID)

	eng.Tick()
	eng.Tick()
	fin := rec.got[len(rec.got)-1]
	assert.Equal(t, domain.TransitionFinished, fin.Kind)
	assert.False(t, fin.HadNext)
}

func TestStartOnEmptyIsNoOp(t *testing.T) {
	eng, rec := setupEngine(t)

	eng.Start()
	eng.Tick()
	assert.Equal(t, domain.StatusIdle, eng.State().Status)
	assert.Empty(t, rec.kinds())

	snap := eng.Snapshot()
	assert.Nil(t, snap.CurrentStep)
	assert.Equal(t, 0, snap.StepCount)
}

func TestPauseResume(t *testing.T) {
	eng, rec := setupEngine(t, step("a", 10))

	eng.Pause()
	eng.Resume()
	assert.Empty(t, rec.kinds(), "pause and resume are no-ops while idle")

	eng.Start()
	eng.Tick()
	eng.Pause()
	eng.Tick()
	eng.Tick()
	assert.Equal(t, domain.StatusPaused, eng.State().Status)
	assert.Equal(t, 9, eng.State().RemainingSec)

	eng.Pause()
	eng.Resume()
	eng.Tick()
	assert.Equal(t, 8, eng.State().RemainingSec)
	assert.Equal(t, []domain.TransitionKind{
		domain.TransitionStarted,
		domain.TransitionPaused,
		domain.TransitionResumed,
	}, rec.kinds())
}

func TestStartIgnoredWhileRunning(t *testing.T) {
	eng, rec := setupEngine(t, step("a", 10), step("b", 10))
	eng.Start()
	eng.Tick()
	eng.Start()
	assert.Equal(t, 9, eng.State().RemainingSec)
	assert.Equal(t, 1, rec.count(domain.TransitionStarted))
}

func TestRestartFromFinished(t *testing.T) {
	eng, _ := setupEngine(t, step("a", 1))
	eng.Start()
	eng.Tick()
	require.Equal(t, domain.StatusFinished, eng.State().Status)

	eng.Start()
	st := eng.State()
	assert.Equal(t, domain.StatusRunning, st.Status)
	assert.Equal(t, 0, st.CurrentStepIndex)
	assert.Equal(t, 1, st.RemainingSec)
	assert.Equal(t, 0, st.TotalElapsedSec)
}

func TestNavigation(t *testing.T) {
	eng, rec := setupEngine(t, step("a", 5), step("b", 6), step("c", 7))
	eng.Start()
	eng.Tick()
	eng.Tick()

	tests := []struct {
		name      string
		action    func()
		wantIndex int
		wantLeft  int
	}{
		{"next", eng.Next, 1, 6},
		{"next again", eng.Next, 2, 7},
		{"next past end", eng.Next, 2, 7},
		{"prev", eng.Prev, 1, 6},
		{"skip to first", func() { eng.SkipTo(0) }, 0, 5},
		{"prev before start", eng.Prev, 0, 5},
		{"skip out of range", func() { eng.SkipTo(9) }, 0, 5},
		{"skip negative", func() { eng.SkipTo(-1) }, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.action()
			st := eng.State()
			assert.Equal(t, tt.wantIndex, st.CurrentStepIndex)
			assert.Equal(t, tt.wantLeft, st.RemainingSec)
			assert.Equal(t, 0, st.ElapsedInStepSec)
			assert.Equal(t, 2, st.TotalElapsedSec, "navigation is not elapsed time")
			assert.Equal(t, domain.StatusRunning, st.Status)
		})
	}

	assert.Equal(t, 0, rec.count(domain.TransitionAdvanced))
	assert.Equal(t, 4, rec.count(domain.TransitionNavigated))
}

func TestNavigationIgnoredWhenFinished(t *testing.T) {
	eng, rec := setupEngine(t, step("a", 1), step("b", 1))
	eng.Start()
	eng.Tick()
	eng.Tick()
	require.Equal(t, domain.StatusFinished, eng.State().Status)

	eng.Prev()
	assert.Equal(t, 1, eng.State().CurrentStepIndex)
	assert.Equal(t, 0, rec.count(domain.TransitionNavigated))
}

func TestReset(t *testing.T) {
	eng, rec := setupEngine(t, step("a", 4), step("b", 2))
	eng.Start()
	eng.Tick()
	eng.Next()

	eng.Reset()
	st := eng.State()
	assert.Equal(t, domain.EngineState{Status: domain.StatusIdle, RemainingSec: 4}, st)

	last := rec.got[len(rec.got)-1]
	assert.Equal(t, domain.TransitionReset, last.Kind)
	assert.Equal(t, domain.StatusRunning, last.PrevStatus)
}

func TestResetUsesEditedSteps(t *testing.T) {
	eng, _ := setupEngine(t, step("a", 4))
	eng.Start()
	eng.Pause()
	eng.EditRemainingSteps([]domain.Step{step("x", 9), step("y", 1)})
	eng.Reset()
	assert.Equal(t, 9, eng.State().RemainingSec)
}

func TestEditRemainingStepsKeepsCountdown(t *testing.T) {
	eng, rec := setupEngine(t, step("a", 5), step("b", 5), step("c", 5))
	eng.Start()
	eng.Tick()
	eng.Tick()

	eng.EditRemainingSteps([]domain.Step{step("a", 5), step("b2", 30)})
	st := eng.State()
	assert.Equal(t, 0, st.CurrentStepIndex)
	assert.Equal(t, 3, st.RemainingSec)
	assert.Equal(t, 2, st.ElapsedInStepSec)
	assert.Equal(t, 1, rec.count(domain.TransitionEdited))

	eng.Tick()
	eng.Tick()
	eng.Tick()
	assert.Equal(t, 1, eng.State().CurrentStepIndex)
	assert.Equal(t, 30, eng.State().RemainingSec)
}

func TestEditRemainingStepsClampsIndex(t *testing.T) {
	eng, _ := setupEngine(t, step("a", 5), step("b", 5), step("c", 8))
	eng.Start()
	eng.SkipTo(2)
	eng.Tick()

	eng.EditRemainingSteps([]domain.Step{step("a", 5), step("b", 4)})
	st := eng.State()
	assert.Equal(t, 1, st.CurrentStepIndex)
	assert.Equal(t, 4, st.RemainingSec)
	assert.Equal(t, 0, st.ElapsedInStepSec)

	eng.EditRemainingSteps(nil)
	assert.Equal(t, domain.StatusIdle, eng.State().Status)
	assert.Empty(t, eng.Steps())
}

func TestEditRemainingStepsWhileIdle(t *testing.T) {
	eng, _ := setupEngine(t, step("a", 5))
	eng.EditRemainingSteps([]domain.Step{step("z", 12)})
	assert.Equal(t, 12, eng.State().RemainingSec)
	assert.Equal(t, domain.StatusIdle, eng.State().Status)
}

func TestEditActiveDuration(t *testing.T) {
	original := []domain.Step{step("a", 5), step("b", 5)}
	eng, _ := setupEngine(t, original...)
	eng.Start()
	eng.Tick()
	eng.Pause()

	eng.EditActiveDuration(20)
	st := eng.State()
	assert.Equal(t, domain.StatusPaused, st.Status)
	assert.Equal(t, 0, st.CurrentStepIndex)
	assert.Equal(t, 20, st.RemainingSec)
	assert.Equal(t, 0, st.ElapsedInStepSec)
	assert.Equal(t, 1, st.TotalElapsedSec)
	assert.Equal(t, 20, eng.Steps()[0].DurationSec)
	assert.Equal(t, 5, original[0].DurationSec, "caller's steps are not mutated")

	eng.EditActiveDuration(-3)
	assert.Equal(t, 0, eng.State().RemainingSec)
}

func TestSnapshot(t *testing.T) {
	eng, _ := setupEngine(t, step("a", 4), step("b", 4))
	eng.Start()
	eng.Tick()

	snap := eng.Snapshot()
	require.NotNil(t, snap.CurrentStep)
	require.NotNil(t, snap.NextStep)
	assert.Equal(t, "a", snap.CurrentStep.ID)
	assert.Equal(t, "b", snap.NextStep.ID)
	assert.Equal(t, 8, snap.TotalSec)
	assert.InDelta(t, 0.25, snap.ProgressInStep, 1e-9)
	assert.InDelta(t, 0.125, snap.ProgramProgress, 1e-9)

	for range 7 {
		eng.Tick()
	}
	snap = eng.Snapshot()
	assert.Equal(t, domain.StatusFinished, snap.Status)
	assert.Nil(t, snap.NextStep)
	assert.Equal(t, 1.0, snap.ProgramProgress)
	assert.Equal(t, 1.0, snap.ProgressInStep)
}

func TestZeroDurationStepAdvancesOnNextTick(t *testing.T) {
	eng, rec := setupEngine(t, step("a", 0), step("b", 2))
	eng.Start()
	eng.Tick()
	assert.Equal(t, 1, eng.State().CurrentStepIndex)
	assert.Equal(t, 0, eng.State().TotalElapsedSec)
	assert.Equal(t, 1, rec.count(domain.TransitionAdvanced))
}
