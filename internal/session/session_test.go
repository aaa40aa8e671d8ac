package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/dojotimer/internal/cue"
	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/logger"
	"github.com/hammamikhairi/dojotimer/internal/storage"
)

type silentSound struct {
	mu      sync.Mutex
	playing bool
}

func (s *silentSound) Play(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	return nil
}

func (s *silentSound) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

func (s *silentSound) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

type countingPlayer struct {
	mu      sync.Mutex
	created map[cue.Kind]int
}

func (p *countingPlayer) Create(kind cue.Kind) (cue.Sound, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.created == nil {
		p.created = make(map[cue.Kind]int)
	}
	p.created[kind]++
	return &silentSound{}, nil
}

func (p *countingPlayer) count(kind cue.Kind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created[kind]
}

type failingStore struct{ domain.ProgramStore }

func (failingStore) Touch(context.Context, domain.Program) error { return errors.New("disk full") }

func twoStepProgram() domain.Program {
	return domain.Program{
		ID:    "basic",
		Title: "Basic",
		Rows: []domain.Row{
			{ID: "r1", Name: "Uchikomi", DurationSec: 5, SetCount: 1},
			{ID: "r2", Name: "Rest", DurationSec: 3, SetCount: 1},
		},
	}
}

func setupSession(t *testing.T, opts ...Option) (*Session, *countingPlayer) {
	t.Helper()
	player := &countingPlayer{}
	opts = append([]Option{
		WithReadyCountdown(false),
		WithCueOptions(cue.WithCountdown(3, time.Millisecond)),
	}, opts...)
	s := New(player, logger.New(logger.LevelOff, nil), opts...)
	t.Cleanup(s.Close)
	return s, player
}

func TestSessionRunsProgram(t *testing.T) {
	s, player := setupSession(t)
	ctx := context.Background()

	v, err := s.Load(ctx, twoStepProgram())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, v.Status)
	assert.Equal(t, "Basic", v.ProgramTitle)
	assert.Equal(t, "Uchikomi", v.Title)
	assert.Equal(t, "Rest", v.NextTitle)

	v = s.Start()
	assert.Equal(t, domain.StatusRunning, v.Status)
	for range 8 {
		s.Tick()
	}
	s.Cues().Wait()

	v = s.View()
	assert.Equal(t, domain.StatusFinished, v.Status)
	assert.Equal(t, 8, v.TotalElapsedSec)
	assert.Equal(t, 1, player.count(cue.KindTransition))
	assert.Equal(t, 1, player.count(cue.KindFinish))
	assert.False(t, s.Running())
}

func TestSessionStartWithoutProgram(t *testing.T) {
	s, _ := setupSession(t)
	v := s.Start()
	assert.Equal(t, domain.StatusIdle, v.Status)
	assert.Nil(t, s.Program())
}

func TestSessionReadyCountdown(t *testing.T) {
	s, player := setupSession(t,
		WithReadyCountdown(true),
		WithCueOptions(cue.WithCountdown(3, 50*time.Millisecond)),
	)
	_, err := s.Load(context.Background(), twoStepProgram())
	require.NoError(t, err)

	v := s.Start()
	assert.Equal(t, domain.StatusIdle, v.Status, "engine waits for the countdown")
	assert.Equal(t, 3, v.Countdown)

	s.Start()
	s.Cues().Wait()

	assert.True(t, s.Running())
	assert.Equal(t, 1, player.count(cue.KindReady))
}

func TestSessionStartResumesWhenPaused(t *testing.T) {
	s, _ := setupSession(t)
	_, err := s.Load(context.Background(), twoStepProgram())
	require.NoError(t, err)

	s.Start()
	s.Tick()
	v := s.Pause()
	assert.Equal(t, domain.StatusPaused, v.Status)

	v = s.Start()
	assert.Equal(t, domain.StatusRunning, v.Status)
	assert.Equal(t, 4, v.RemainingSec)
}

func TestSessionRestartAfterFinish(t *testing.T) {
	s, _ := setupSession(t)
	_, err := s.Load(context.Background(), twoStepProgram())
	require.NoError(t, err)

	s.Start()
	for range 8 {
		s.Tick()
	}
	first := s.View().CueSession

	v := s.Start()
	assert.Equal(t, domain.StatusRunning, v.Status)
	assert.Equal(t, 0, v.CurrentStepIndex)
	assert.NotEqual(t, first, v.CueSession)
}

func TestSessionNavigationAndEdits(t *testing.T) {
	s, player := setupSession(t)
	_, err := s.Load(context.Background(), twoStepProgram())
	require.NoError(t, err)
	s.Start()

	v := s.Next()
	assert.Equal(t, 1, v.CurrentStepIndex)
	v = s.Prev()
	assert.Equal(t, 0, v.CurrentStepIndex)
	v = s.SkipToStep(7)
	assert.Equal(t, 0, v.CurrentStepIndex)

	v = s.UpdateActiveTimerDuration(42)
	assert.Equal(t, 42, v.RemainingSec)
	assert.Equal(t, 42, v.CurrentStep.DurationSec)

	steps := s.Steps()
	steps[1] = steps[1].WithDuration(9)
	v = s.UpdateSteps(steps)
	assert.Equal(t, 42, v.RemainingSec)
	assert.Equal(t, 9, v.NextStep.DurationSec)

	s.Cues().Wait()
	assert.Equal(t, 0, player.count(cue.KindTransition))
}

func TestSessionResetKeepsEditsStopDiscardsThem(t *testing.T) {
	s, _ := setupSession(t)
	_, err := s.Load(context.Background(), twoStepProgram())
	require.NoError(t, err)

	s.Start()
	s.UpdateActiveTimerDuration(42)

	v := s.Reset()
	assert.Equal(t, domain.StatusIdle, v.Status)
	assert.Equal(t, 42, v.RemainingSec)
	assert.True(t, s.Cues().ForceStopped())

	s.Start()
	assert.False(t, s.Cues().ForceStopped())

	v = s.Stop()
	assert.Equal(t, domain.StatusIdle, v.Status)
	assert.Equal(t, 5, v.RemainingSec)
}

func TestSessionLoadRecordsProgram(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(logger.New(logger.LevelOff, nil))
	s, _ := setupSession(t, WithStore(store))

	_, err := s.Load(ctx, twoStepProgram())
	require.NoError(t, err)

	recent, err := store.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "basic", recent[0].ID)
}

func TestSessionLoadStoreFailureStillLoads(t *testing.T) {
	s, _ := setupSession(t, WithStore(failingStore{}))

	v, err := s.Load(context.Background(), twoStepProgram())
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 2, v.StepCount)
}

func TestSessionLoadStopsRun(t *testing.T) {
	s, _ := setupSession(t)
	ctx := context.Background()
	_, err := s.Load(ctx, twoStepProgram())
	require.NoError(t, err)
	s.Start()
	s.Tick()

	other := domain.Program{ID: "solo", Title: "Solo", Rows: []domain.Row{{ID: "x", Name: "Kata", DurationSec: 60, SetCount: 1}}}
	v, err := s.Load(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, v.Status)
	assert.Equal(t, 60, v.RemainingSec)
	assert.Equal(t, "Kata", v.Title)
	assert.Equal(t, "solo", s.Program().ID)
}
