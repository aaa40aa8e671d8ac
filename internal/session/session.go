// Package session is the composition root of one playback run. It owns a
// single engine and cue orchestrator and exposes the action surface used by
// the terminal UI, the command prompt and the remote control.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/dojotimer/internal/cue"
	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/engine"
	"github.com/hammamikhairi/dojotimer/internal/events"
	"github.com/hammamikhairi/dojotimer/internal/expand"
	"github.com/hammamikhairi/dojotimer/internal/logger"
	"github.com/hammamikhairi/dojotimer/internal/title"
)

// Option configures a Session.
type Option func(*Session)

// WithStore records every loaded program in store.
func WithStore(store domain.ProgramStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithReadyCountdown enables or disables the 3-2-1 countdown before a
// fresh start. Enabled by default.
func WithReadyCountdown(enabled bool) Option {
	return func(s *Session) {
		s.countdown = enabled
	}
}

// WithExpandOptions passes options to every program expansion.
func WithExpandOptions(opts ...expand.Option) Option {
	return func(s *Session) {
		s.expandOpts = append(s.expandOpts, opts...)
	}
}

// WithCueOptions passes options to the cue orchestrator.
func WithCueOptions(opts ...cue.Option) Option {
	return func(s *Session) {
		s.cueOpts = append(s.cueOpts, opts...)
	}
}

// View is the observable state of a run.
type View struct {
	domain.Snapshot
	ProgramID    string `json:"programId,omitempty"`
	ProgramTitle string `json:"programTitle,omitempty"`
	Title        string `json:"title,omitempty"`
	NextTitle    string `json:"nextTitle,omitempty"`
	Countdown    int    `json:"countdown,omitempty"`
	CueSession   string `json:"cueSession"`
}

// Session is one run: exactly one engine and one orchestrator. Actions are
// serialized; transition listeners must not call back into the session.
type Session struct {
	log        *logger.Logger
	store      domain.ProgramStore
	countdown  bool
	expandOpts []expand.Option
	cueOpts    []cue.Option

	engine *engine.Engine
	cues   *cue.Orchestrator

	mu     sync.Mutex
	loaded atomic.Pointer[domain.Program]
}

// New creates an empty session. Load a program before starting.
func New(player cue.Player, log *logger.Logger, opts ...Option) *Session {
	s := &Session{
		log:       log,
		countdown: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = engine.New(nil, log)
	s.cues = cue.New(s.engine, player, log, s.cueOpts...)
	return s
}

// Load expands program and makes it the session's step list. Any playback
// in progress is stopped and the engine returns to idle.
func (s *Session) Load(ctx context.Context, program domain.Program) (View, error) {
	steps := expand.Program(program, s.expandOpts...)

	s.mu.Lock()
	s.cues.ForceStop()
	s.engine.EditRemainingSteps(steps)
	s.engine.Reset()
	p := program
	s.loaded.Store(&p)
	s.mu.Unlock()

	s.log.Info("session: loaded %q (%d steps, %ds)", program.Title, len(steps), domain.TotalDuration(steps))

	if s.store != nil {
		if err := s.store.Touch(ctx, program); err != nil {
			return s.View(), fmt.Errorf("recording program %s: %w", program.ID, err)
		}
	}
	return s.View(), nil
}

// Program returns the loaded program, or nil.
func (s *Session) Program() *domain.Program {
	p := s.loaded.Load()
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// Start begins playback. From idle or finished it shows the ready
// countdown when enabled; from paused it resumes. With no steps it does
// nothing.
func (s *Session) Start() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.engine.State()
	switch st.Status {
	case domain.StatusRunning:
		return s.View()
	case domain.StatusPaused:
		s.engine.Resume()
		return s.View()
	case domain.StatusFinished:
		// A finished run starts over in a new cue session.
		s.engine.Reset()
	}

	if len(s.engine.Steps()) == 0 {
		s.log.Debug("session: start ignored, nothing loaded")
		return s.View()
	}
	if s.cues.Countdown() > 0 {
		return s.View()
	}
	if !s.countdown || !s.cues.BeginReadyCountdown() {
		s.engine.Start()
	}
	return s.View()
}

// Pause pauses a running engine.
func (s *Session) Pause() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Pause()
	return s.View()
}

// Resume resumes a paused engine and re-enables cues.
func (s *Session) Resume() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Resume()
	return s.View()
}

// Reset silences all cues and returns to idle, keeping live edits.
func (s *Session) Reset() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cues.ForceStop()
	s.engine.Reset()
	return s.View()
}

// Stop silences all cues, restores the loaded program as authored and
// returns to idle.
func (s *Session) Stop() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cues.ForceStop()
	if p := s.loaded.Load(); p != nil {
		s.engine.EditRemainingSteps(expand.Program(*p, s.expandOpts...))
	}
	s.engine.Reset()
	return s.View()
}

// Next jumps to the following step.
func (s *Session) Next() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Next()
	return s.View()
}

// Prev jumps to the preceding step.
func (s *Session) Prev() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Prev()
	return s.View()
}

// SkipToStep jumps to step i (0-based). Out of range is a no-op.
func (s *Session) SkipToStep(i int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SkipTo(i)
	return s.View()
}

// UpdateSteps replaces the step list without disturbing the countdown.
func (s *Session) UpdateSteps(steps []domain.Step) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.EditRemainingSteps(steps)
	return s.View()
}

// UpdateActiveTimerDuration sets the playing step's duration and restarts
// its countdown from the new value.
func (s *Session) UpdateActiveTimerDuration(sec int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.EditActiveDuration(sec)
	return s.View()
}

// Tick advances the engine by one second. It is driven by the timer
// supervisor.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Tick()
}

// Running reports whether the engine is counting down.
func (s *Session) Running() bool {
	return s.engine.State().Status == domain.StatusRunning
}

// Steps returns the current step list.
func (s *Session) Steps() []domain.Step {
	return s.engine.Steps()
}

// Transitions exposes engine transitions to observers.
func (s *Session) Transitions() *events.Event[domain.Transition] {
	return s.engine.Transitions()
}

// Cues exposes the cue orchestrator's events.
func (s *Session) Cues() *cue.Orchestrator {
	return s.cues
}

// View returns the current observable state.
func (s *Session) View() View {
	v := View{
		Snapshot:   s.engine.Snapshot(),
		Countdown:  s.cues.Countdown(),
		CueSession: s.cues.SessionID(),
	}
	if v.CurrentStep != nil {
		v.Title = title.ForStep(*v.CurrentStep)
	}
	if v.NextStep != nil {
		v.NextTitle = title.ForStep(*v.NextStep)
	}
	if p := s.loaded.Load(); p != nil {
		v.ProgramID = p.ID
		v.ProgramTitle = p.Title
	}
	return v
}

// Close silences cues and waits for background playback calls to return.
func (s *Session) Close() {
	s.cues.Close()
}
