package cue

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/events"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

const (
	defaultCountdownSeconds  = 3
	defaultCountdownInterval = time.Second
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCountdown sets the ready countdown length and the pause between its
// numbers.
func WithCountdown(seconds int, interval time.Duration) Option {
	return func(o *Orchestrator) {
		if seconds >= 0 {
			o.countdownSeconds = seconds
		}
		if interval > 0 {
			o.countdownInterval = interval
		}
	}
}

// WithSessionIDs overrides the session id generator.
func WithSessionIDs(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// Orchestrator turns engine transitions into cues. A cue fires at most
// once per (session, step) and never after ForceStop until the run is
// resumed or started afresh.
type Orchestrator struct {
	log      *logger.Logger
	player   Player
	timeline Timeline
	newID    func() string

	countdownSeconds  int
	countdownInterval time.Duration

	fired      *events.Event[Fired]
	readyTicks *events.Event[int]
	unlisten   func()
	inflight   sync.WaitGroup

	// gate serializes the end of a ready countdown against ForceStop so a
	// stopped countdown can never start the engine.
	gate sync.Mutex

	mu               sync.Mutex
	sessionID        string
	cued             map[string]struct{}
	forceStopped     bool
	stopGen          uint64
	playCtx          context.Context
	playCancel       context.CancelFunc
	readyShown       bool
	finishPlayed     bool
	countdownLeft    int
	countdownCancel  context.CancelFunc
	countdownSession bool
	live             []*liveSound
}

// New creates an orchestrator and subscribes it to timeline transitions.
func New(timeline Timeline, player Player, log *logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		log:               log,
		player:            player,
		timeline:          timeline,
		newID:             uuid.NewString,
		countdownSeconds:  defaultCountdownSeconds,
		countdownInterval: defaultCountdownInterval,
		fired:             events.New[Fired](),
		readyTicks:        events.New[int](),
		cued:              make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.playCtx, o.playCancel = context.WithCancel(context.Background())
	o.sessionID = o.newID()
	o.unlisten = timeline.Transitions().Listen(o.onTransition)
	return o
}

// Fired is notified after every cue attempt, successful or not.
func (o *Orchestrator) Fired() *events.Event[Fired] { return o.fired }

// ReadyTicks is notified with each countdown number (3, 2, 1) and with 0
// when the countdown hands over to the engine.
func (o *Orchestrator) ReadyTicks() *events.Event[int] { return o.readyTicks }

// SessionID returns the current cue session.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// Countdown returns the number currently shown by the ready countdown, or
// 0 when no countdown is running.
func (o *Orchestrator) Countdown() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.countdownLeft
}

// ForceStopped reports whether cues are currently suppressed.
func (o *Orchestrator) ForceStopped() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.forceStopped
}

// BeginReadyCountdown plays the ready cue, counts down and then starts the
// timeline. It returns false without doing anything if the countdown was
// already shown in this session or is running now.
func (o *Orchestrator) BeginReadyCountdown() bool {
	o.mu.Lock()
	if o.readyShown || o.countdownCancel != nil {
		o.mu.Unlock()
		return false
	}
	o.newSessionLocked()
	o.readyShown = true
	o.countdownSession = true
	o.clearForceStopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	o.countdownCancel = cancel
	o.countdownLeft = o.countdownSeconds
	session := o.sessionID
	o.mu.Unlock()

	o.log.Debug("cue: ready countdown for session %s", session)
	o.play(KindReady, session, "")

	o.inflight.Add(1)
	o.log.Go(func() {
		defer o.inflight.Done()
		o.runCountdown(ctx, session)
	})
	return true
}

func (o *Orchestrator) runCountdown(ctx context.Context, session string) {
	ticker := time.NewTicker(o.countdownInterval)
	defer ticker.Stop()

	for n := o.countdownSeconds; n > 0; n-- {
		o.mu.Lock()
		o.countdownLeft = n
		o.mu.Unlock()
		o.readyTicks.Notify(n)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}

	o.gate.Lock()
	defer o.gate.Unlock()

	o.mu.Lock()
	if ctx.Err() != nil || o.forceStopped || o.sessionID != session {
		o.mu.Unlock()
		return
	}
	o.countdownCancel = nil
	o.countdownLeft = 0
	o.mu.Unlock()

	o.readyTicks.Notify(0)
	o.timeline.Start()
}

// ForceStop cancels the ready countdown, stops every live sound and
// suppresses further cues until the next resume or fresh start. It is
// idempotent.
func (o *Orchestrator) ForceStop() {
	o.gate.Lock()
	o.mu.Lock()
	o.forceStopped = true
	o.stopGen++
	o.playCancel()
	o.playCtx, o.playCancel = context.WithCancel(context.Background())
	if o.countdownCancel != nil {
		o.countdownCancel()
		o.countdownCancel = nil
		o.countdownLeft = 0
		o.countdownSession = false
		// An aborted countdown does not count as shown.
		o.readyShown = false
	}
	live := o.live
	o.live = nil
	o.mu.Unlock()
	o.gate.Unlock()

	for _, ls := range live {
		ls.snd.Stop()
	}
	if len(live) > 0 {
		o.log.Debug("cue: force-stopped %d sounds", len(live))
	}
}

// Wait blocks until every in-flight play call and countdown has returned.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Close unsubscribes from the timeline and silences everything.
func (o *Orchestrator) Close() {
	o.unlisten()
	o.ForceStop()
	o.Wait()
}

func (o *Orchestrator) onTransition(tr domain.Transition) {
	switch tr.Kind {
	case domain.TransitionStarted:
		o.mu.Lock()
		fresh := tr.PrevStatus == domain.StatusIdle || tr.PrevStatus == domain.StatusFinished
		if fresh && !o.countdownSession {
			o.newSessionLocked()
		}
		o.countdownSession = false
		o.clearForceStopLocked()
		o.mu.Unlock()

	case domain.TransitionResumed:
		o.mu.Lock()
		o.clearForceStopLocked()
		o.mu.Unlock()

	case domain.TransitionReset:
		o.mu.Lock()
		if o.countdownCancel == nil {
			o.newSessionLocked()
		}
		o.mu.Unlock()

	case domain.TransitionAdvanced:
		o.onAdvanced(tr)

	case domain.TransitionFinished:
		o.onFinished(tr)
	}
}

func (o *Orchestrator) onAdvanced(tr domain.Transition) {
	if !tr.HadNext || tr.Status != domain.StatusRunning || tr.ToIndex <= tr.FromIndex {
		return
	}

	o.mu.Lock()
	if o.forceStopped || o.countdownCancel != nil {
		o.mu.Unlock()
		return
	}
	key := o.sessionID + ":" + tr.Step.ID
	if _, done := o.cued[key]; done {
		o.mu.Unlock()
		return
	}
	// Marked before playing so a failed attempt is never retried.
	o.cued[key] = struct{}{}
	session := o.sessionID
	o.mu.Unlock()

	o.play(KindTransition, session, tr.Step.ID)
}

func (o *Orchestrator) onFinished(tr domain.Transition) {
	if tr.PrevStatus == domain.StatusFinished {
		return
	}

	o.mu.Lock()
	if o.forceStopped || o.finishPlayed {
		o.mu.Unlock()
		return
	}
	o.finishPlayed = true
	session := o.sessionID
	o.mu.Unlock()

	o.play(KindFinish, session, tr.Step.ID)
}

// play creates a fresh sound and starts it in the background. A force-stop
// that lands at any point before or after Play returns leaves the sound
// stopped.
func (o *Orchestrator) play(kind Kind, session, stepID string) {
	snd, err := o.player.Create(kind)
	if err != nil {
		o.log.Warn("cue: creating %s sound: %v", kind, err)
		o.fired.Notify(Fired{Kind: kind, SessionID: session, StepID: stepID, Err: err})
		return
	}

	o.mu.Lock()
	if o.forceStopped || o.sessionID != session {
		o.mu.Unlock()
		snd.Stop()
		o.fired.Notify(Fired{Kind: kind, SessionID: session, StepID: stepID, Err: ErrCanceled})
		return
	}
	gen := o.stopGen
	ctx := o.playCtx
	o.live = slices.DeleteFunc(o.live, func(ls *liveSound) bool { return ls.started && !ls.snd.Playing() })
	entry := &liveSound{snd: snd}
	o.live = append(o.live, entry)
	o.mu.Unlock()

	o.inflight.Add(1)
	o.log.Go(func() {
		defer o.inflight.Done()

		err := snd.Play(ctx)

		o.mu.Lock()
		entry.started = true
		stale := o.stopGen != gen || o.forceStopped || o.sessionID != session
		o.mu.Unlock()
		if stale {
			snd.Stop()
			if err == nil {
				err = ErrCanceled
			}
		}

		if err != nil {
			o.log.Warn("cue: %s for step %q: %v", kind, stepID, err)
		} else {
			o.log.Debug("cue: %s for step %q", kind, stepID)
		}
		o.fired.Notify(Fired{Kind: kind, SessionID: session, StepID: stepID, Err: err})
	})
}

// liveSound is a sound that may still be audible. started is guarded by
// Orchestrator.mu.
type liveSound struct {
	snd     Sound
	started bool
}

func (o *Orchestrator) newSessionLocked() {
	o.sessionID = o.newID()
	clear(o.cued)
	o.readyShown = false
	o.finishPlayed = false
}

func (o *Orchestrator) clearForceStopLocked() {
	o.forceStopped = false
}
