// Package timer implements the background supervisor that drives a run
// session's one-second ticks from the wall clock.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/dojotimer/internal/logger"
)

// Clock is what the supervisor drives. Tick is only called while Running
// reports true.
type Clock interface {
	Tick()
	Running() bool
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets the length of one engine second.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithResolution sets how often the supervisor polls the clock. Smaller
// values align the first tick more closely to the moment playback starts.
func WithResolution(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.resolution = d
		}
	}
}

// Supervisor runs in the background and ticks the clock once per
// tickInterval of running wall time. Time spent paused or idle is not
// counted, so a resumed step continues from a whole second.
type Supervisor struct {
	clock        Clock
	log          *logger.Logger
	tickInterval time.Duration
	resolution   time.Duration
	now          func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a supervisor for clock.
func New(clock Clock, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		clock:        clock,
		log:          log,
		tickInterval: time.Second,
		resolution:   50 * time.Millisecond,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolution > s.tickInterval {
		s.resolution = s.tickInterval
	}
	return s
}

// Start begins the background loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("timer supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.done = make(chan struct{})

	done := s.done
	s.log.Go(func() {
		defer close(done)
		s.loop(childCtx)
	})

	s.log.Info("timer supervisor started (tick=%s, resolution=%s)", s.tickInterval, s.resolution)
}

// Stop shuts the loop down and waits for it to exit.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done
	s.log.Info("timer supervisor stopped")
}

func (s *Supervisor) loop(ctx context.Context) {
	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()

	// mark is the wall time at which the current engine second began; zero
	// while the clock is not running.
	var mark time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mark = s.poll(mark)
		}
	}
}

// poll ticks the clock for every whole interval elapsed since mark and
// returns the new mark.
func (s *Supervisor) poll(mark time.Time) time.Time {
	now := s.now()
	if !s.clock.Running() {
		return time.Time{}
	}
	if mark.IsZero() {
		return now
	}

	for now.Sub(mark) >= s.tickInterval {
		s.clock.Tick()
		mark = mark.Add(s.tickInterval)
		if !s.clock.Running() {
			return time.Time{}
		}
	}
	return mark
}
