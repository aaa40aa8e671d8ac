// Package cue fires the audible signals of a run: the 3-2-1 ready
// countdown, the round-ending beep on every automatic step change and the
// finish sound. It observes engine transitions and never blocks the engine.
package cue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/events"
)

// Kind names one of the three playback resources.
type Kind int

const (
	KindReady Kind = iota
	KindTransition
	KindFinish
)

// Kinds lists every cue kind in a stable order.
var Kinds = []Kind{KindReady, KindTransition, KindFinish}

func (k Kind) String() string {
	switch k {
	case KindReady:
		return "ready"
	case KindTransition:
		return "transition"
	case KindFinish:
		return "finish"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown cue kind %q", s)
}

// ErrCanceled is reported for a cue that a force-stop suppressed or cut off.
var ErrCanceled = errors.New("cue canceled")

// Sound is one playable instance of a cue.
type Sound interface {
	// Play starts playback and returns once it has started (or failed to).
	// It does not wait for the sound to finish.
	Play(ctx context.Context) error
	// Stop halts playback and rewinds. Safe to call repeatedly.
	Stop()
	// Playing reports whether the sound is still audible.
	Playing() bool
}

// Player creates fresh sound instances. Each call returns an independent
// instance so overlapping cues do not cut each other off.
type Player interface {
	Create(kind Kind) (Sound, error)
}

// Timeline is the part of the engine the orchestrator drives and observes.
type Timeline interface {
	Start()
	Transitions() *events.Event[domain.Transition]
}

// Fired reports the outcome of one cue attempt.
type Fired struct {
	Kind      Kind
	SessionID string
	StepID    string
	Err       error
}
