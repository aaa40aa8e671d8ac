package audio

import (
	"context"

	"github.com/hammamikhairi/dojotimer/internal/cue"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

// Compile-time interface check.
var _ cue.Player = (*NoOp)(nil)

// NoOp is a silent player. Used when audio is disabled or no device is
// available; cues are still logged.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a silent player.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Create returns a sound that finishes the moment it starts.
func (n *NoOp) Create(kind cue.Kind) (cue.Sound, error) {
	return silent{kind: kind, log: n.log}, nil
}

type silent struct {
	kind cue.Kind
	log  *logger.Logger
}

func (s silent) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Debug("audio no-op: would play %s", s.kind)
	return nil
}

func (silent) Stop() {}

func (silent) Playing() bool { return false }
