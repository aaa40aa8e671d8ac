// Package audio plays cue sounds through the system audio device with oto.
package audio

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/dojotimer/internal/cue"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

// Compile-time interface check.
var _ cue.Player = (*Player)(nil)

// Player creates oto-backed sounds from a Bank.
type Player struct {
	ctx  *oto.Context
	bank *Bank
	log  *logger.Logger
}

// NewPlayer initializes the system audio context. Returns an error if the
// audio device is unavailable.
func NewPlayer(bank *Bank, log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, bank: bank, log: log}, nil
}

// Create returns a fresh, independent sound for kind.
func (p *Player) Create(kind cue.Kind) (cue.Sound, error) {
	pcm, err := p.bank.PCM(kind)
	if err != nil {
		return nil, err
	}
	return &sound{
		kind:   kind,
		player: p.ctx.NewPlayer(bytes.NewReader(pcm)),
		log:    p.log,
	}, nil
}

// sound is one oto player over a cue's PCM.
type sound struct {
	kind   cue.Kind
	log    *logger.Logger
	mu     sync.Mutex
	player *oto.Player
}

// Play starts playback without waiting for it to finish.
func (s *sound) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Play()
	s.log.Debug("audio: playing %s", s.kind)
	return nil
}

// Stop pauses and rewinds so the sound is silent and replayable.
func (s *sound) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Pause()
	if _, err := s.player.Seek(0, io.SeekStart); err != nil {
		s.log.Debug("audio: rewinding %s: %v", s.kind, err)
	}
}

func (s *sound) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.IsPlaying()
}
