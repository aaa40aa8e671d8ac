package audio

import (
	"fmt"
	"os"
	"sync"

	"github.com/hammamikhairi/dojotimer/internal/cue"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

// Bank holds the decoded PCM for each cue kind. A kind with a configured
// WAV asset is loaded from disk on first use; any other kind (or an asset
// that fails to load) falls back to its synthesized tone. Safe for
// concurrent use.
type Bank struct {
	mu      sync.Mutex
	assets  map[cue.Kind]string
	tones   map[cue.Kind]Tone
	entries map[cue.Kind][]byte
	log     *logger.Logger
	hits    int64
	misses  int64
}

// NewBank creates a bank. assets maps cue kinds to WAV file paths and may be
// nil or partial.
func NewBank(assets map[cue.Kind]string, log *logger.Logger) *Bank {
	b := &Bank{
		assets:  make(map[cue.Kind]string),
		tones:   DefaultTones,
		entries: make(map[cue.Kind][]byte),
		log:     log,
	}
	for k, path := range assets {
		if path != "" {
			b.assets[k] = path
		}
	}
	return b
}

// PCM returns the sound data for kind.
func (b *Bank) PCM(kind cue.Kind) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if data, ok := b.entries[kind]; ok {
		b.hits++
		return data, nil
	}
	b.misses++

	data, err := b.loadLocked(kind)
	if err != nil {
		return nil, err
	}
	b.entries[kind] = data
	return data, nil
}

// Preload decodes every kind up front so the first cue plays without
// touching the disk.
func (b *Bank) Preload() error {
	for _, k := range cue.Kinds {
		if _, err := b.PCM(k); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns cache hit and miss counts.
func (b *Bank) Stats() (hits, misses int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits, b.misses
}

func (b *Bank) loadLocked(kind cue.Kind) ([]byte, error) {
	if path, ok := b.assets[kind]; ok {
		pcm, err := readWAV(path)
		if err == nil {
			b.log.Debug("audio bank: loaded %s from %s (%s)", kind, path, Duration(pcm))
			return pcm, nil
		}
		b.log.Warn("audio bank: %s asset %s unusable, using built-in tone: %v", kind, path, err)
	}

	tone, ok := b.tones[kind]
	if !ok {
		return nil, fmt.Errorf("no sound for cue %s", kind)
	}
	return Synthesize(tone), nil
}

func readWAV(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return extractPCM(data)
}
