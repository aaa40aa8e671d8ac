package audio

import (
	"time"

	"github.com/hammamikhairi/dojotimer/internal/cue"
)

// Audio parameters shared by synthesized tones, WAV assets and the device.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Note is one pitch held for Dur. A zero Freq is a rest.
type Note struct {
	Freq float64
	Dur  time.Duration
}

// Tone is a short melody used when no WAV asset is configured for a cue.
type Tone []Note

// DefaultTones maps each cue kind to its built-in beep pattern. The ready
// tone follows the 3-2-1 countdown and ends on a higher "go" note.
var DefaultTones = map[cue.Kind]Tone{
	cue.KindReady: {
		{880, 150 * time.Millisecond}, {0, 850 * time.Millisecond},
		{880, 150 * time.Millisecond}, {0, 850 * time.Millisecond},
		{880, 150 * time.Millisecond}, {0, 850 * time.Millisecond},
		{1320, 400 * time.Millisecond},
	},
	cue.KindTransition: {
		{1320, 120 * time.Millisecond}, {0, 80 * time.Millisecond},
		{1320, 120 * time.Millisecond},
	},
	cue.KindFinish: {
		{660, 300 * time.Millisecond}, {0, 100 * time.Millisecond},
		{660, 300 * time.Millisecond}, {0, 100 * time.Millisecond},
		{990, 900 * time.Millisecond},
	},
}
