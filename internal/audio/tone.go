package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

const (
	amplitude = 0.4 * math.MaxInt16
	fade      = 5 * time.Millisecond
)

// Synthesize renders t as mono signed 16-bit little-endian PCM.
func Synthesize(t Tone) []byte {
	var total int
	for _, n := range t {
		total += samples(n.Dur)
	}

	pcm := make([]byte, 0, total*2)
	for _, n := range t {
		count := samples(n.Dur)
		ramp := min(samples(fade), count/2)
		for i := range count {
			var v float64
			if n.Freq > 0 {
				v = amplitude * math.Sin(2*math.Pi*n.Freq*float64(i)/SampleRate)
				// Short linear ramps avoid clicks at note edges.
				switch {
				case ramp > 0 && i < ramp:
					v *= float64(i) / float64(ramp)
				case ramp > 0 && i >= count-ramp:
					v *= float64(count-1-i) / float64(ramp)
				}
			}
			pcm = binary.LittleEndian.AppendUint16(pcm, uint16(int16(v)))
		}
	}
	return pcm
}

// Duration returns how long PCM data plays.
func Duration(pcm []byte) time.Duration {
	frames := len(pcm) / (ChannelCount * BitDepth / 8)
	return time.Duration(frames) * time.Second / SampleRate
}

func samples(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d * SampleRate / time.Second)
}

// EncodeWAV wraps PCM data in a minimal RIFF/WAVE header.
func EncodeWAV(pcm []byte) []byte {
	const headerSize = 44
	blockAlign := ChannelCount * BitDepth / 8
	out := make([]byte, 0, headerSize+len(pcm))

	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(pcm)))
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1) // PCM
	out = binary.LittleEndian.AppendUint16(out, ChannelCount)
	out = binary.LittleEndian.AppendUint32(out, SampleRate)
	out = binary.LittleEndian.AppendUint32(out, uint32(SampleRate*blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, BitDepth)
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(pcm)))
	return append(out, pcm...)
}

// extractPCM strips the WAV/RIFF header and returns raw PCM data.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}

	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	// Walk chunks to find the "data" chunk.
	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if chunkID == "data" {
			start := pos + 8
			end := min(start+chunkSize, len(wav))
			return wav[start:end], nil
		}

		pos += 8 + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, errors.New("data chunk not found in WAV")
}
