// Package audio turns raw audio inputs into the canonical waveform the
// transcription engine consumes: mono, float32, fixed sample rate.
package audio

import (
	"io"
	"math"
	"time"
)

// Input is one audio source handed to the pipeline. It only lives for one
// pipeline pass.
type Input struct {
	// ID is the file path in poll mode or an upload token in push mode.
	ID string
	// Filename is used for extension checks.
	Filename string
	// Name and Date are the display metadata persisted with the transcript.
	Name string
	Date string
	// ModTime is the source modification time, zero for uploads.
	ModTime time.Time
	// Open returns the raw byte stream. Callers close it.
	Open func() (io.ReadCloser, error)
}

// Waveform is a single-channel sequence of samples in [-1, 1].
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// Channels is always 1.
func (w Waveform) Channels() int { return 1 }

func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(w.Samples)) * time.Second / time.Duration(w.SampleRate)
}

// Peak returns the largest absolute sample value.
func (w Waveform) Peak() float32 {
	var peak float32
	for _, s := range w.Samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	return peak
}

// Split cuts the waveform into consecutive pieces of at most maxSamples.
// The pieces share the underlying array.
func (w Waveform) Split(maxSamples int) []Waveform {
	if maxSamples <= 0 || len(w.Samples) <= maxSamples {
		return []Waveform{w}
	}

	chunks := make([]Waveform, 0, (len(w.Samples)+maxSamples-1)/maxSamples)
	for start := 0; start < len(w.Samples); start += maxSamples {
		end := min(start+maxSamples, len(w.Samples))
		chunks = append(chunks, Waveform{Samples: w.Samples[start:end], SampleRate: w.SampleRate})
	}
	return chunks
}
