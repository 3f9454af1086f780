// Package transcribe provides speech-to-text engines.
//
// Supported backends:
//   - whisper: whisper.cpp CLI driven through the executor (default)
//   - ctc: an external acoustic model producing per-frame logits,
//     decoded here with greedy CTC
package transcribe

import (
	"context"

	"github.com/nguyentantai21042004/voice-insights/internal/audio"
)

// Engine converts one bounded mono waveform into text. Implementations are
// stateless per call and safe for concurrent use.
type Engine interface {
	Transcribe(ctx context.Context, wf audio.Waveform) (string, error)
}

// AcousticModel runs a forward pass and returns logits shaped [frames][vocab].
type AcousticModel interface {
	Logits(ctx context.Context, input []float32) ([][]float32, error)
}
