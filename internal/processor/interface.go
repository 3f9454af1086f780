package processor

import (
	"context"

	"github.com/nguyentantai21042004/voice-insights/internal/audio"
)

// Processor runs one audio input through normalize, transcribe and persist.
// It is safe for concurrent use by the upload path and the watcher.
type Processor interface {
	Process(ctx context.Context, in audio.Input) (Result, error)
}
