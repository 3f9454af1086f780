package watcher

import (
	"context"

	"github.com/nguyentantai21042004/voice-insights/internal/audio"
)

// Watcher discovers audio files in a directory, yielding each at most once
// per run.
type Watcher interface {
	// NextBatch runs one poll cycle and returns inputs not seen before,
	// in lexicographic order.
	NextBatch(ctx context.Context) ([]audio.Input, error)
	// Start polls until ctx is cancelled, dispatching every new input to
	// the handler, then waits for in-flight handlers.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles one discovered input
type EventHandler func(ctx context.Context, in audio.Input) error
