package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/voice-insights/internal/audio"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
)

// Options configures a poll-mode Watcher.
type Options struct {
	Dir      string
	Interval time.Duration
	Formats  audio.FormatSet
	// Settle skips files modified more recently than this, so a file still
	// being copied in is picked up on a later cycle instead of half-read.
	Settle time.Duration
	// Notify adds fsnotify events as an early trigger for a cycle.
	Notify        bool
	MaxConcurrent int
	// Clock defaults to the real clock.
	Clock Clock
}

// New creates a new Watcher instance with concurrency control
func New(opts Options, handler EventHandler, log logger.Logger) (Watcher, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("watch dir is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if len(opts.Formats) == 0 {
		opts.Formats = audio.NewFormatSet(".wav")
	}
	// Default to 2 concurrent if not specified
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}

	w := &implWatcher{
		dir:           opts.Dir,
		interval:      opts.Interval,
		formats:       opts.Formats,
		settle:        opts.Settle,
		clock:         opts.Clock,
		handler:       handler,
		logger:        log,
		processed:     NewProcessedSet(),
		maxConcurrent: opts.MaxConcurrent,
		semaphore:     make(chan struct{}, opts.MaxConcurrent),
	}

	if opts.Notify {
		fw, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		if err := fw.Add(opts.Dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("add watch path: %w", err)
		}
		w.notify = fw
	}

	return w, nil
}
