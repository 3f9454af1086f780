package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/voice-insights/internal/audio"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
)

type implWatcher struct {
	dir           string
	interval      time.Duration
	formats       audio.FormatSet
	settle        time.Duration
	clock         Clock
	handler       EventHandler
	logger        logger.Logger
	notify        *fsnotify.Watcher
	processed     *ProcessedSet
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup
	scanMu        sync.Mutex
}

// NextBatch lists the watched directory once and returns the recognized
// files not yielded before. Each file is marked processed before it is
// returned, so a failing transcription is never re-yielded.
func (w *implWatcher) NextBatch(ctx context.Context) ([]audio.Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", w.dir, err)
	}

	now := w.clock.Now()
	var batch []audio.Input
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !w.formats.Recognized(name) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			// Removed between listing and stat.
			continue
		}
		if w.settle > 0 && now.Sub(info.ModTime()) < w.settle {
			w.logger.Debug(ctx, "Deferring %s until it settles", name)
			continue
		}

		path := filepath.Join(w.dir, name)
		if !w.processed.MarkIfNew(path) {
			continue
		}
		batch = append(batch, fileInput(path, info.ModTime()))
	}

	// ReadDir already sorts by name; keep the guarantee explicit.
	sort.Slice(batch, func(i, j int) bool { return batch[i].Filename < batch[j].Filename })
	return batch, nil
}

// Start begins polling the directory. One cycle runs immediately, then one
// per tick and, with notify enabled, one per relevant file event.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (interval: %s, max concurrent: %d). Monitoring: %s",
		w.interval, w.maxConcurrent, w.dir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(w.formats.List(), ", "))

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if w.notify != nil {
		events, errs = w.notify.Events, w.notify.Errors
	}

	w.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case <-ticker.C():
			w.cycle(ctx)

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && w.formats.Recognized(event.Name) {
				w.logger.Debug(ctx, "File event %s on %s, scanning early", event.Op, event.Name)
				w.cycle(ctx)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file event watcher
func (w *implWatcher) Stop() error {
	if w.notify == nil {
		return nil
	}
	return w.notify.Close()
}

// cycle runs one discovery pass and dispatches the batch. Errors are logged;
// the loop never stops on them.
func (w *implWatcher) cycle(ctx context.Context) {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	batch, err := w.NextBatch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error(ctx, "Poll cycle failed: %v", err)
		}
		return
	}

	for i, in := range batch {
		w.logger.Info(ctx, "New audio detected: %s", in.ID)
		if !w.dispatch(ctx, in) {
			// Never handed off, so the next run picks these up again.
			for _, rest := range batch[i:] {
				w.processed.Unmark(rest.ID)
				w.logger.Warn(ctx, "Shutdown before %s was dispatched; it will be picked up on the next run", rest.ID)
			}
			return
		}
	}
}

// dispatch hands in to the handler on its own goroutine once a slot is free.
// The handler runs detached from ctx cancellation so shutdown lets it finish.
func (w *implWatcher) dispatch(ctx context.Context, in audio.Input) bool {
	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		return false
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()

		if err := w.handler(context.WithoutCancel(ctx), in); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", in.ID, err)
		}
	}()
	return true
}

func fileInput(path string, modTime time.Time) audio.Input {
	base := filepath.Base(path)
	return audio.Input{
		ID:       path,
		Filename: base,
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		Date:     modTime.Format("2006-01-02"),
		ModTime:  modTime,
		Open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}
}
