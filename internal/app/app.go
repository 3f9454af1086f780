// Package app wires the pipeline, its entry points and the directory watcher
// into one runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/nguyentantai21042004/voice-insights/internal/audio"
	"github.com/nguyentantai21042004/voice-insights/internal/config"
	"github.com/nguyentantai21042004/voice-insights/internal/httpapi"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
	"github.com/nguyentantai21042004/voice-insights/internal/metrics"
	"github.com/nguyentantai21042004/voice-insights/internal/processor"
	"github.com/nguyentantai21042004/voice-insights/internal/store"
	"github.com/nguyentantai21042004/voice-insights/internal/summarizer"
	"github.com/nguyentantai21042004/voice-insights/internal/transcribe"
	"github.com/nguyentantai21042004/voice-insights/internal/watcher"
	"github.com/nguyentantai21042004/voice-insights/pkg/executor"
)

// Application holds every component, each built exactly once.
type Application struct {
	cfg       *config.Config
	logger    logger.Logger
	metrics   *metrics.Metrics
	sink      store.Sink
	processor processor.Processor
	insights  summarizer.Insights
	server    *echo.Echo
	watcher   watcher.Watcher
}

type options struct {
	engine  transcribe.Engine
	service summarizer.Service
	sink    store.Sink
	clock   watcher.Clock
}

// Option overrides a component, mostly for tests.
type Option func(*options)

func WithEngine(e transcribe.Engine) Option { return func(o *options) { o.engine = e } }

func WithSummaryService(s summarizer.Service) Option { return func(o *options) { o.service = s } }

func WithSink(s store.Sink) Option { return func(o *options) { o.sink = s } }

func WithClock(c watcher.Clock) Option { return func(o *options) { o.clock = c } }

// New builds the application from a validated config.
func New(cfg *config.Config, log logger.Logger, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	exec := executor.New()
	formats := audio.NewFormatSet(cfg.Watch.Extensions...)

	ffmpegPath := ""
	if cfg.Audio.FFmpeg.Enabled {
		ffmpegPath = cfg.Audio.FFmpeg.BinaryPath
	}
	norm := audio.New(audio.Options{
		TargetRate:  cfg.Audio.TargetSampleRate,
		TempDir:     cfg.Paths.Temp,
		Formats:     formats,
		FFmpegPath:  ffmpegPath,
		MaxDuration: cfg.Audio.MaxDuration,
	}, exec, log)

	engine := o.engine
	if engine == nil {
		var err error
		if engine, err = transcribe.New(cfg.Engine, cfg.Audio.TargetSampleRate, cfg.Paths.Temp, exec, log); err != nil {
			return nil, fmt.Errorf("create transcription engine: %w", err)
		}
	}

	sink := o.sink
	if sink == nil {
		var err error
		if sink, err = store.New(cfg.Database); err != nil {
			return nil, fmt.Errorf("open transcript store: %w", err)
		}
	}

	service := o.service
	if service == nil {
		service = summarizer.NewGemini(cfg.Gemini, log)
	}

	a := &Application{
		cfg:     cfg,
		logger:  log,
		metrics: metrics.New(),
		sink:    sink,
	}
	a.processor = processor.New(cfg, norm, engine, sink, a.metrics, log)
	a.insights = summarizer.NewInsights(sink, service, log)
	a.server = httpapi.New(httpapi.Deps{
		Processor:     a.processor,
		Store:         sink,
		Insights:      a.insights,
		Metrics:       a.metrics,
		Logger:        log,
		UploadLimitMB: cfg.Server.UploadLimitMB,
	})

	if cfg.Watch.Enabled {
		w, err := watcher.New(watcher.Options{
			Dir:           cfg.Watch.Dir,
			Interval:      cfg.Watch.Interval,
			Formats:       formats,
			Settle:        cfg.Watch.Settle,
			Notify:        cfg.Watch.Notify,
			MaxConcurrent: cfg.Performance.MaxConcurrent,
			Clock:         o.clock,
		}, a.handleDiscovered, log)
		if err != nil {
			sink.Close()
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		a.watcher = w
	}

	return a, nil
}

// Run serves HTTP and, when enabled, watches the directory until ctx is
// cancelled. In-flight items finish before it returns.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 2)
	go func() {
		if err := a.server.Start(a.cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()

	watchDone := make(chan struct{})
	if a.watcher != nil {
		go func() {
			defer close(watchDone)
			if err := a.watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- fmt.Errorf("watcher: %w", err)
			}
		}()
	} else {
		close(watchDone)
	}

	a.logger.Info(ctx, "Listening on %s", a.cfg.Server.Address)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info(ctx, "Shutdown signal received")
	case runErr = <-errChan:
		a.logger.Error(ctx, "Stopping after error: %v", runErr)
	}

	a.logger.Info(ctx, "Shutting down gracefully...")
	cancel()
	<-watchDone
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Warn(ctx, "Failed to stop file watcher: %v", err)
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn(ctx, "HTTP shutdown: %v", err)
	}

	return runErr
}

// handleDiscovered runs a watched file through the pipeline. The transcript
// is persisted like an upload; failures are only logged by the watcher.
func (a *Application) handleDiscovered(ctx context.Context, in audio.Input) error {
	a.metrics.Discovered()
	res, err := a.processor.Process(ctx, in)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "Transcription for %s: %s", in.Filename, res.Text)
	return nil
}

func (a *Application) Handler() http.Handler { return a.server }

func (a *Application) Processor() processor.Processor { return a.processor }

func (a *Application) Insights() summarizer.Insights { return a.insights }

func (a *Application) Store() store.Reader { return a.sink }

// Close releases the transcript store.
func (a *Application) Close() error {
	return a.sink.Close()
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{cfg.Paths.Temp}
	if cfg.Watch.Enabled {
		dirs = append(dirs, cfg.Watch.Dir)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
