package processor

import (
	"time"

	"github.com/nguyentantai21042004/voice-insights/internal/audio"
	"github.com/nguyentantai21042004/voice-insights/internal/config"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
	"github.com/nguyentantai21042004/voice-insights/internal/metrics"
	"github.com/nguyentantai21042004/voice-insights/internal/store"
	"github.com/nguyentantai21042004/voice-insights/internal/transcribe"
)

type implProcessor struct {
	normalizer       audio.Normalizer
	engine           transcribe.Engine
	sink             store.Sink
	metrics          *metrics.Metrics
	logger           logger.Logger
	timeout          time.Duration
	normalizeTimeout time.Duration
	maxChunkSeconds  int
	workers          semaphore
	now              func() time.Time
}

// New creates a new Processor instance. Normalization and inference share a
// pool of cfg.Performance.MaxConcurrent slots.
func New(cfg *config.Config, norm audio.Normalizer, engine transcribe.Engine, sink store.Sink, m *metrics.Metrics, log logger.Logger) Processor {
	maxConcurrent := cfg.Performance.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	timeout := cfg.Engine.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	normalizeTimeout := cfg.Audio.Timeout
	if normalizeTimeout <= 0 {
		normalizeTimeout = 2 * time.Minute
	}
	if m == nil {
		m = metrics.New()
	}

	return &implProcessor{
		normalizer:       norm,
		engine:           engine,
		sink:             sink,
		metrics:          m,
		logger:           log,
		timeout:          timeout,
		normalizeTimeout: normalizeTimeout,
		maxChunkSeconds:  cfg.Audio.MaxChunkSeconds,
		workers:          newSemaphore(maxConcurrent),
		now:              time.Now,
	}
}
