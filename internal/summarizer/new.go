package summarizer

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/voice-insights/internal/config"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
	"github.com/nguyentantai21042004/voice-insights/internal/store"
)

type implGemini struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	timeout    time.Duration
	logger     logger.Logger
	generate   generateFunc
}

// NewGemini creates a Service that rotates through the supplied Gemini API keys.
func NewGemini(cfg config.GeminiConfig, log logger.Logger) Service {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &implGemini{
		apiKeys:  cfg.APIKeys,
		model:    model,
		timeout:  timeout,
		logger:   log,
		generate: generateContent,
	}
}

type implInsights struct {
	reader  store.Reader
	service Service
	logger  logger.Logger
}

// NewInsights creates an Insights aggregator over the transcript store.
func NewInsights(reader store.Reader, svc Service, log logger.Logger) Insights {
	return &implInsights{
		reader:  reader,
		service: svc,
		logger:  log,
	}
}
