package transcribe

import (
	"fmt"

	"github.com/nguyentantai21042004/voice-insights/internal/config"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
	"github.com/nguyentantai21042004/voice-insights/pkg/executor"
)

// New creates an Engine based on the configured backend. sampleRate is the
// rate the normalizer produces.
func New(cfg config.EngineConfig, sampleRate int, tempDir string, exec executor.Executor, log logger.Logger) (Engine, error) {
	switch cfg.Backend {
	case "whisper", "":
		return NewWhisperEngine(cfg.Whisper, sampleRate, cfg.SilenceThreshold, tempDir, exec, log), nil
	case "ctc":
		vocab, err := LoadVocabulary(cfg.CTC.VocabPath)
		if err != nil {
			return nil, fmt.Errorf("transcribe: %w", err)
		}
		model := NewCommandModel(cfg.CTC.Command, cfg.CTC.Args, exec)
		return NewCTCEngine(model, vocab, sampleRate, cfg.SilenceThreshold, log), nil
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q (supported: whisper, ctc)", cfg.Backend)
	}
}
