package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
	"github.com/nguyentantai21042004/voice-insights/internal/audio"
	"github.com/nguyentantai21042004/voice-insights/internal/config"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
	"github.com/nguyentantai21042004/voice-insights/pkg/executor"
)

// WhisperEngine runs the whisper.cpp CLI on a temporary WAV file.
type WhisperEngine struct {
	cfg      config.WhisperConfig
	tempDir  string
	executor executor.Executor
	guard    guard
	logger   logger.Logger
}

// NewWhisperEngine creates a whisper.cpp CLI engine.
func NewWhisperEngine(cfg config.WhisperConfig, sampleRate int, silenceThreshold float64, tempDir string, exec executor.Executor, log logger.Logger) *WhisperEngine {
	return &WhisperEngine{
		cfg:      cfg,
		tempDir:  tempDir,
		executor: exec,
		guard:    guard{sampleRate: sampleRate, silenceThreshold: float32(silenceThreshold)},
		logger:   log,
	}
}

func (e *WhisperEngine) Transcribe(ctx context.Context, wf audio.Waveform) (string, error) {
	if err := e.guard.check(wf); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp(e.tempDir, "whisper-*")
	if err != nil {
		return "", fmt.Errorf("create whisper temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "input.wav")
	if err := audio.WriteWAVFile(wavPath, wf.Samples, wf.SampleRate, 1); err != nil {
		return "", fmt.Errorf("stage whisper input: %w", err)
	}
	outputPrefix := filepath.Join(dir, "output")

	// -m: Model path
	// -f: Input audio file
	// -otxt: Plain text output (whisper appends .txt to the prefix)
	// -of: Output file prefix
	// -l: Force language (prevents hallucination)
	// -t: Number of threads
	// -np: No progress prints on stdout
	args := []string{
		"-m", e.cfg.ModelPath,
		"-f", wavPath,
		"-otxt",
		"-of", outputPrefix,
		"-l", e.cfg.Language,
		"-t", strconv.Itoa(e.cfg.Threads),
		"-np",
	}
	if e.cfg.Prompt != "" {
		args = append(args, "--prompt", e.cfg.Prompt)
	}

	e.logger.Debug(ctx, "Running whisper on %s of audio", wf.Duration())
	if _, err := e.executor.Execute(ctx, e.cfg.BinaryPath, args...); err != nil {
		return "", inferenceError(ctx, err, "whisper")
	}

	data, err := os.ReadFile(outputPrefix + ".txt")
	if err != nil {
		return "", apperror.Wrap(apperror.KindInference, err, "read whisper output")
	}

	text := strings.Join(strings.Fields(string(data)), " ")
	if text == "" {
		return "", apperror.New(apperror.KindEmptyAudio, "no speech recognized")
	}
	return text, nil
}
