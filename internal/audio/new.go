package audio

import (
	"time"

	"github.com/nguyentantai21042004/voice-insights/internal/logger"
	"github.com/nguyentantai21042004/voice-insights/pkg/executor"
)

// Options configures a Normalizer.
type Options struct {
	TargetRate int
	// TempDir holds per-call staging directories. Empty means os.TempDir().
	TempDir string
	Formats FormatSet
	// FFmpegPath enables transcoding of non-WAV formats when set.
	FFmpegPath string
	// MaxDuration rejects longer inputs before they are decoded. Zero
	// disables the check.
	MaxDuration time.Duration
}

type implNormalizer struct {
	targetRate  int
	tempDir     string
	formats     FormatSet
	ffmpegPath  string
	maxDuration time.Duration
	executor    executor.Executor
	logger      logger.Logger
}

// New creates a new Normalizer instance
func New(opts Options, exec executor.Executor, log logger.Logger) Normalizer {
	if opts.TargetRate <= 0 {
		opts.TargetRate = 16000
	}
	if len(opts.Formats) == 0 {
		opts.Formats = NewFormatSet(".wav")
	}

	return &implNormalizer{
		targetRate:  opts.TargetRate,
		tempDir:     opts.TempDir,
		formats:     opts.Formats,
		ffmpegPath:  opts.FFmpegPath,
		maxDuration: opts.MaxDuration,
		executor:    exec,
		logger:      log,
	}
}
