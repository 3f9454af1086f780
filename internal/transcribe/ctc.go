package transcribe

import (
	"context"
	"math"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
	"github.com/nguyentantai21042004/voice-insights/internal/audio"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
)

// CTCEngine frames a waveform for a CTC acoustic model and greedily decodes
// its output.
type CTCEngine struct {
	model  AcousticModel
	vocab  *Vocabulary
	guard  guard
	logger logger.Logger
}

// NewCTCEngine creates a CTC engine over model.
func NewCTCEngine(model AcousticModel, vocab *Vocabulary, sampleRate int, silenceThreshold float64, log logger.Logger) *CTCEngine {
	return &CTCEngine{
		model:  model,
		vocab:  vocab,
		guard:  guard{sampleRate: sampleRate, silenceThreshold: float32(silenceThreshold)},
		logger: log,
	}
}

func (e *CTCEngine) Transcribe(ctx context.Context, wf audio.Waveform) (string, error) {
	if err := e.guard.check(wf); err != nil {
		return "", err
	}

	logits, err := e.model.Logits(ctx, standardize(wf.Samples))
	if err != nil {
		return "", inferenceError(ctx, err, "acoustic model")
	}
	if len(logits) == 0 {
		return "", apperror.New(apperror.KindInference, "acoustic model returned no frames")
	}
	for i, frame := range logits {
		if len(frame) != e.vocab.Size() {
			return "", apperror.New(apperror.KindInference,
				"frame %d has %d logits, vocabulary has %d tokens", i, len(frame), e.vocab.Size())
		}
	}

	text := e.vocab.Decode(greedyDecode(logits, e.vocab.Blank()))
	e.logger.Debug(ctx, "CTC decoded %d frames into %d chars", len(logits), len(text))

	if text == "" {
		return "", apperror.New(apperror.KindEmptyAudio, "no speech recognized")
	}
	return text, nil
}

// greedyDecode takes the arg-max token per frame, collapses repeats and
// drops blanks.
func greedyDecode(logits [][]float32, blank int) []int {
	var ids []int
	prev := -1
	for _, frame := range logits {
		best := argmax(frame)
		if best != prev && best != blank {
			ids = append(ids, best)
		}
		prev = best
	}
	return ids
}

// argmax returns the first index of the largest value.
func argmax(xs []float32) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

// standardize scales samples to zero mean and unit variance, the input
// wav2vec2-style feature extractors expect.
func standardize(samples []float32) []float32 {
	var mean float64
	for _, s := range samples {
		mean += float64(s)
	}
	mean /= float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	std := math.Sqrt(variance + 1e-7)

	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32((float64(s) - mean) / std)
	}
	return out
}
