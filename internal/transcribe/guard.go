package transcribe

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
	"github.com/nguyentantai21042004/voice-insights/internal/audio"
)

// guard rejects waveforms the model must never see.
type guard struct {
	sampleRate       int
	silenceThreshold float32
}

func (g guard) check(wf audio.Waveform) error {
	if len(wf.Samples) == 0 {
		return apperror.New(apperror.KindEmptyAudio, "waveform has no samples")
	}
	if wf.SampleRate != g.sampleRate {
		return apperror.New(apperror.KindInference,
			"waveform is %d Hz, model expects %d Hz", wf.SampleRate, g.sampleRate)
	}
	if peak := wf.Peak(); peak < g.silenceThreshold {
		return apperror.New(apperror.KindEmptyAudio,
			"waveform is silent (peak %.2g below %.2g)", peak, g.silenceThreshold)
	}
	return nil
}

// inferenceError maps a failed model call to KindInference, calling out
// timeouts explicitly.
func inferenceError(ctx context.Context, err error, what string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.Wrap(apperror.KindInference, err, "%s timed out", what)
	}
	return apperror.Wrap(apperror.KindInference, err, "%s failed", what)
}
