package audio

import (
	"context"
	"math"
)

// sincZeroCrossings is the half-width of the interpolation kernel, counted
// in zero crossings of the (possibly narrowed) sinc.
const sincZeroCrossings = 16

// Resample converts samples from one rate to another with Blackman-windowed
// sinc interpolation. When downsampling the kernel cutoff drops to the
// output Nyquist frequency so content above it is filtered instead of
// aliased. The output has round(len(in) * to / from) samples.
func Resample(in []float32, from, to int) []float32 {
	out, _ := ResampleContext(context.Background(), in, from, to)
	return out
}

// resampleCheckEvery is how many output samples are produced between
// cancellation checks.
const resampleCheckEvery = 4096

// ResampleContext is Resample that stops early with ctx.Err() once ctx is
// done.
func ResampleContext(ctx context.Context, in []float32, from, to int) ([]float32, error) {
	if from == to || len(in) == 0 {
		out := make([]float32, len(in))
		copy(out, in)
		return out, nil
	}

	ratio := float64(to) / float64(from)
	outLen := int(math.Round(float64(len(in)) * ratio))
	out := make([]float32, outLen)

	cutoff := math.Min(1, ratio)
	halfWidth := sincZeroCrossings / cutoff

	for i := range out {
		if i%resampleCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		center := float64(i) / ratio
		lo := max(int(math.Ceil(center-halfWidth)), 0)
		hi := min(int(math.Floor(center+halfWidth)), len(in)-1)

		var acc float64
		for j := lo; j <= hi; j++ {
			x := float64(j) - center
			acc += float64(in[j]) * cutoff * sinc(cutoff*x) * blackman(x/halfWidth)
		}
		out[i] = float32(acc)
	}

	return out, nil
}

// Mixdown averages interleaved frames of the given channel count into mono.
func Mixdown(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(interleaved))
		copy(out, interleaved)
		return out
	}

	frames := len(interleaved) / channels
	out := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(interleaved[f*channels+c])
		}
		out[f] = float32(sum / float64(channels))
	}
	return out
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// blackman evaluates the Blackman window at u in [-1, 1].
func blackman(u float64) float64 {
	if u <= -1 || u >= 1 {
		return 0
	}
	return 0.42 + 0.5*math.Cos(math.Pi*u) + 0.08*math.Cos(2*math.Pi*u)
}
