package audio

import "context"

// Normalizer decodes an Input into a mono Waveform at the target rate.
type Normalizer interface {
	Normalize(ctx context.Context, in Input) (Waveform, error)
}
