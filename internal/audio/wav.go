package audio

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// pcm is decoded, still interleaved, audio at its native rate.
type pcm struct {
	samples    []float32
	sampleRate int
	channels   int
}

// WriteWAVFile encodes interleaved float samples as 16-bit PCM WAV.
func WriteWAVFile(path string, interleaved []float32, sampleRate, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()

	data := make([]int, len(interleaved))
	for i, s := range interleaved {
		v := math.Round(float64(s) * math.MaxInt16)
		data[i] = int(math.Max(math.MinInt16, math.Min(math.MaxInt16, v)))
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// scaleToFloat maps integer PCM of the given bit depth into [-1, 1].
// 8-bit WAV is unsigned.
func scaleToFloat(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	if bitDepth == 8 {
		for i, v := range data {
			out[i] = float32(v-128) / 128
		}
		return out
	}

	scale := float64(int64(1) << (bitDepth - 1))
	for i, v := range data {
		out[i] = float32(float64(v) / scale)
	}
	return out
}
