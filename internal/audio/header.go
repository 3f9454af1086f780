package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
)

// Declared sample rates outside this band are rejected before decoding.
// A tiny file claiming 1 Hz would otherwise resample into millions of
// samples per input sample.
const (
	MinSampleRate = 4000
	MaxSampleRate = 384000
)

// checkHeader validates the declared format and bounds the decoded length
// by what the file size allows.
func checkHeader(f *os.File, sampleRate, channels, bitDepth int, maxDuration time.Duration) error {
	if sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return apperror.New(apperror.KindUnsupportedFormat,
			"sample rate %d Hz is outside %d-%d Hz", sampleRate, MinSampleRate, MaxSampleRate)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return apperror.New(apperror.KindUnsupportedFormat, "%d-bit pcm is not supported", bitDepth)
	}
	if channels < 1 {
		return apperror.New(apperror.KindDecode, "wav header declares %d channels", channels)
	}

	if maxDuration <= 0 {
		return nil
	}
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat staged file: %w", err)
	}
	frames := info.Size() / int64(channels*bitDepth/8)
	if d := time.Duration(frames) * time.Second / time.Duration(sampleRate); d > maxDuration {
		return apperror.New(apperror.KindUnsupportedFormat,
			"audio may run up to %s, limit is %s", d.Round(time.Second), maxDuration)
	}
	return nil
}

var errNoFmtChunk = errors.New("fmt chunk not found")

// extensibleSubFormat returns the first two bytes of the SubFormat GUID of a
// WAVE_FORMAT_EXTENSIBLE fmt chunk, which hold the real format tag.
func extensibleSubFormat(f *os.File) (uint16, error) {
	if _, err := f.Seek(12, io.SeekStart); err != nil {
		return 0, err
	}

	var hdr [8]byte
	for {
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			return 0, errNoFmtChunk
		}
		size := int64(binary.LittleEndian.Uint32(hdr[4:]))
		if string(hdr[:4]) != "fmt " {
			// Chunks are word aligned.
			if _, err := f.Seek(size+size%2, io.SeekCurrent); err != nil {
				return 0, err
			}
			continue
		}

		// 16 bytes of base format, cbSize, valid bits, channel mask, GUID.
		if size < 26 {
			return 0, fmt.Errorf("extensible fmt chunk is %d bytes", size)
		}
		body := make([]byte, 26)
		if _, err := io.ReadFull(f, body); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint16(body[24:]), nil
	}
}
