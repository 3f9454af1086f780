package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
)

// Normalize decodes in and returns a mono waveform at the target rate.
// The input is staged in a private temp directory which is removed before
// returning, on success and failure alike.
func (n *implNormalizer) Normalize(ctx context.Context, in Input) (Waveform, error) {
	if err := ctx.Err(); err != nil {
		return Waveform{}, err
	}
	if !n.formats.Recognized(in.Filename) {
		return Waveform{}, apperror.New(apperror.KindUnsupportedFormat,
			"%q is not a recognized audio format (accepted: %s)",
			filepath.Ext(in.Filename), strings.Join(n.formats.List(), ", "))
	}

	dir, err := os.MkdirTemp(n.tempDir, "normalize-*")
	if err != nil {
		return Waveform{}, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(dir)

	staged, err := n.stage(in, dir)
	if err != nil {
		return Waveform{}, err
	}

	wavPath := staged
	if strings.ToLower(filepath.Ext(in.Filename)) != ".wav" {
		if n.ffmpegPath == "" {
			return Waveform{}, apperror.New(apperror.KindUnsupportedFormat,
				"%s input needs transcoding and ffmpeg is disabled", filepath.Ext(in.Filename))
		}
		if wavPath, err = n.transcode(ctx, staged, dir); err != nil {
			return Waveform{}, err
		}
	}

	decoded, err := decodeWAV(wavPath, n.maxDuration)
	if err != nil {
		return Waveform{}, err
	}

	mono := Mixdown(decoded.samples, decoded.channels)
	resampled, err := ResampleContext(ctx, mono, decoded.sampleRate, n.targetRate)
	if err != nil {
		return Waveform{}, err
	}
	wf := Waveform{Samples: resampled, SampleRate: n.targetRate}

	n.logger.Debug(ctx, "Normalized %s: %d Hz x%d -> %d Hz mono, %s",
		in.ID, decoded.sampleRate, decoded.channels, wf.SampleRate, wf.Duration())
	return wf, nil
}

// stage copies the input stream into dir.
func (n *implNormalizer) stage(in Input, dir string) (string, error) {
	if in.Open == nil {
		return "", apperror.New(apperror.KindDecode, "input %s has no audio payload", in.ID)
	}
	rc, err := in.Open()
	if err != nil {
		return "", apperror.Wrap(apperror.KindDecode, err, "open input %s", in.ID)
	}
	defer rc.Close()

	path := filepath.Join(dir, "input"+strings.ToLower(filepath.Ext(in.Filename)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, rc); err != nil {
		return "", apperror.Wrap(apperror.KindDecode, err, "read input %s", in.ID)
	}
	return path, nil
}

// transcode converts src to PCM WAV with ffmpeg, keeping the native rate
// and channel layout so resampling and mixdown stay in-process.
func (n *implNormalizer) transcode(ctx context.Context, src, dir string) (string, error) {
	dst := filepath.Join(dir, "transcoded.wav")

	// -vn: drop any video stream
	// -c:a pcm_s16le: 16-bit little-endian PCM
	args := []string{
		"-i", src,
		"-vn",
		"-c:a", "pcm_s16le",
		"-y",
		dst,
	}

	if _, err := n.executor.Execute(ctx, n.ffmpegPath, args...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperror.Wrap(apperror.KindDecode, err, "ffmpeg transcode")
	}
	return dst, nil
}

func decodeWAV(path string, maxDuration time.Duration) (pcm, error) {
	f, err := os.Open(path)
	if err != nil {
		return pcm{}, fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return pcm{}, classifyInvalid(f)
	}

	switch d.WavAudioFormat {
	case wavFormatPCM:
	case wavFormatExtensible:
		sub, err := extensibleSubFormat(f)
		if err != nil {
			return pcm{}, apperror.Wrap(apperror.KindDecode, err, "read extensible fmt chunk")
		}
		if sub != wavFormatPCM {
			return pcm{}, apperror.New(apperror.KindUnsupportedFormat,
				"wav extensible sub-format 0x%04x is not integer PCM", sub)
		}
	default:
		return pcm{}, apperror.New(apperror.KindUnsupportedFormat,
			"wav codec 0x%04x is not integer PCM", d.WavAudioFormat)
	}

	if err := checkHeader(f, int(d.SampleRate), int(d.NumChans), int(d.BitDepth), maxDuration); err != nil {
		return pcm{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return pcm{}, fmt.Errorf("rewind staged file: %w", err)
	}
	d = wav.NewDecoder(f)

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return pcm{}, apperror.Wrap(apperror.KindDecode, err, "read pcm data")
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return pcm{}, apperror.New(apperror.KindDecode, "wav header has no usable format")
	}

	return pcm{
		samples:    scaleToFloat(buf.Data, int(d.BitDepth)),
		sampleRate: buf.Format.SampleRate,
		channels:   buf.Format.NumChannels,
	}, nil
}

// classifyInvalid tells a known non-WAV container apart from plain garbage.
func classifyInvalid(f *os.File) error {
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if _, ft, err := tag.Identify(f); err == nil && ft != tag.UnknownFileType {
			return apperror.New(apperror.KindUnsupportedFormat, "content is %s, not wav", ft)
		}
	}
	return apperror.New(apperror.KindDecode, "not a valid wav stream")
}
