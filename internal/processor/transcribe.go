package processor

import (
	"context"
	"errors"
	"strings"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
	"github.com/nguyentantai21042004/voice-insights/internal/audio"
)

// transcribe splits long audio into bounded chunks and sends each to the
// engine. Silent chunks are skipped as long as at least one has speech.
func (p *implProcessor) transcribe(ctx context.Context, wf audio.Waveform) (string, error) {
	chunks := wf.Split(p.maxChunkSeconds * wf.SampleRate)
	if len(chunks) > 1 {
		p.logger.Debug(ctx, "Splitting %s of audio into %d chunks", wf.Duration(), len(chunks))
	}

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		text, err := p.transcribeChunk(ctx, chunk)
		if err != nil {
			if len(chunks) > 1 && apperror.Is(err, apperror.KindEmptyAudio) {
				p.logger.Debug(ctx, "Skipping chunk %d/%d: %s", i+1, len(chunks), apperror.MessageOf(err))
				continue
			}
			return "", err
		}
		parts = append(parts, text)
	}

	if len(parts) == 0 {
		return "", apperror.New(apperror.KindEmptyAudio, "all %d chunks are silent", len(chunks))
	}
	return strings.Join(parts, " "), nil
}

type engineReply struct {
	text string
	err  error
}

// transcribeChunk bounds one engine call by the inference timeout, even
// when the engine itself does not watch its context.
func (p *implProcessor) transcribeChunk(ctx context.Context, wf audio.Waveform) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	replies := make(chan engineReply, 1)
	go func() {
		text, err := p.engine.Transcribe(callCtx, wf)
		replies <- engineReply{text: text, err: err}
	}()

	var r engineReply
	select {
	case r = <-replies:
	case <-callCtx.Done():
		r.err = callCtx.Err()
	}

	if r.err != nil {
		if apperror.KindOf(r.err) != apperror.KindInternal {
			return "", r.err
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", apperror.Wrap(apperror.KindInference, r.err, "inference timed out after %s", p.timeout)
		}
		return "", apperror.Wrap(apperror.KindInference, r.err, "inference failed")
	}

	text := strings.TrimSpace(r.text)
	if text == "" {
		return "", apperror.New(apperror.KindEmptyAudio, "no speech recognized")
	}
	return text, nil
}
