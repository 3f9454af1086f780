package processor

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
	"github.com/nguyentantai21042004/voice-insights/internal/audio"
	"github.com/nguyentantai21042004/voice-insights/internal/metrics"
	"github.com/nguyentantai21042004/voice-insights/internal/store"
)

// Process moves one input through RECEIVED -> NORMALIZED -> TRANSCRIBED ->
// PERSISTED. Any failure ends in FAILED with no sink write and no retry.
func (p *implProcessor) Process(ctx context.Context, in audio.Input) (Result, error) {
	startTime := p.now()
	p.logger.Info(ctx, "Processing %s (%s)", in.ID, in.Filename)
	p.transition(ctx, in.ID, StateReceived)

	text, err := p.recognize(ctx, in)
	if err != nil {
		return Result{}, p.fail(ctx, in, err)
	}

	saveStart := p.now()
	rec, err := p.sink.Insert(ctx, store.Record{
		Source: in.ID,
		Name:   in.Name,
		Date:   in.Date,
		Text:   text,
	})
	p.metrics.ObserveStage("persist", p.now().Sub(saveStart))
	if err != nil {
		return Result{}, p.fail(ctx, in, apperror.Wrap(apperror.KindPersistence, err, "save transcript for %s", in.ID))
	}
	p.transition(ctx, in.ID, StatePersisted)
	p.metrics.Item(sourceOf(in.ID), metrics.OutcomePersisted, "")

	result := Result{
		ID:          in.ID,
		RecordID:    rec.ID,
		Name:        in.Name,
		Date:        in.Date,
		Text:        text,
		ProcessedAt: p.now(),
	}
	p.logger.Info(ctx, "Completed %s in %s: %q", in.ID, result.ProcessedAt.Sub(startTime), text)
	return result, nil
}

// recognize holds a worker slot for the CPU-bound stages only, so a slow
// sink write never blocks another item's inference.
func (p *implProcessor) recognize(ctx context.Context, in audio.Input) (string, error) {
	if err := p.workers.acquire(ctx); err != nil {
		return "", interrupted(err, "wait for worker slot")
	}
	defer p.workers.release()

	stageStart := p.now()
	normCtx, cancel := context.WithTimeout(ctx, p.normalizeTimeout)
	wf, err := p.normalizer.Normalize(normCtx, in)
	cancel()
	p.metrics.ObserveStage("normalize", p.now().Sub(stageStart))
	if err != nil {
		return "", p.normalizeError(ctx, normCtx, in, err)
	}
	p.transition(ctx, in.ID, StateNormalized)

	stageStart = p.now()
	text, err := p.transcribe(ctx, wf)
	p.metrics.ObserveStage("transcribe", p.now().Sub(stageStart))
	if err != nil {
		return "", err
	}
	p.transition(ctx, in.ID, StateTranscribed)
	return text, nil
}

// normalizeError keeps typed normalizer errors as they are. Untyped ones
// are context or I/O failures: only the stage deadline says anything about
// the audio itself.
func (p *implProcessor) normalizeError(ctx, normCtx context.Context, in audio.Input, err error) error {
	if apperror.KindOf(err) != apperror.KindInternal {
		return err
	}
	if ctx.Err() != nil {
		return interrupted(err, "normalize %s", in.ID)
	}
	if errors.Is(normCtx.Err(), context.DeadlineExceeded) {
		return apperror.Wrap(apperror.KindDecode, err, "audio took longer than %s to normalize", p.normalizeTimeout)
	}
	return err
}

// interrupted maps a done caller context. An expired deadline reads as an
// inference timeout; cancellation stays internal.
func interrupted(err error, format string, args ...any) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(apperror.KindInference, err, format, args...)
	}
	return err
}

func (p *implProcessor) fail(ctx context.Context, in audio.Input, err error) error {
	kind := apperror.KindOf(err)
	p.transition(ctx, in.ID, StateFailed)
	p.metrics.Item(sourceOf(in.ID), metrics.OutcomeFailed, string(kind))
	p.logger.Error(ctx, "Failed %s [%s]: %s", in.ID, kind, apperror.MessageOf(err))
	return err
}

func (p *implProcessor) transition(ctx context.Context, id string, s State) {
	p.logger.Debug(ctx, "%s -> %s", id, s)
}

