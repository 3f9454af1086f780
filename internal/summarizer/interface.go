package summarizer

import "context"

// Service turns a prompt into generated text. It is a remote call that may
// fail or time out.
type Service interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Insights aggregates every stored transcript into one digest.
type Insights interface {
	Generate(ctx context.Context) (Report, error)
}

// Report is a generated digest. HTML has paragraph breaks and bullet glyphs
// rewritten as markup; Raw is the service response as returned.
type Report struct {
	Raw         string
	HTML        string
	Transcripts int
}
