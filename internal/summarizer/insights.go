package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
)

const insightsPrompt = "Based on these reviews generate insights and suggestions for how to improve my business, but keep it concise and just give bullet points: %s"

// Generate reads every stored transcript, asks the service for insights and
// formats the answer for HTML display. Stored data is never modified.
func (s *implInsights) Generate(ctx context.Context) (Report, error) {
	recs, err := s.reader.ListAll(ctx)
	if err != nil {
		return Report{}, apperror.Wrap(apperror.KindPersistence, err, "read transcripts")
	}
	if len(recs) == 0 {
		s.logger.Info(ctx, "No transcripts stored, skipping insights generation")
		return Report{}, nil
	}

	texts := make([]string, len(recs))
	for i, r := range recs {
		texts[i] = r.Text
	}

	s.logger.Info(ctx, "Generating insights from %d transcripts", len(recs))
	raw, err := s.service.Summarize(ctx, BuildPrompt(texts))
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			err = apperror.Wrap(apperror.KindSummaryService, err, "summarize transcripts")
		}
		return Report{}, err
	}

	return Report{Raw: raw, HTML: FormatHTML(raw), Transcripts: len(recs)}, nil
}

// BuildPrompt joins the transcripts into the fixed insights instruction.
func BuildPrompt(texts []string) string {
	return fmt.Sprintf(insightsPrompt, strings.Join(texts, " "))
}

var htmlReplacer = strings.NewReplacer("\n\n", "<br><br>", "•", "&bull;")

// FormatHTML rewrites paragraph breaks and bullet glyphs as markup.
func FormatHTML(s string) string {
	return htmlReplacer.Replace(s)
}
