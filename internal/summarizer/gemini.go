package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
)

// generateFunc performs one GenerateContent call with a single key.
type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

// Summarize sends prompt to Gemini and returns the response text.
// Rotates API keys on 429 / quota errors.
func (s *implGemini) Summarize(ctx context.Context, prompt string) (string, error) {
	if len(s.apiKeys) == 0 {
		return "", apperror.New(apperror.KindSummaryService, "no Gemini API key configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var lastErr error
	for range len(s.apiKeys) {
		idx, key := s.key()

		text, err := s.generate(ctx, key, s.model, prompt)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperror.Wrap(apperror.KindSummaryService, err, "Gemini call timed out after %s", s.timeout)
		}
		if !isRateLimited(err) {
			return "", apperror.Wrap(apperror.KindSummaryService, err, "generate content")
		}

		s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
		s.rotateKey()
		lastErr = err
	}

	return "", apperror.Wrap(apperror.KindSummaryService, lastErr, "all API keys exhausted")
}

func (s *implGemini) key() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey, s.apiKeys[s.currentKey]
}

func (s *implGemini) rotateKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func generateContent(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
		return text.String(), nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}
