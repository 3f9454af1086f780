package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	blankToken         = "<pad>"
	wordDelimiterToken = "|"
)

// Vocabulary maps CTC token ids to text, in the wav2vec2 vocab.json layout.
type Vocabulary struct {
	tokens []string
	blank  int
}

// NewVocabulary builds a vocabulary from a token->id map. Ids must be
// contiguous from zero and the blank token must be present.
func NewVocabulary(ids map[string]int) (*Vocabulary, error) {
	tokens := make([]string, len(ids))
	seen := make([]bool, len(ids))
	for tok, id := range ids {
		if id < 0 || id >= len(ids) || seen[id] {
			return nil, fmt.Errorf("vocabulary ids must be unique and in [0, %d), got %d for %q", len(ids), id, tok)
		}
		tokens[id] = tok
		seen[id] = true
	}

	blank, ok := ids[blankToken]
	if !ok {
		return nil, fmt.Errorf("vocabulary has no %s token", blankToken)
	}
	return &Vocabulary{tokens: tokens, blank: blank}, nil
}

// LoadVocabulary reads a vocab.json file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var ids map[string]int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	return NewVocabulary(ids)
}

func (v *Vocabulary) Size() int { return len(v.tokens) }

func (v *Vocabulary) Blank() int { return v.blank }

// Decode turns token ids into text. Special tokens are dropped and the word
// delimiter becomes a space.
func (v *Vocabulary) Decode(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		tok := v.tokens[id]
		switch {
		case tok == wordDelimiterToken:
			b.WriteByte(' ')
		case strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">"):
			// <pad>, <s>, </s>, <unk>
		default:
			b.WriteString(tok)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
