package summarizer

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/voice-insights/internal/store"
)

const (
	docFont     = "Times New Roman"
	docColor    = "000000"
	bodySize    = 13
	titleSize   = 16
	recordSize  = 14
	bulletGlyph = "• "
)

type blockKind int

const (
	blockText blockKind = iota
	blockHeading
	blockBullet
	blockNumbered
)

// span is a run of text with one weight.
type span struct {
	text string
	bold bool
}

// block is one rendered paragraph of an insights digest.
type block struct {
	kind  blockKind
	level int // heading depth, 1-6
	spans []span
}

var (
	headingLine  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	bulletLine   = regexp.MustCompile(`^(?:[-*+]|•)\s+(.+)$`)
	numberedLine = regexp.MustCompile(`^\d+[.)]\s+.+$`)
	boldSpan     = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
)

// parseDigest splits model output into paragraphs. Blank lines and
// horizontal rules are dropped.
func parseDigest(markdown string) []block {
	var blocks []block
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Trim(line, "-*_") == "" {
			continue
		}

		switch m := headingLine.FindStringSubmatch(line); {
		case m != nil:
			blocks = append(blocks, block{kind: blockHeading, level: len(m[1]), spans: []span{{text: stripInline(m[2]), bold: true}}})
		case bulletLine.MatchString(line):
			body := bulletLine.FindStringSubmatch(line)[1]
			blocks = append(blocks, block{kind: blockBullet, spans: splitBold(body)})
		case numberedLine.MatchString(line):
			blocks = append(blocks, block{kind: blockNumbered, spans: splitBold(line)})
		default:
			blocks = append(blocks, block{kind: blockText, spans: splitBold(line)})
		}
	}
	return blocks
}

// splitBold turns **x** and __x__ markers into bold spans.
func splitBold(s string) []span {
	var out []span
	last := 0
	for _, loc := range boldSpan.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > last {
			out = append(out, span{text: stripInline(s[last:loc[0]])})
		}
		var inner string
		if loc[2] >= 0 {
			inner = s[loc[2]:loc[3]]
		} else {
			inner = s[loc[4]:loc[5]]
		}
		out = append(out, span{text: stripInline(inner), bold: true})
		last = loc[1]
	}
	if last < len(s) {
		out = append(out, span{text: stripInline(s[last:])})
	}
	return out
}

func stripInline(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}

func headingPt(level int) uint64 {
	if level >= 4 {
		return bodySize
	}
	return titleSize + 1 - uint64(level)
}

func writeRun(p *docx.Paragraph, sp span, size uint64) {
	if sp.text == "" {
		return
	}
	run := p.AddText(sp.text).Font(docFont).Size(size).Color(docColor)
	if sp.bold {
		run.Bold(true)
	}
}

func writeBlock(doc *docx.RootDoc, b block) {
	p := doc.AddParagraph("")
	size := uint64(bodySize)
	switch b.kind {
	case blockHeading:
		size = headingPt(b.level)
	case blockBullet:
		writeRun(p, span{text: bulletGlyph}, size)
	}
	for _, sp := range b.spans {
		writeRun(p, sp, size)
	}
}

// ExportInsights writes a generated insights digest (markdown or plain
// bullet text) to a styled docx file.
func ExportInsights(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	writeBlock(doc, block{kind: blockHeading, level: 1, spans: []span{{text: title, bold: true}}})
	for _, b := range parseDigest(markdown) {
		writeBlock(doc, b)
	}
	return doc.SaveTo(outputPath)
}

// ExportTranscripts writes every record as a "name (date)" line followed by
// its text, in insertion order.
func ExportTranscripts(title string, recs []store.Record, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	writeBlock(doc, block{kind: blockHeading, level: 1, spans: []span{{text: title, bold: true}}})
	for _, r := range recs {
		p := doc.AddParagraph("")
		writeRun(p, span{text: r.Name + " (" + r.Date + ")", bold: true}, recordSize)
		writeRun(doc.AddParagraph(""), span{text: strings.TrimSpace(r.Text)}, bodySize)
	}
	return doc.SaveTo(outputPath)
}
