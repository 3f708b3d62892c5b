package content

import (
	"strings"

	"transcript-fetcher/pkg/domain"
)

// CountWords returns the number of whitespace-delimited tokens in text.
// Empty tokens are ignored, so repeated whitespace does not inflate the count.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CreateSegmentsFromText splits plain text into untimed transcript segments.
//
// Sources without a time axis (scraped pages, articles, plain-text transcript
// documents) still need a consistent segment shape for downstream analysis.
// The split prefers blank-line-delimited paragraphs; when the text is a single
// paragraph it falls back to sentence-ending punctuation.
func CreateSegmentsFromText(text string) []domain.TranscriptSegment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	units := splitParagraphs(text)
	if len(units) <= 1 {
		units = splitSentences(text)
	}

	segments := make([]domain.TranscriptSegment, 0, len(units))
	for _, unit := range units {
		unit = strings.TrimSpace(unit)
		if unit == "" {
			continue
		}
		segments = append(segments, domain.TranscriptSegment{Text: unit})
	}
	return segments
}

// splitParagraphs splits text on blank-line boundaries. Windows line endings
// are normalized first so "\r\n\r\n" counts as a paragraph break too.
func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(normalized, "\n\n")

	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	return paragraphs
}

// splitSentences splits text on sentence-ending punctuation (., !, ?),
// keeping the punctuation attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// NormalizeWhitespace collapses runs of whitespace into single spaces for a
// compact searchable string.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
