package content

import (
	"strings"

	"transcript-fetcher/pkg/domain"
)

// BuildTranscript assembles a canonical Transcript from normalized parts,
// enforcing the invariants every strategy must satisfy: non-empty full text of
// at least domain.MinTranscriptLength characters and a word count derived from
// the full text. It returns nil when the text fails the minimum-length bar,
// which callers treat as a non-match rather than a low-confidence success.
func BuildTranscript(fullText string, segments []domain.TranscriptSegment, language string, source domain.StrategyTag, confidence string) *domain.Transcript {
	fullText = strings.TrimSpace(fullText)
	if len(fullText) < domain.MinTranscriptLength {
		return nil
	}

	if language == "" {
		language = "en"
	}
	if segments == nil {
		segments = CreateSegmentsFromText(fullText)
	}

	return &domain.Transcript{
		FullText:   fullText,
		Segments:   segments,
		Language:   language,
		Source:     source,
		WordCount:  CountWords(fullText),
		Confidence: confidence,
	}
}
