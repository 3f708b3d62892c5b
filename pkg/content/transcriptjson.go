package content

import (
	"encoding/json"
	"strings"

	"transcript-fetcher/pkg/domain"
)

// jsonSegment covers the segment object field names seen in the wild:
// different publishers expose the text under "text", "content" or "transcript".
type jsonSegment struct {
	Start      *float64 `json:"start"`
	Duration   *float64 `json:"duration"`
	Text       string   `json:"text"`
	Content    string   `json:"content"`
	Transcript string   `json:"transcript"`
}

func (s jsonSegment) bestText() string {
	for _, candidate := range []string{s.Text, s.Content, s.Transcript} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

// TranscriptFromJSON extracts transcript segments from a JSON payload.
//
// Three shapes are accepted: a bare array of segment objects, an object with a
// "segments" array of the same shape, and an object with a flat "transcript"
// or "text" string field. Anything else yields no segments, which the caller
// treats as a content-shape failure.
func TranscriptFromJSON(body []byte) []domain.TranscriptSegment {
	// Shape 1: bare array of segment objects.
	var arr []jsonSegment
	if err := json.Unmarshal(body, &arr); err == nil {
		if segs := segmentsFromJSONSegments(arr); len(segs) > 0 {
			return segs
		}
	}

	// Shape 2 and 3: object forms.
	var obj struct {
		Segments   []jsonSegment `json:"segments"`
		Transcript string        `json:"transcript"`
		Text       string        `json:"text"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil
	}

	if segs := segmentsFromJSONSegments(obj.Segments); len(segs) > 0 {
		return segs
	}

	flat := strings.TrimSpace(obj.Transcript)
	if flat == "" {
		flat = strings.TrimSpace(obj.Text)
	}
	if flat != "" {
		return CreateSegmentsFromText(flat)
	}

	return nil
}

func segmentsFromJSONSegments(raw []jsonSegment) []domain.TranscriptSegment {
	segments := make([]domain.TranscriptSegment, 0, len(raw))
	for _, seg := range raw {
		text := seg.bestText()
		if text == "" {
			continue
		}
		segments = append(segments, domain.TranscriptSegment{
			Start:    seg.Start,
			Duration: seg.Duration,
			Text:     text,
		})
	}
	return segments
}

// JoinSegmentText concatenates segment text with single spaces, producing the
// full transcript text for a segment list.
func JoinSegmentText(segments []domain.TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, " ")
}
