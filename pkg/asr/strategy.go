package asr

import (
	"context"
	"errors"
	"strings"

	"transcript-fetcher/pkg/content"
	"transcript-fetcher/pkg/domain"
)

var ErrTranscriptTooShort = errors.New("transcription below minimum length")

// Transcriber adapts the API client to the acquisition strategy contract,
// reconstructing canonical transcript segments from the service's timed spans.
type Transcriber struct {
	client *Client
}

// NewTranscriber wraps an API client as an acquisition strategy.
func NewTranscriber(client *Client) *Transcriber {
	return &Transcriber{client: client}
}

// Transcribe runs the speech-to-text fallback for one audio enclosure.
// ASR output lacks an external quality signal, so results carry medium
// confidence.
func (t *Transcriber) Transcribe(ctx context.Context, audioURL string, expectedDurationSecs float64) (*domain.Transcript, error) {
	result, err := t.client.Transcribe(ctx, audioURL, expectedDurationSecs)
	if err != nil {
		return nil, err
	}

	segments := make([]domain.TranscriptSegment, 0, len(result.Segments))
	for _, span := range result.Segments {
		text := strings.TrimSpace(span.Text)
		if text == "" {
			continue
		}
		start := span.Start
		duration := span.End - span.Start
		if duration < 0 {
			duration = 0
		}
		segments = append(segments, domain.TranscriptSegment{
			Start:    &start,
			Duration: &duration,
			Text:     text,
		})
	}

	if len(segments) == 0 {
		segments = nil
	}

	ts := content.BuildTranscript(result.Text, segments, result.Language, domain.StrategySpeechToText, domain.ConfidenceMedium)
	if ts == nil {
		return nil, ErrTranscriptTooShort
	}
	return ts, nil
}
