// Package mirror fetches native caption tracks for content that is also
// published on a video platform. The caption service is a small companion HTTP
// service keyed by video ID; its response carries timed segments, making this
// the only strategy besides declared VTT that yields a meaningful time axis.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"transcript-fetcher/pkg/content"
	"transcript-fetcher/pkg/domain"
)

// RequestTimeout bounds one caption service call.
const RequestTimeout = 15 * time.Second

var (
	ErrEmptyVideoID  = errors.New("video ID is empty")
	ErrNoCaptions    = errors.New("no caption track for video")
	ErrShortCaptions = errors.New("caption track below minimum length")
)

// captionResponse mirrors the caption service's JSON contract.
type captionResponse struct {
	Success  bool   `json:"success"`
	VideoID  string `json:"videoId"`
	Error    string `json:"error"`
	Language string `json:"language"`
	FullText string `json:"fullText"`
	Segments []struct {
		Start    float64 `json:"start"`
		Duration float64 `json:"duration"`
		Text     string  `json:"text"`
	} `json:"segments"`
}

// Client calls the caption service for a given base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a caption service client. baseURL is the service root,
// e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: RequestTimeout},
	}
}

// NewClientWithHTTP creates a caption service client with a custom http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	c := NewClient(baseURL)
	if httpClient != nil {
		c.http = httpClient
	}
	return c
}

// FetchCaptions retrieves the caption track for a video ID and normalizes it.
// A video with no caption track yields ErrNoCaptions; the platform's own
// transcript is trusted, so successful results carry high confidence.
func (c *Client) FetchCaptions(ctx context.Context, videoID string) (*domain.Transcript, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, ErrEmptyVideoID
	}

	endpoint := fmt.Sprintf("%s/transcript?videoId=%s", c.baseURL, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build caption request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch captions: %w", err)
	}
	defer resp.Body.Close()

	var payload captionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode caption response: %w", err)
	}

	// The service reports caption lookups that found nothing as a structured
	// failure (and a 4xx status); both map to "no caption track".
	if !payload.Success || resp.StatusCode < 200 || resp.StatusCode > 299 {
		if payload.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoCaptions, payload.Error)
		}
		return nil, ErrNoCaptions
	}

	segments := make([]domain.TranscriptSegment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start, duration := seg.Start, seg.Duration
		segments = append(segments, domain.TranscriptSegment{
			Start:    &start,
			Duration: &duration,
			Text:     text,
		})
	}

	fullText := strings.TrimSpace(payload.FullText)
	if fullText == "" {
		fullText = content.JoinSegmentText(segments)
	}
	if len(segments) == 0 {
		segments = nil
	}

	ts := content.BuildTranscript(fullText, segments, payload.Language, domain.StrategyMirrorCaption, domain.ConfidenceHigh)
	if ts == nil {
		return nil, ErrShortCaptions
	}
	return ts, nil
}
