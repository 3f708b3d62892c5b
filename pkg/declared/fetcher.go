// Package declared implements the feed-declared transcript strategy: fetching
// a transcript from the URL a publisher declared in its feed metadata and
// normalizing whatever format comes back (WebVTT, JSON, HTML, PDF, plain text).
package declared

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"transcript-fetcher/pkg/content"
	"transcript-fetcher/pkg/domain"
	"transcript-fetcher/pkg/httpclient"
)

// FetchTimeout bounds the declared transcript GET. Declared URLs are
// publisher-asserted and usually small documents, so 15s is generous.
const FetchTimeout = 15 * time.Second

// maxTranscriptBytes caps the declared transcript payload size.
const maxTranscriptBytes = 10 << 20 // 10 MB

var (
	ErrEmptyTranscriptURL = errors.New("transcript URL is empty")
	ErrEmptyTranscript    = errors.New("declared transcript resolved to empty text")
	ErrTranscriptTooShort = errors.New("declared transcript below minimum length")
)

// Fetcher retrieves and normalizes feed-declared transcripts.
type Fetcher struct {
	client *httpclient.HTTPClient
}

// NewFetcher creates a declared transcript fetcher using the descriptive
// feed client identity.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: httpclient.NewClientWithTimeout(httpclient.FeedClient, FetchTimeout),
	}
}

// NewFetcherWithClient creates a fetcher using the provided HTTP client.
func NewFetcherWithClient(client *httpclient.HTTPClient) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads the declared transcript URL and normalizes the payload into
// a canonical Transcript. It returns (nil, error) for every failure mode so
// the orchestrator can record the reason in the attempt log; it never panics
// on malformed payloads.
func (f *Fetcher) Fetch(ctx context.Context, transcriptURL string) (*domain.Transcript, error) {
	transcriptURL = strings.TrimSpace(transcriptURL)
	if transcriptURL == "" {
		return nil, ErrEmptyTranscriptURL
	}

	resp, err := f.client.GetContext(ctx, transcriptURL)
	if err != nil {
		return nil, fmt.Errorf("fetch declared transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch declared transcript: unexpected status code: %d", resp.StatusCode)
	}

	body, err := httpclient.ReadBodyCapped(resp, maxTranscriptBytes)
	if err != nil {
		return nil, fmt.Errorf("read declared transcript: %w", err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	fullText, segments, err := normalizePayload(body, contentType, transcriptURL)
	if err != nil {
		return nil, err
	}

	fullText = strings.TrimSpace(fullText)
	if fullText == "" {
		return nil, ErrEmptyTranscript
	}

	ts := content.BuildTranscript(fullText, segments, "", domain.StrategyFeedDeclared, domain.ConfidenceHigh)
	if ts == nil {
		return nil, ErrTranscriptTooShort
	}
	return ts, nil
}

// normalizePayload selects a parser from the response Content-Type and the
// body shape. The body signature wins over the header when they disagree,
// since publishers routinely serve VTT as text/plain.
func normalizePayload(body []byte, contentType, transcriptURL string) (string, []domain.TranscriptSegment, error) {
	text := string(body)

	switch {
	case content.LooksLikeWebVTT(text) || strings.Contains(contentType, "text/vtt"):
		segments := content.ParseWebVTT(text)
		return content.JoinSegmentText(segments), segments, nil

	case strings.Contains(contentType, "application/json"):
		segments := content.TranscriptFromJSON(body)
		return content.JoinSegmentText(segments), segments, nil

	case strings.Contains(contentType, "application/pdf") || hasExtension(transcriptURL, ".pdf"):
		extracted, err := content.ExtractTextFromPDFBytes(body)
		if err != nil {
			return "", nil, fmt.Errorf("extract pdf transcript: %w", err)
		}
		return extracted, nil, nil

	case strings.Contains(contentType, "text/html"):
		return content.HTMLToText(text), nil, nil

	default:
		// Plain text or unknown: treat verbatim.
		return text, nil, nil
	}
}

func hasExtension(rawURL, ext string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(rawURL), ext)
	}
	return strings.EqualFold(path.Ext(u.Path), ext)
}
