// Package scraper implements heuristic transcript extraction from episode and
// article pages. Publishers that embed transcripts in page HTML do so in a
// handful of recurring layouts (labeled headings, disclosure widgets,
// newsletter bodies, dedicated containers); the scraper tries each layout in
// order and accepts the first candidate that survives cleaning at full length.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"transcript-fetcher/pkg/content"
	"transcript-fetcher/pkg/domain"
	"transcript-fetcher/pkg/httpclient"
)

// MaxPageBytes caps the page body size. Larger bodies are rejected outright
// to bound memory and parsing work.
const MaxPageBytes = 10 << 20 // 10 MB

var (
	ErrEmptyPageURL  = errors.New("page URL is empty")
	ErrNoTranscript  = errors.New("no transcript found on page")
	ErrEmptyPageHTML = errors.New("page HTML is empty")
)

// transcriptPhrases are the heading/label texts that indicate a transcript
// section, matched case-insensitively.
var transcriptPhrases = []string{
	"transcript",
	"full text",
	"episode text",
	"read the conversation",
}

// PageScraper fetches episode/article pages and heuristically extracts
// transcripts from their HTML.
type PageScraper struct {
	client *httpclient.HTTPClient
}

// NewPageScraper creates a scraper using browser-like headers. Many publishers
// block non-browser user agents, so the browser client type is not optional here.
func NewPageScraper() *PageScraper {
	return &PageScraper{client: httpclient.NewClient(httpclient.BrowserClient)}
}

// NewPageScraperWithClient creates a scraper using the provided HTTP client.
func NewPageScraperWithClient(client *httpclient.HTTPClient) *PageScraper {
	return &PageScraper{client: client}
}

// Scrape fetches the page and tries each extraction heuristic in order,
// returning the first candidate whose cleaned text meets the minimum-length
// bar. A page with no acceptable candidate returns ErrNoTranscript; heuristics
// never produce a short "low confidence" match.
func (s *PageScraper) Scrape(ctx context.Context, pageURL string) (*domain.Transcript, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, ErrEmptyPageURL
	}

	html, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return s.ExtractFromHTML(html)
}

// ExtractFromHTML runs the extraction heuristics against already-fetched HTML.
// Split out from Scrape so fixtures can be tested without a server.
func (s *PageScraper) ExtractFromHTML(html string) (*domain.Transcript, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyPageHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	// Strip noise before any heuristic runs: scripts, styles and chrome
	// regions contribute nothing but false positives.
	doc.Find("script, style, nav, header, footer, aside, form, iframe").Remove()

	heuristics := []func(*goquery.Document) string{
		fromTranscriptHeading,
		fromDisclosureWidget,
		fromNewsletterBody,
		fromExplicitContainer,
		fromLabeledContainer,
	}

	for _, heuristic := range heuristics {
		candidate := heuristic(doc)
		if candidate == "" {
			continue
		}

		cleaned := content.CleanScrapedText(candidate)
		if len(cleaned) < domain.MinTranscriptLength {
			continue
		}

		// Heuristic extraction can both over-select boilerplate and miss
		// sections, so scraped transcripts are never more than medium
		// confidence.
		ts := content.BuildTranscript(cleaned, nil, "", domain.StrategyPageScraped, domain.ConfidenceMedium)
		if ts != nil {
			return ts, nil
		}
	}

	return nil, ErrNoTranscript
}

// fetchPage fetches the page HTML with the size cap applied.
func (s *PageScraper) fetchPage(ctx context.Context, pageURL string) (string, error) {
	resp, err := s.client.GetContext(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch page: unexpected status code: %d", resp.StatusCode)
	}

	body, err := httpclient.ReadBodyCapped(resp, MaxPageBytes)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}

	return string(body), nil
}

// matchesTranscriptPhrase reports whether text contains any transcript-
// indicating phrase, case-insensitively.
func matchesTranscriptPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range transcriptPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
