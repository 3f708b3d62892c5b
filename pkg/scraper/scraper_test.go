package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"transcript-fetcher/pkg/domain"
)

const filler = "Welcome back to the show, today we are talking about distributed systems and why they fail in interesting ways. "

// longBlock returns prose long enough to clear the minimum-length bar.
func longBlock() string {
	return strings.Repeat(filler, 8)
}

func TestExtractFromHTML_HeadingAnchoredSection(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
<h1>Episode 42</h1>
<p>Show notes and sponsor links.</p>
<h2>Transcript</h2>
<p>%s</p>
<p>%s</p>
<h2>Related Episodes</h2>
<p>Episode 41, Episode 40</p>
</body></html>`, longBlock(), longBlock())

	ts, err := NewPageScraper().ExtractFromHTML(html)
	if err != nil {
		t.Fatalf("ExtractFromHTML returned error: %v", err)
	}

	if ts.Source != domain.StrategyPageScraped {
		t.Errorf("source = %q, want %q", ts.Source, domain.StrategyPageScraped)
	}
	if ts.Confidence != domain.ConfidenceMedium {
		t.Errorf("confidence = %q, want %q", ts.Confidence, domain.ConfidenceMedium)
	}
	if strings.Contains(ts.FullText, "Related Episodes") || strings.Contains(ts.FullText, "Episode 41") {
		t.Errorf("content past the next heading leaked into transcript")
	}
	if !strings.Contains(ts.FullText, "distributed systems") {
		t.Errorf("transcript prose missing from result")
	}
}

func TestExtractFromHTML_ShortHeadingSectionRejected(t *testing.T) {
	html := `<html><body>
<h2>Transcript</h2>
<p>Coming soon.</p>
</body></html>`

	_, err := NewPageScraper().ExtractFromHTML(html)
	if err != ErrNoTranscript {
		t.Fatalf("err = %v, want ErrNoTranscript for under-length section", err)
	}
}

func TestExtractFromHTML_DisclosureWidget(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
<details><summary>Read the conversation</summary><p>%s</p></details>
</body></html>`, longBlock())

	ts, err := NewPageScraper().ExtractFromHTML(html)
	if err != nil {
		t.Fatalf("ExtractFromHTML returned error: %v", err)
	}
	if strings.Contains(ts.FullText, "Read the conversation") {
		t.Errorf("disclosure label leaked into transcript text")
	}
}

func TestExtractFromHTML_NewsletterSpeakerParagraphs(t *testing.T) {
	var paragraphs strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&paragraphs, "<p>Alice: %s</p>\n", filler)
	}

	html := fmt.Sprintf(`<html><body><article>
<p>A short intro about this edition.</p>
%s
</article></body></html>`, paragraphs.String())

	ts, err := NewPageScraper().ExtractFromHTML(html)
	if err != nil {
		t.Fatalf("ExtractFromHTML returned error: %v", err)
	}
	if !strings.Contains(ts.FullText, "Alice:") {
		t.Errorf("speaker lines missing from transcript")
	}
}

func TestExtractFromHTML_TooFewSpeakerParagraphs(t *testing.T) {
	var paragraphs strings.Builder
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&paragraphs, "<p>Alice: %s</p>\n", filler)
	}

	html := fmt.Sprintf(`<html><body><article>%s</article></body></html>`, paragraphs.String())

	if _, err := NewPageScraper().ExtractFromHTML(html); err != ErrNoTranscript {
		t.Fatalf("err = %v, want ErrNoTranscript for too few speaker paragraphs", err)
	}
}

func TestExtractFromHTML_ExplicitTranscriptContainer(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
<div class="episode-transcript"><p>%s</p></div>
</body></html>`, longBlock())

	ts, err := NewPageScraper().ExtractFromHTML(html)
	if err != nil {
		t.Fatalf("ExtractFromHTML returned error: %v", err)
	}
	if ts.WordCount == 0 {
		t.Error("expected non-zero word count")
	}
}

func TestExtractFromHTML_AriaLabeledContainer(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
<section aria-label="Episode transcript"><p>%s</p></section>
</body></html>`, longBlock())

	if _, err := NewPageScraper().ExtractFromHTML(html); err != nil {
		t.Fatalf("ExtractFromHTML returned error: %v", err)
	}
}

func TestExtractFromHTML_NoiseRemovedBeforeHeuristics(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
<nav>Transcript archive | Home | About</nav>
<script>window.transcript = "%s";</script>
<h2>Transcript</h2>
<p>%s</p>
</body></html>`, longBlock(), longBlock())

	ts, err := NewPageScraper().ExtractFromHTML(html)
	if err != nil {
		t.Fatalf("ExtractFromHTML returned error: %v", err)
	}
	if strings.Contains(ts.FullText, "window.transcript") {
		t.Error("script content leaked into transcript")
	}
	if strings.Contains(ts.FullText, "Transcript archive") {
		t.Error("nav content leaked into transcript")
	}
}

func TestScrape_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewPageScraper().Scrape(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "unexpected status code") {
		t.Errorf("err = %v, want status code message", err)
	}
}

func TestScrape_OversizedBodyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := []byte(strings.Repeat("x", 1<<20))
		for i := 0; i < 11; i++ {
			w.Write(chunk)
		}
	}))
	defer server.Close()

	_, err := NewPageScraper().Scrape(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for oversized body")
	}
	if !strings.Contains(err.Error(), "byte limit") {
		t.Errorf("err = %v, want body size limit message", err)
	}
}

func TestScrape_EmptyURL(t *testing.T) {
	if _, err := NewPageScraper().Scrape(context.Background(), ""); err != ErrEmptyPageURL {
		t.Fatalf("err = %v, want ErrEmptyPageURL", err)
	}
}
