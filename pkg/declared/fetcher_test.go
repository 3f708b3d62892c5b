package declared

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"transcript-fetcher/pkg/domain"
)

// longSentence repeated enough times to clear the minimum-length bar.
const longSentence = "This is a reasonably long transcript sentence used for testing purposes. "

func longText() string {
	return strings.Repeat(longSentence, 10)
}

func TestFetch_WebVTT(t *testing.T) {
	var vtt strings.Builder
	vtt.WriteString("WEBVTT\n\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&vtt, "%d\n00:00:%02d.000 --> 00:00:%02d.000\n%s\n\n", i+1, i, i+2, longSentence)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/vtt")
		fmt.Fprint(w, vtt.String())
	}))
	defer server.Close()

	ts, err := NewFetcher().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if ts.Source != domain.StrategyFeedDeclared {
		t.Errorf("source = %q, want %q", ts.Source, domain.StrategyFeedDeclared)
	}
	if ts.Confidence != domain.ConfidenceHigh {
		t.Errorf("confidence = %q, want %q", ts.Confidence, domain.ConfidenceHigh)
	}
	if len(ts.Segments) != 20 {
		t.Errorf("got %d segments, want 20", len(ts.Segments))
	}
	if ts.Segments[0].Start == nil {
		t.Error("expected timed segments from VTT")
	}
}

func TestFetch_JSONSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"segments": [{"start": 0, "duration": 5, "text": %q}]}`, longText())
	}))
	defer server.Close()

	ts, err := NewFetcher().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if ts.WordCount == 0 {
		t.Error("expected non-zero word count")
	}
}

func TestFetch_HTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><script>ignored()</script><p>%s</p></body></html>", longText())
	}))
	defer server.Close()

	ts, err := NewFetcher().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if strings.Contains(ts.FullText, "ignored()") {
		t.Error("script content leaked into transcript")
	}
}

func TestFetch_PlainTextFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		fmt.Fprint(w, longText())
	}))
	defer server.Close()

	ts, err := NewFetcher().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if ts.FullText != strings.TrimSpace(longText()) {
		t.Error("plain text payload should be used verbatim")
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := NewFetcher().Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestFetch_TooShort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "short transcript")
	}))
	defer server.Close()

	_, err := NewFetcher().Fetch(context.Background(), server.URL)
	if err != ErrTranscriptTooShort {
		t.Fatalf("err = %v, want ErrTranscriptTooShort", err)
	}
}

func TestFetch_UnknownJSONShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"nothing": "useful"}`)
	}))
	defer server.Close()

	_, err := NewFetcher().Fetch(context.Background(), server.URL)
	if err != ErrEmptyTranscript {
		t.Fatalf("err = %v, want ErrEmptyTranscript", err)
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	if _, err := NewFetcher().Fetch(context.Background(), "  "); err != ErrEmptyTranscriptURL {
		t.Fatalf("err = %v, want ErrEmptyTranscriptURL", err)
	}
}
