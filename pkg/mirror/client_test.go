package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"transcript-fetcher/pkg/domain"
)

func captionServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

func TestFetchCaptions_Success(t *testing.T) {
	line := "this caption line repeats enough times to pass the length bar "

	server := captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcript" {
			t.Errorf("path = %q, want /transcript", r.URL.Path)
		}
		if got := r.URL.Query().Get("videoId"); got != "abc123" {
			t.Errorf("videoId = %q, want abc123", got)
		}

		segments := make([]map[string]any, 0, 12)
		for i := 0; i < 12; i++ {
			segments = append(segments, map[string]any{
				"start":    float64(i) * 2.5,
				"duration": 2.5,
				"text":     line,
			})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"videoId":  "abc123",
			"language": "en",
			"fullText": strings.Repeat(line, 12),
			"segments": segments,
			"source":   "youtube_auto",
		})
	})
	defer server.Close()

	ts, err := NewClient(server.URL).FetchCaptions(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FetchCaptions returned error: %v", err)
	}

	if ts.Source != domain.StrategyMirrorCaption {
		t.Errorf("source = %q, want %q", ts.Source, domain.StrategyMirrorCaption)
	}
	if ts.Confidence != domain.ConfidenceHigh {
		t.Errorf("confidence = %q, want %q", ts.Confidence, domain.ConfidenceHigh)
	}
	if len(ts.Segments) != 12 {
		t.Fatalf("got %d segments, want 12", len(ts.Segments))
	}
	if ts.Segments[2].Start == nil || *ts.Segments[2].Start != 5.0 {
		t.Errorf("third segment start = %v, want 5.0", ts.Segments[2].Start)
	}
}

func TestFetchCaptions_NoTrack(t *testing.T) {
	server := captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success":   false,
			"videoId":   "abc123",
			"error":     "Subtitles are disabled for this video",
			"errorType": "TranscriptsDisabled",
		})
	})
	defer server.Close()

	_, err := NewClient(server.URL).FetchCaptions(context.Background(), "abc123")
	if err == nil {
		t.Fatal("expected error for disabled captions")
	}
	if !strings.Contains(err.Error(), "no caption track") {
		t.Errorf("err = %v, want no-caption-track error", err)
	}
	if !strings.Contains(err.Error(), "Subtitles are disabled") {
		t.Errorf("err = %v, want underlying service message preserved", err)
	}
}

func TestFetchCaptions_ShortTrack(t *testing.T) {
	server := captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": true, "fullText": "too short", "segments": [{"start":0,"duration":1,"text":"too short"}]}`)
	})
	defer server.Close()

	_, err := NewClient(server.URL).FetchCaptions(context.Background(), "abc123")
	if err != ErrShortCaptions {
		t.Fatalf("err = %v, want ErrShortCaptions", err)
	}
}

func TestFetchCaptions_EmptyVideoID(t *testing.T) {
	if _, err := NewClient("http://example.invalid").FetchCaptions(context.Background(), ""); err != ErrEmptyVideoID {
		t.Fatalf("err = %v, want ErrEmptyVideoID", err)
	}
}
