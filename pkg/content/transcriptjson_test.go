package content

import "testing"

func TestTranscriptFromJSON_SegmentArray(t *testing.T) {
	body := []byte(`[{"start": 0.5, "duration": 2.0, "text": "hello there"}, {"text": "second part"}]`)

	segments := TranscriptFromJSON(body)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Text != "hello there" {
		t.Errorf("first segment = %q, want %q", segments[0].Text, "hello there")
	}
	if segments[0].Start == nil || *segments[0].Start != 0.5 {
		t.Errorf("first segment start = %v, want 0.5", segments[0].Start)
	}
}

func TestTranscriptFromJSON_SegmentsObject(t *testing.T) {
	body := []byte(`{"segments": [{"content": "from the content field"}]}`)

	segments := TranscriptFromJSON(body)
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if segments[0].Text != "from the content field" {
		t.Errorf("segment = %q, want %q", segments[0].Text, "from the content field")
	}
}

func TestTranscriptFromJSON_FlatTranscriptField(t *testing.T) {
	body := []byte(`{"transcript": "First paragraph.\n\nSecond paragraph."}`)

	segments := TranscriptFromJSON(body)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
}

func TestTranscriptFromJSON_UnknownShape(t *testing.T) {
	body := []byte(`{"episodes": [{"title": "nothing transcript-like here"}]}`)

	if segments := TranscriptFromJSON(body); len(segments) != 0 {
		t.Fatalf("got %d segments for unknown shape, want 0", len(segments))
	}
}

func TestTranscriptFromJSON_InvalidJSON(t *testing.T) {
	if segments := TranscriptFromJSON([]byte("not json at all")); len(segments) != 0 {
		t.Fatalf("got %d segments for invalid JSON, want 0", len(segments))
	}
}
