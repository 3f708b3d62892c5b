package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"transcript-fetcher/pkg/domain"
	"transcript-fetcher/pkg/feeds"
	"transcript-fetcher/pkg/logging"
)

type fakeStore struct {
	mu       sync.Mutex
	existing map[string]bool
	saved    []*domain.TranscriptRecord
	saveErr  error
	listErr  error
}

func (s *fakeStore) SaveTranscriptRecord(_ context.Context, record *domain.TranscriptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, record)
	return nil
}

func (s *fakeStore) GetExistingContentIDs(context.Context) (map[string]bool, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.existing, nil
}

func (s *fakeStore) savedRecord(contentID string) *domain.TranscriptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.saved {
		if r.ContentID == contentID {
			return r
		}
	}
	return nil
}

type fakeAcquirer struct {
	mu      sync.Mutex
	calls   []string
	succeed map[string]bool
}

func (a *fakeAcquirer) Acquire(_ context.Context, req *domain.AcquisitionRequest) (*domain.AcquisitionResult, error) {
	a.mu.Lock()
	a.calls = append(a.calls, req.ContentID)
	a.mu.Unlock()

	if a.succeed[req.ContentID] {
		text := strings.Repeat("transcribed words ", 40)
		return &domain.AcquisitionResult{
			Success: true,
			Transcript: &domain.Transcript{
				FullText:   text,
				Language:   "en",
				Source:     domain.StrategyFeedDeclared,
				WordCount:  80,
				Confidence: domain.ConfidenceHigh,
			},
			Attempts: []domain.AttemptRecord{
				{Strategy: domain.StrategyFeedDeclared, Success: true},
			},
		}, nil
	}

	return &domain.AcquisitionResult{
		Success: false,
		Attempts: []domain.AttemptRecord{
			{Strategy: domain.StrategyFeedDeclared, Success: false, Error: "skipped: no transcript URL"},
			{Strategy: domain.StrategyPageScraped, Success: false, Error: "no transcript found"},
			{Strategy: domain.StrategyMirrorCaption, Success: false, Error: "skipped: no video mirror ID"},
			{Strategy: domain.StrategySpeechToText, Success: false, Error: "skipped: no audio URL"},
		},
	}, nil
}

type fakeFeedSource struct {
	episodes []feeds.Episode
	err      error
}

func (f *fakeFeedSource) EpisodeHints(string) ([]feeds.Episode, error) {
	return f.episodes, f.err
}

func episode(contentID, title string) feeds.Episode {
	return feeds.Episode{
		Title: title,
		Request: domain.AcquisitionRequest{
			ContentID: contentID,
			PageURL:   "https://example.com/" + contentID,
		},
	}
}

func newTestService(store *fakeStore, acquirer *fakeAcquirer, source FeedSource) *Service {
	svc := New(store, acquirer, source, logging.New(io.Discard, "error", "text"))
	svc.SetWorkers(2)
	return svc
}

func TestProcessEpisodesPersistsOutcomes(t *testing.T) {
	store := &fakeStore{}
	acquirer := &fakeAcquirer{succeed: map[string]bool{"ep-1": true}}
	svc := newTestService(store, acquirer, nil)

	stats, err := svc.ProcessEpisodes(context.Background(), []feeds.Episode{
		episode("ep-1", "First Episode"),
		episode("ep-2", "Second Episode"),
	})
	if err != nil {
		t.Fatalf("ProcessEpisodes: %v", err)
	}

	if stats.Acquired != 1 || stats.Unavailable != 1 {
		t.Fatalf("stats = %+v, want 1 acquired and 1 unavailable", stats)
	}

	ready := store.savedRecord("ep-1")
	if ready == nil {
		t.Fatal("no record saved for ep-1")
	}
	if ready.Status != domain.StatusReady {
		t.Errorf("ep-1 status = %q, want %q", ready.Status, domain.StatusReady)
	}
	if ready.Transcript == nil || ready.Transcript.WordCount == 0 {
		t.Error("ep-1 record should carry the acquired transcript")
	}
	if ready.Title != "First Episode" {
		t.Errorf("ep-1 title = %q", ready.Title)
	}

	failed := store.savedRecord("ep-2")
	if failed == nil {
		t.Fatal("no record saved for ep-2")
	}
	if failed.Status != domain.StatusUnavailable {
		t.Errorf("ep-2 status = %q, want %q", failed.Status, domain.StatusUnavailable)
	}
	if failed.Transcript != nil {
		t.Error("ep-2 record should not carry a transcript")
	}
	if len(failed.Attempts) != 4 {
		t.Errorf("ep-2 attempt log has %d entries, want 4", len(failed.Attempts))
	}
}

func TestProcessEpisodesSkipsExisting(t *testing.T) {
	store := &fakeStore{existing: map[string]bool{"ep-1": true}}
	acquirer := &fakeAcquirer{succeed: map[string]bool{"ep-2": true}}
	svc := newTestService(store, acquirer, nil)

	stats, err := svc.ProcessEpisodes(context.Background(), []feeds.Episode{
		episode("ep-1", "Already Stored"),
		episode("ep-2", "New Episode"),
	})
	if err != nil {
		t.Fatalf("ProcessEpisodes: %v", err)
	}

	if stats.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.Skipped)
	}
	for _, id := range acquirer.calls {
		if id == "ep-1" {
			t.Error("acquirer was called for an already-stored item")
		}
	}
}

func TestProcessEpisodesStoreLookupFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{listErr: errors.New("mongo down")}
	acquirer := &fakeAcquirer{succeed: map[string]bool{"ep-1": true}}
	svc := newTestService(store, acquirer, nil)

	stats, err := svc.ProcessEpisodes(context.Background(), []feeds.Episode{
		episode("ep-1", "Episode"),
	})
	if err != nil {
		t.Fatalf("ProcessEpisodes: %v", err)
	}
	if stats.Acquired != 1 {
		t.Errorf("acquired = %d, want 1", stats.Acquired)
	}
}

func TestProcessEpisodesCountsSaveErrors(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("write denied")}
	acquirer := &fakeAcquirer{succeed: map[string]bool{"ep-1": true}}
	svc := newTestService(store, acquirer, nil)

	stats, err := svc.ProcessEpisodes(context.Background(), []feeds.Episode{
		episode("ep-1", "Episode"),
	})
	if err != nil {
		t.Fatalf("ProcessEpisodes: %v", err)
	}
	if stats.SaveErrors != 1 {
		t.Errorf("saveErrors = %d, want 1", stats.SaveErrors)
	}
}

func TestAcquireFromFeedRespectsMax(t *testing.T) {
	store := &fakeStore{}
	acquirer := &fakeAcquirer{succeed: map[string]bool{"ep-1": true, "ep-2": true, "ep-3": true}}
	source := &fakeFeedSource{episodes: []feeds.Episode{
		episode("ep-1", "One"),
		episode("ep-2", "Two"),
		episode("ep-3", "Three"),
	}}
	svc := newTestService(store, acquirer, source)

	stats, err := svc.AcquireFromFeed(context.Background(), "https://example.com/feed.xml", 2)
	if err != nil {
		t.Fatalf("AcquireFromFeed: %v", err)
	}
	if stats.Discovered != 2 {
		t.Errorf("discovered = %d, want 2", stats.Discovered)
	}
	if len(acquirer.calls) != 2 {
		t.Errorf("acquirer called %d times, want 2", len(acquirer.calls))
	}
}

func TestAcquireFromFeedEmptyURL(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeAcquirer{}, &fakeFeedSource{})
	if _, err := svc.AcquireFromFeed(context.Background(), "", 0); !errors.Is(err, ErrEmptyFeedURL) {
		t.Fatalf("err = %v, want ErrEmptyFeedURL", err)
	}
}

func TestProcessEpisodesNilDependencies(t *testing.T) {
	svc := New(nil, nil, &fakeFeedSource{}, logging.New(io.Discard, "error", "text"))
	if _, err := svc.ProcessEpisodes(context.Background(), nil); !errors.Is(err, ErrNilStore) {
		t.Fatalf("err = %v, want ErrNilStore", err)
	}
}
