// Package service is the invoking layer: it turns discovered episodes into
// acquisition runs, fans the work out across workers, and persists one
// TranscriptRecord per content item, including the attempt audit trail for
// items where every strategy failed.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"transcript-fetcher/pkg/domain"
	"transcript-fetcher/pkg/feeds"
	"transcript-fetcher/pkg/logging"
)

var (
	ErrEmptyFeedURL    = errors.New("feed URL is empty")
	ErrEmptySitemapURL = errors.New("sitemap URL is empty")
	ErrNilStore        = errors.New("record store is nil")
	ErrNilAcquirer     = errors.New("acquirer is nil")
)

// Acquirer runs the strategy chain for one content item.
type Acquirer interface {
	Acquire(ctx context.Context, req *domain.AcquisitionRequest) (*domain.AcquisitionResult, error)
}

// RecordStore persists acquisition outcomes and answers which content items
// are already stored.
type RecordStore interface {
	SaveTranscriptRecord(ctx context.Context, record *domain.TranscriptRecord) error
	GetExistingContentIDs(ctx context.Context) (map[string]bool, error)
}

// FeedSource discovers episodes and their acquisition hints from a feed URL.
type FeedSource interface {
	EpisodeHints(feedURL string) ([]feeds.Episode, error)
}

// Stats summarizes one acquisition run.
type Stats struct {
	Discovered  int
	Skipped     int
	Acquired    int
	Unavailable int
	SaveErrors  int
}

// Service coordinates discovery, acquisition and persistence for batches of
// content items.
type Service struct {
	store    RecordStore
	acquirer Acquirer
	feeds    FeedSource
	logger   *slog.Logger
	workers  int
}

// New creates an acquisition service. A nil feed source defaults to the
// standard RSS parser.
func New(store RecordStore, acquirer Acquirer, feedSource FeedSource, logger *slog.Logger) *Service {
	if feedSource == nil {
		feedSource = feeds.NewParser()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		acquirer: acquirer,
		feeds:    feedSource,
		logger:   logger,
		workers:  8,
	}
}

// SetWorkers sets the number of parallel workers used to process episodes.
// If workers <= 0, it will be coerced to 1.
func (s *Service) SetWorkers(workers int) {
	if workers <= 0 {
		s.workers = 1
		return
	}
	s.workers = workers
}

// AcquireFromFeed discovers episodes from an RSS/Atom feed and acquires a
// transcript for each one not already stored.
//
// max limits the number of episodes processed. If max <= 0 it means no limit.
func (s *Service) AcquireFromFeed(ctx context.Context, feedURL string, max int) (Stats, error) {
	if feedURL == "" {
		return Stats{}, ErrEmptyFeedURL
	}

	episodes, err := s.feeds.EpisodeHints(feedURL)
	if err != nil {
		return Stats{}, fmt.Errorf("discover episodes: %w", err)
	}

	if max > 0 && len(episodes) > max {
		episodes = episodes[:max]
	}

	return s.ProcessEpisodes(ctx, episodes)
}

// AcquireFromSitemap discovers episode pages from a sitemap and acquires a
// transcript for each one not already stored. Sitemap entries carry only a
// page URL, so acquisition for these items relies on the page scraper.
func (s *Service) AcquireFromSitemap(ctx context.Context, sitemapURL string, max int) (Stats, error) {
	if sitemapURL == "" {
		return Stats{}, ErrEmptySitemapURL
	}

	discoverer := feeds.NewSitemapDiscoverer()
	episodes, err := discoverer.PageEpisodes(sitemapURL)
	if err != nil {
		return Stats{}, fmt.Errorf("discover episode pages: %w", err)
	}

	if max > 0 && len(episodes) > max {
		episodes = episodes[:max]
	}

	return s.ProcessEpisodes(ctx, episodes)
}

// ProcessEpisodes acquires transcripts for the given episodes in parallel,
// skipping items whose content ID is already stored. Per-item failures are
// recorded, not fatal: the run continues and the returned stats report them.
func (s *Service) ProcessEpisodes(ctx context.Context, episodes []feeds.Episode) (Stats, error) {
	if s.store == nil {
		return Stats{}, ErrNilStore
	}
	if s.acquirer == nil {
		return Stats{}, ErrNilAcquirer
	}

	stats := Stats{Discovered: len(episodes)}
	if len(episodes) == 0 {
		return stats, nil
	}

	runID := uuid.NewString()
	logger := s.logger.With(slog.String("runId", runID))

	pending, skipped := s.filterExisting(ctx, episodes)
	stats.Skipped = skipped
	logger.Info("acquisition run starting",
		slog.Int("discovered", len(episodes)),
		slog.Int("skipped", skipped),
		slog.Int("pending", len(pending)),
		slog.Int("workers", s.workers))

	if len(pending) == 0 {
		return stats, nil
	}

	workers := s.workers
	if workers <= 0 {
		workers = 1
	}

	type outcome struct {
		status  string
		saveErr error
	}

	jobs := make(chan feeds.Episode)
	outcomes := make(chan outcome, len(pending))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for ep := range jobs {
				status, err := s.processEpisode(ctx, logger, ep)
				outcomes <- outcome{status: status, saveErr: err}
			}
		}()
	}

	var sendErr error
	for _, ep := range pending {
		select {
		case <-ctx.Done():
			sendErr = ctx.Err()
		case jobs <- ep:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		switch o.status {
		case domain.StatusReady:
			stats.Acquired++
		case domain.StatusUnavailable:
			stats.Unavailable++
		}
		if o.saveErr != nil {
			stats.SaveErrors++
		}
	}

	logger.Info("acquisition run finished",
		slog.Int("acquired", stats.Acquired),
		slog.Int("unavailable", stats.Unavailable),
		slog.Int("saveErrors", stats.SaveErrors))

	return stats, sendErr
}

// filterExisting drops episodes whose content ID is already stored. A store
// lookup failure is treated as "nothing stored": re-acquiring an item is an
// upsert, so the worst case is redundant work.
func (s *Service) filterExisting(ctx context.Context, episodes []feeds.Episode) ([]feeds.Episode, int) {
	existing, err := s.store.GetExistingContentIDs(ctx)
	if err != nil || len(existing) == 0 {
		return episodes, 0
	}

	pending := make([]feeds.Episode, 0, len(episodes))
	skipped := 0
	for _, ep := range episodes {
		if ep.Request.ContentID != "" && existing[ep.Request.ContentID] {
			skipped++
			continue
		}
		pending = append(pending, ep)
	}
	return pending, skipped
}

// processEpisode runs the strategy chain for one episode and persists the
// outcome. It returns the stored status and any persistence error.
func (s *Service) processEpisode(ctx context.Context, logger *slog.Logger, ep feeds.Episode) (string, error) {
	req := ep.Request
	result, err := s.acquirer.Acquire(ctx, &req)
	if err != nil {
		logger.Error("acquisition call failed",
			slog.String("contentId", req.ContentID),
			slog.String("error", err.Error()))
		return "", err
	}

	record := &domain.TranscriptRecord{
		ContentID:  req.ContentID,
		Title:      ep.Title,
		PageURL:    req.PageURL,
		Attempts:   result.Attempts,
		AcquiredAt: time.Now(),
	}
	if result.Success {
		record.Status = domain.StatusReady
		record.Transcript = result.Transcript
	} else {
		record.Status = domain.StatusUnavailable
	}

	if err := s.store.SaveTranscriptRecord(ctx, record); err != nil {
		logger.Error("save transcript record failed",
			slog.String("contentId", req.ContentID),
			slog.String("error", err.Error()))
		return record.Status, err
	}

	return record.Status, nil
}
