// Package acquire implements the transcript acquisition orchestrator: a
// deterministic fallback chain that tries progressively more expensive
// strategies until one yields a transcript, and records every attempt.
//
// Strategy order is fixed by cost and trust: a feed-declared URL is one cheap
// GET and publisher-asserted; page scraping adds parsing; mirror captions add
// a platform API call; speech-to-text adds an audio download and a billed
// transcription. Earlier strategies are also higher confidence, so there is
// nothing to gain from racing them.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"transcript-fetcher/pkg/asr"
	"transcript-fetcher/pkg/declared"
	"transcript-fetcher/pkg/domain"
	"transcript-fetcher/pkg/logging"
	"transcript-fetcher/pkg/mirror"
	"transcript-fetcher/pkg/scraper"
)

// Skip reasons recorded when a strategy's required hint is absent. These are
// not errors: an absent hint means the strategy was never applicable.
const (
	skipNoTranscriptURL = "skipped: no transcript URL"
	skipNoPageURL       = "skipped: no page URL"
	skipNoVideoID       = "skipped: no video ID"
	skipNoAudioURL      = "skipped: no audio URL"
	skipInvalidAudioURL = "skipped: audio URL failed validity check"
)

// ErrNilRequest is the one fatal condition Acquire refuses to absorb: a nil
// request indicates a caller bug, not an operational failure.
var ErrNilRequest = errors.New("acquisition request is nil")

// DeclaredFetcher fetches a feed-declared transcript.
type DeclaredFetcher interface {
	Fetch(ctx context.Context, transcriptURL string) (*domain.Transcript, error)
}

// PageScraper heuristically extracts a transcript from an episode page.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string) (*domain.Transcript, error)
}

// CaptionFetcher fetches the caption track of a video mirror.
type CaptionFetcher interface {
	FetchCaptions(ctx context.Context, videoID string) (*domain.Transcript, error)
}

// AudioTranscriber transcribes remote audio via an ASR backend.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, audioURL string, expectedDurationSecs float64) (*domain.Transcript, error)
}

// Orchestrator runs the acquisition fallback chain. All strategy clients are
// constructed once and injected, so tests can substitute httptest-backed
// fakes without touching package state.
type Orchestrator struct {
	declared    DeclaredFetcher
	scraper     PageScraper
	mirror      CaptionFetcher
	transcriber AudioTranscriber
	logger      *slog.Logger
}

// Config wires the orchestrator's strategy dependencies. Nil strategies are
// permitted: a nil strategy behaves as if its hint were absent, which lets
// deployments without an ASR key or caption service still run the cheap
// strategies.
type Config struct {
	Declared    DeclaredFetcher
	Scraper     PageScraper
	Mirror      CaptionFetcher
	Transcriber AudioTranscriber
	Logger      *slog.Logger
}

// New creates an orchestrator from explicit dependencies.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		declared:    cfg.Declared,
		scraper:     cfg.Scraper,
		mirror:      cfg.Mirror,
		transcriber: cfg.Transcriber,
		logger:      logger,
	}
}

// NewDefault creates an orchestrator with production strategy clients.
// mirrorBaseURL and asrAPIKey may be empty, disabling those strategies.
func NewDefault(mirrorBaseURL, asrAPIKey string, logger *slog.Logger) *Orchestrator {
	cfg := Config{
		Declared: declared.NewFetcher(),
		Scraper:  scraper.NewPageScraper(),
		Logger:   logger,
	}
	if mirrorBaseURL != "" {
		cfg.Mirror = mirror.NewClient(mirrorBaseURL)
	}
	if asrAPIKey != "" {
		cfg.Transcriber = asr.NewTranscriber(asr.NewClient(asrAPIKey))
	}
	return New(cfg)
}

// Acquire runs the fallback chain for one content item. It never returns an
// error for expected conditions: missing hints, fetch failures and malformed
// payloads all become attempt records, and exhausting every strategy is a
// normal terminal state (Success=false). Only a nil request propagates, since
// that is a bug in the caller.
func (o *Orchestrator) Acquire(ctx context.Context, req *domain.AcquisitionRequest) (*domain.AcquisitionResult, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	started := time.Now()
	result := &domain.AcquisitionResult{}

	for _, step := range o.strategyChain(req) {
		transcript := o.runStrategy(ctx, req.ContentID, result, step)
		if transcript != nil {
			result.Success = true
			result.Transcript = transcript
			break
		}
	}

	o.logOutcome(req.ContentID, result, time.Since(started))
	return result, nil
}

// strategyStep is one entry in the fixed chain: a tag, a guard explaining why
// the step would be skipped, and the strategy call itself.
type strategyStep struct {
	tag        domain.StrategyTag
	skipReason string
	run        func(ctx context.Context) (*domain.Transcript, error)
}

// strategyChain assembles the fixed-order chain for one request. Each entry's
// skipReason is non-empty exactly when its hint is absent or invalid.
func (o *Orchestrator) strategyChain(req *domain.AcquisitionRequest) []strategyStep {
	steps := make([]strategyStep, 0, 4)

	steps = append(steps, strategyStep{
		tag:        domain.StrategyFeedDeclared,
		skipReason: reasonUnless(req.TranscriptURL != "" && o.declared != nil, skipNoTranscriptURL),
		run: func(ctx context.Context) (*domain.Transcript, error) {
			return o.declared.Fetch(ctx, req.TranscriptURL)
		},
	})

	steps = append(steps, strategyStep{
		tag:        domain.StrategyPageScraped,
		skipReason: reasonUnless(req.PageURL != "" && o.scraper != nil, skipNoPageURL),
		run: func(ctx context.Context) (*domain.Transcript, error) {
			return o.scraper.Scrape(ctx, req.PageURL)
		},
	})

	steps = append(steps, strategyStep{
		tag:        domain.StrategyMirrorCaption,
		skipReason: reasonUnless(req.VideoID != "" && o.mirror != nil, skipNoVideoID),
		run: func(ctx context.Context) (*domain.Transcript, error) {
			return o.mirror.FetchCaptions(ctx, req.VideoID)
		},
	})

	audioSkip := ""
	switch {
	case req.AudioURL == "" || o.transcriber == nil:
		audioSkip = skipNoAudioURL
	case !asr.IsValidAudioURL(req.AudioURL, req.AudioDurationSecs):
		// Rejecting here means no download and no ASR billing is ever
		// attempted for an implausible audio URL.
		audioSkip = skipInvalidAudioURL
	}
	steps = append(steps, strategyStep{
		tag:        domain.StrategySpeechToText,
		skipReason: audioSkip,
		run: func(ctx context.Context) (*domain.Transcript, error) {
			return o.transcriber.Transcribe(ctx, req.AudioURL, req.AudioDurationSecs)
		},
	})

	return steps
}

// runStrategy executes (or skips) one step, appends its attempt record, and
// returns the transcript on success.
func (o *Orchestrator) runStrategy(ctx context.Context, contentID string, result *domain.AcquisitionResult, step strategyStep) *domain.Transcript {
	if step.skipReason != "" {
		result.Attempts = append(result.Attempts, domain.AttemptRecord{
			Strategy: step.tag,
			Success:  false,
			Error:    step.skipReason,
		})
		logging.Attempt(o.logger, contentID, string(step.tag), false, step.skipReason, 0)
		return nil
	}

	started := time.Now()
	transcript, err := step.run(ctx)
	elapsed := time.Since(started)

	if err != nil || transcript == nil {
		errMsg := "strategy returned no transcript"
		if err != nil {
			errMsg = err.Error()
		}
		result.Attempts = append(result.Attempts, domain.AttemptRecord{
			Strategy: step.tag,
			Success:  false,
			Error:    errMsg,
		})
		logging.Attempt(o.logger, contentID, string(step.tag), false, errMsg, elapsed)
		return nil
	}

	result.Attempts = append(result.Attempts, domain.AttemptRecord{
		Strategy: step.tag,
		Success:  true,
	})
	logging.Attempt(o.logger, contentID, string(step.tag), true, "", elapsed)
	return transcript
}

func (o *Orchestrator) logOutcome(contentID string, result *domain.AcquisitionResult, elapsed time.Duration) {
	strategy := ""
	wordCount := 0
	if result.Transcript != nil {
		strategy = string(result.Transcript.Source)
		wordCount = result.Transcript.WordCount
	}
	logging.Outcome(o.logger, contentID, result.Success, strategy, wordCount, len(result.Attempts), elapsed)
}

// reasonUnless returns "" when ok, otherwise the skip reason.
func reasonUnless(ok bool, reason string) string {
	if ok {
		return ""
	}
	return reason
}

// Describe returns a short human-readable summary of a result, used by the
// CLI entrypoints.
func Describe(result *domain.AcquisitionResult) string {
	if result == nil {
		return "no result"
	}
	if result.Success && result.Transcript != nil {
		return fmt.Sprintf("acquired via %s (%d words, confidence %s, %d attempts)",
			result.Transcript.Source, result.Transcript.WordCount, result.Transcript.Confidence, len(result.Attempts))
	}
	return fmt.Sprintf("unavailable after %d attempts", len(result.Attempts))
}
