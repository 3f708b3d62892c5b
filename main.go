package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"transcript-fetcher/pkg/acquire"
	"transcript-fetcher/pkg/domain"
	"transcript-fetcher/pkg/logging"
)

// Single-item acquisition tool: feed it whatever hints you have for one
// content item and it runs the full fallback chain, printing the attempt log
// and the transcript summary. Useful for debugging a publisher that the batch
// flow keeps marking unavailable.
func main() {
	var (
		contentID     = flag.String("content-id", "manual-run", "Correlation ID for logs")
		transcriptURL = flag.String("transcript-url", "", "Publisher-declared transcript URL")
		pageURL       = flag.String("page-url", "", "Episode/article page URL")
		videoID       = flag.String("video-id", "", "Video mirror ID with native captions")
		audioURL      = flag.String("audio-url", "", "Audio enclosure URL")
		durationSecs  = flag.Float64("duration", 0, "Declared audio duration in seconds (0 = unknown)")
		mirrorBase    = flag.String("mirror-base", os.Getenv("CAPTION_SERVICE_URL"), "Caption mirror service base URL")
		asrKey        = flag.String("asr-key", os.Getenv("ASR_API_KEY"), "Speech-to-text API key")
		logLevel      = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		showText      = flag.Bool("print-text", false, "Print the full transcript text")
	)
	flag.Parse()

	logger := logging.New(os.Stderr, *logLevel, "text")
	orch := acquire.NewDefault(*mirrorBase, *asrKey, logger)

	req := &domain.AcquisitionRequest{
		ContentID:         *contentID,
		TranscriptURL:     *transcriptURL,
		PageURL:           *pageURL,
		VideoID:           *videoID,
		AudioURL:          *audioURL,
		AudioDurationSecs: *durationSecs,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	result, err := orch.Acquire(ctx, req)
	if err != nil {
		log.Fatalf("Acquisition failed: %v", err)
	}

	fmt.Printf("Result: %s\n\nAttempts:\n", acquire.Describe(result))
	for i, attempt := range result.Attempts {
		status := "ok"
		if !attempt.Success {
			status = attempt.Error
		}
		fmt.Printf("  %d. %-15s %s\n", i+1, attempt.Strategy, status)
	}

	if *showText && result.Transcript != nil {
		fmt.Printf("\n%s\n", result.Transcript.FullText)
	}
}
