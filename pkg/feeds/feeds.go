// Package feeds discovers acquisition hints from podcast/blog RSS feeds:
// declared transcript URLs, episode page URLs, video mirror IDs and audio
// enclosures. It is the bridge between source metadata and the orchestrator's
// AcquisitionRequest.
package feeds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"transcript-fetcher/pkg/domain"
)

// Episode is one feed item translated into acquisition terms.
type Episode struct {
	Title   string
	Request domain.AcquisitionRequest
}

// Parser handles RSS/Atom feed parsing operations
type Parser struct {
	feedParser *gofeed.Parser
}

// NewParser creates a new feed parser
func NewParser() *Parser {
	return &Parser{
		feedParser: gofeed.NewParser(),
	}
}

// EpisodeHints fetches and parses a feed, building one acquisition request
// per item from whatever hints the item carries. Items with no hints at all
// are still returned: the orchestrator records their four skips, which is the
// audit trail operators expect.
func (p *Parser) EpisodeHints(feedURL string) ([]Episode, error) {
	feed, err := p.feedParser.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	episodes := make([]Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		episodes = append(episodes, Episode{
			Title:   item.Title,
			Request: requestFromItem(item),
		})
	}

	return episodes, nil
}

// requestFromItem assembles the acquisition hints one feed item exposes.
func requestFromItem(item *gofeed.Item) domain.AcquisitionRequest {
	req := domain.AcquisitionRequest{
		ContentID: contentID(item),
		PageURL:   strings.TrimSpace(item.Link),
	}

	req.TranscriptURL = declaredTranscriptURL(item)

	if enclosure := audioEnclosure(item); enclosure != nil {
		req.AudioURL = enclosure.URL
	}
	req.AudioDurationSecs = itemDurationSecs(item)

	// A feed item that links to (or embeds) a video platform page doubles as
	// a mirror hint.
	for _, candidate := range []string{item.Link, item.Description, item.Content} {
		if id := ExtractVideoID(candidate); id != "" {
			req.VideoID = id
			break
		}
	}

	return req
}

func contentID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// declaredTranscriptURL reads the podcast namespace transcript tag
// (<podcast:transcript url="..."/>) when the feed carries one.
func declaredTranscriptURL(item *gofeed.Item) string {
	podcast, ok := item.Extensions["podcast"]
	if !ok {
		return ""
	}

	for _, ext := range podcast["transcript"] {
		if url := strings.TrimSpace(ext.Attrs["url"]); url != "" {
			return url
		}
	}
	return ""
}

// audioEnclosure returns the first enclosure with an audio MIME type, or the
// first enclosure at all when none declares one.
func audioEnclosure(item *gofeed.Item) *gofeed.Enclosure {
	for _, enclosure := range item.Enclosures {
		if strings.HasPrefix(strings.ToLower(enclosure.Type), "audio/") {
			return enclosure
		}
	}
	if len(item.Enclosures) > 0 {
		return item.Enclosures[0]
	}
	return nil
}

// itemDurationSecs reads the itunes:duration value, which feeds publish as
// either plain seconds or HH:MM:SS / MM:SS clock strings.
func itemDurationSecs(item *gofeed.Item) float64 {
	if item.ITunesExt == nil {
		return 0
	}
	return ParseDuration(item.ITunesExt.Duration)
}

// ParseDuration converts an itunes-style duration ("3725", "1:02:05", "62:05")
// into seconds. Unparseable input yields 0 (duration unknown).
func ParseDuration(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if !strings.Contains(raw, ":") {
		secs, err := strconv.ParseFloat(raw, 64)
		if err != nil || secs < 0 {
			return 0
		}
		return secs
	}

	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0
	}

	total := 0.0
	for _, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || val < 0 {
			return 0
		}
		total = total*60 + val
	}
	return total
}
