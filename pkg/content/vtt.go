package content

import (
	"regexp"
	"strconv"
	"strings"

	"transcript-fetcher/pkg/domain"
)

var (
	// vttTimingRe matches cue timing lines like
	// "00:00:01.000 --> 00:00:03.000" with optional settings after the range.
	// Hours are optional per the WebVTT spec.
	vttTimingRe = regexp.MustCompile(`^(?:(\d+):)?(\d{2}):(\d{2})[.,](\d{3})\s*-->\s*(?:(\d+):)?(\d{2}):(\d{2})[.,](\d{3})`)

	// vttTagRe matches inline cue markup like <v Speaker>, <c.color>, </v>, <i>.
	vttTagRe = regexp.MustCompile(`<[^>]+>`)

	// vttCueIndexRe matches standalone numeric cue identifiers.
	vttCueIndexRe = regexp.MustCompile(`^\d+$`)

	// vttMetadataRe matches metadata lines like "Kind: captions" and NOTE blocks.
	vttMetadataRe = regexp.MustCompile(`^(Kind|Language|Style|Region|NOTE)\b`)
)

// LooksLikeWebVTT reports whether the payload begins with the WEBVTT signature.
func LooksLikeWebVTT(body string) bool {
	return strings.HasPrefix(strings.TrimSpace(body), "WEBVTT")
}

// ParseWebVTT parses a WebVTT payload into timed transcript segments.
//
// Header, metadata, cue-index and timing lines are skipped; inline cue markup
// (voice spans, color classes) is stripped from the cue text. Consecutive text
// lines within one cue are joined by spaces into a single segment carrying the
// cue's start time and duration.
func ParseWebVTT(raw string) []domain.TranscriptSegment {
	var segments []domain.TranscriptSegment

	var (
		inCue    bool
		start    float64
		duration float64
		lines    []string
	)

	flush := func() {
		if len(lines) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(lines, " "))
		if text != "" {
			s, d := start, duration
			segments = append(segments, domain.TranscriptSegment{
				Start:    &s,
				Duration: &d,
				Text:     text,
			})
		}
		lines = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flush()
			inCue = false

		case strings.HasPrefix(trimmed, "WEBVTT"):
			continue

		case vttMetadataRe.MatchString(trimmed):
			continue

		case vttCueIndexRe.MatchString(trimmed) && !inCue:
			continue

		case vttTimingRe.MatchString(trimmed):
			flush()
			start, duration = parseVTTTiming(trimmed)
			inCue = true

		case inCue:
			cleaned := strings.TrimSpace(vttTagRe.ReplaceAllString(trimmed, ""))
			if cleaned != "" {
				lines = append(lines, cleaned)
			}
		}
	}
	flush()

	return segments
}

// ParseWebVTTText returns the plain transcript text of a WebVTT payload, with
// cue text joined by single spaces.
func ParseWebVTTText(raw string) string {
	segments := ParseWebVTT(raw)
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

// parseVTTTiming extracts the start time and duration (both in seconds) from a
// cue timing line already known to match vttTimingRe.
func parseVTTTiming(line string) (start, duration float64) {
	m := vttTimingRe.FindStringSubmatch(line)
	if m == nil {
		return 0, 0
	}

	start = timestampSeconds(m[1], m[2], m[3], m[4])
	end := timestampSeconds(m[5], m[6], m[7], m[8])
	if end > start {
		duration = end - start
	}
	return start, duration
}

func timestampSeconds(hours, minutes, seconds, millis string) float64 {
	h := 0
	if hours != "" {
		h, _ = strconv.Atoi(hours)
	}
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(millis)

	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000
}
