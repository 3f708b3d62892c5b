package asr

import (
	"net/url"
	"path"
	"strings"
)

// MaxAudioDurationSecs is the internal safety ceiling on audio length. ASR is
// billed per minute, so anything past four hours is rejected before any
// download happens. Callers typically apply their own lower ceilings first.
const MaxAudioDurationSecs = 4 * 60 * 60

// audioExtensions are the audio container extensions the validity pre-check
// recognizes.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".m4b":  true,
	".mp4":  true,
	".wav":  true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".flac": true,
	".aac":  true,
	".webm": true,
}

// IsValidAudioURL is the speech-to-text validity pre-check: the URL must parse
// as an absolute http(s) URL, its path must heuristically indicate an audio
// container, and the declared duration (when known) must be under the safety
// ceiling. A URL failing this check produces a skip in the attempt log, not an
// attempted-and-failed ASR call.
func IsValidAudioURL(raw string, durationSecs float64) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}

	if durationSecs > MaxAudioDurationSecs {
		return false
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if audioExtensions[ext] {
		return true
	}

	// Some hosts serve audio from extensionless "/download" style paths;
	// accept those when the path or query mentions audio delivery.
	lower := strings.ToLower(u.Path + "?" + u.RawQuery)
	return strings.Contains(lower, "audio") || strings.Contains(lower, "enclosure")
}
