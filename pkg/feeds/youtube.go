package feeds

import (
	"net/url"
	"regexp"
	"strings"
)

// videoIDRe matches a canonical 11-character video identifier.
var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// embeddedWatchRe finds watch/embed/short URLs inside free text (episode
// descriptions frequently embed a "watch on YouTube" link).
var embeddedWatchRe = regexp.MustCompile(`(?:youtube\.com/(?:watch\?[^"'\s]*v=|embed/|shorts/|live/)|youtu\.be/)([A-Za-z0-9_-]{11})`)

// ExtractVideoID pulls a video mirror identifier out of a URL or a blob of
// text containing one. Supported forms: youtube.com/watch?v=ID, youtu.be/ID,
// youtube.com/embed/ID, youtube.com/shorts/ID, youtube.com/live/ID.
// Returns "" when no identifier is present.
func ExtractVideoID(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	// Fast path: the text is itself a URL.
	if u, err := url.Parse(text); err == nil && u.Host != "" {
		if id := videoIDFromURL(u); id != "" {
			return id
		}
	}

	// Slow path: scan for an embedded link.
	if m := embeddedWatchRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func videoIDFromURL(u *url.URL) string {
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if videoIDRe.MatchString(id) {
			return id
		}

	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); videoIDRe.MatchString(id) {
			return id
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				if videoIDRe.MatchString(id) {
					return id
				}
			}
		}
	}
	return ""
}
