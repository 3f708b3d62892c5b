package content

import (
	"regexp"
	"strings"
)

var (
	// inlineTimestampRe matches timestamp markers publishers embed in
	// transcript prose: [00:01:23], [1:23], (01:23), (1:02:03).
	inlineTimestampRe = regexp.MustCompile(`[\[(]\d{1,2}:\d{2}(?::\d{2})?[\])]`)

	digitsOnlyRe = regexp.MustCompile(`^\d+$`)

	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// uiChromePrefixes are line starts that indicate page chrome rather than
// transcript prose: share widgets, subscription prompts, engagement counters.
var uiChromePrefixes = []string{
	"subscribe",
	"sign up",
	"sign in",
	"log in",
	"share this",
	"share on",
	"leave a comment",
	"comments",
	"like",
	"likes",
	"follow us",
	"listen on",
	"download episode",
	"copy link",
	"facebook",
	"twitter",
	"linkedin",
}

// CleanScrapedText strips scraping artifacts from candidate transcript text:
// inline timestamp markers, UI chrome lines, stray counter lines (pure digits
// or under 3 characters) and runs of blank lines.
func CleanScrapedText(text string) string {
	text = inlineTimestampRe.ReplaceAllString(text, "")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			kept = append(kept, "")
			continue
		}
		if len(line) < 3 {
			continue
		}
		if digitsOnlyRe.MatchString(line) {
			continue
		}
		if isUIChromeLine(line) {
			continue
		}
		kept = append(kept, line)
	}

	cleaned := strings.Join(kept, "\n")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// isUIChromeLine reports whether a short line is page chrome rather than
// transcript prose. Long lines are never chrome: a sentence that merely starts
// with "Like" is kept.
func isUIChromeLine(line string) bool {
	if len(line) > 60 {
		return false
	}
	lower := strings.ToLower(line)
	for _, prefix := range uiChromePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
