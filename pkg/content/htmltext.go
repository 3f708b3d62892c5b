package content

import (
	"regexp"
	"strings"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	blockBreakRe  = regexp.MustCompile(`(?i)<(?:br\s*/?|/p|/div|/h[1-6]|/li)>`)
	anyTagRe      = regexp.MustCompile(`<[^>]+>`)
	multiNewline  = regexp.MustCompile(`\n{3,}`)
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
)

// htmlEntities maps the entities that actually show up in transcript pages.
// Full entity tables are overkill for extracted prose.
var htmlEntities = map[string]string{
	"&nbsp;":   " ",
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   "\"",
	"&#39;":    "'",
	"&#8217;":  "'",
	"&#8216;":  "'",
	"&#8220;":  "\"",
	"&#8221;":  "\"",
	"&#8211;":  "-",
	"&#8212;":  "-",
	"&hellip;": "...",
}

// HTMLToText converts an HTML transcript payload into plain text: script and
// style blocks are removed, block-level tag boundaries become newlines, all
// remaining tags are stripped, common entities are decoded and whitespace is
// collapsed.
func HTMLToText(html string) string {
	text := scriptStyleRe.ReplaceAllString(html, "")
	text = blockBreakRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, "")

	for entity, replacement := range htmlEntities {
		text = strings.ReplaceAll(text, entity, replacement)
	}

	text = spaceRunRe.ReplaceAllString(text, " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
