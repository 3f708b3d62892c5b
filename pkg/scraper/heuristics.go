package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"transcript-fetcher/pkg/domain"
)

// speakerLineRe matches dialogue-style paragraph openings: "Name:", "**Name:**".
var speakerLineRe = regexp.MustCompile(`^(?:\*\*)?[A-Z][A-Za-z .'\-]{0,40}(?:\*\*)?:\s`)

// bracketSpeakerRe matches "[Name]" speaker prefixes.
var bracketSpeakerRe = regexp.MustCompile(`^\[[^\]]{1,40}\]`)

// minQualifyingParagraphs is the floor for the newsletter-body heuristic.
// Ordinary prose occasionally contains a "Name: value" line; requiring ten
// keeps the heuristic from matching non-transcript articles.
const minQualifyingParagraphs = 10

// newsletterContainers are the long-form content containers checked by the
// newsletter-body heuristic, most specific first.
var newsletterContainers = []string{
	".available-content",
	".post-content",
	".entry-content",
	".body.markup",
	"article",
	"main",
}

// fromTranscriptHeading finds a heading whose text matches a transcript-
// indicating phrase and collects sibling content until the next heading of
// equal or higher level. If that collection is too short the heading's entire
// parent container is used instead, which covers pages that nest the
// transcript one div deeper than the heading.
func fromTranscriptHeading(doc *goquery.Document) string {
	var result string

	doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if !matchesTranscriptPhrase(heading.Text()) {
			return true
		}

		level := headingLevel(goquery.NodeName(heading))

		var parts []string
		for sib := heading.Next(); sib.Length() > 0; sib = sib.Next() {
			if l := headingLevel(goquery.NodeName(sib)); l > 0 && l <= level {
				break
			}
			if text := strings.TrimSpace(sib.Text()); text != "" {
				parts = append(parts, text)
			}
		}

		collected := strings.Join(parts, "\n\n")
		if len(collected) < domain.MinTranscriptLength {
			// Fall back to the heading's parent container.
			if parent := strings.TrimSpace(heading.Parent().Text()); len(parent) > len(collected) {
				collected = parent
			}
		}

		if collected != "" {
			result = collected
			return false
		}
		return true
	})

	return result
}

// fromDisclosureWidget finds a collapsible element whose visible label matches
// a transcript-indicating phrase and uses its full text content.
func fromDisclosureWidget(doc *goquery.Document) string {
	var result string

	doc.Find("details").EachWithBreak(func(_ int, details *goquery.Selection) bool {
		label := details.Find("summary").First().Text()
		if !matchesTranscriptPhrase(label) {
			return true
		}

		body := details.Clone()
		body.Find("summary").Remove()
		if text := strings.TrimSpace(body.Text()); text != "" {
			result = text
			return false
		}
		return true
	})

	return result
}

// fromNewsletterBody looks inside known long-form content containers for
// dialogue-style paragraphs: either paragraphs following a short transcript-
// labeled paragraph, or paragraphs that open with a speaker prefix. At least
// minQualifyingParagraphs must qualify before the candidate is accepted, to
// avoid false positives on ordinary prose.
func fromNewsletterBody(doc *goquery.Document) string {
	for _, selector := range newsletterContainers {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		if text := collectDialogueParagraphs(container); text != "" {
			return text
		}
	}

	// No recognized container: let readability locate the main content and
	// apply the same paragraph rule to it.
	html, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}
	contentDoc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	return collectDialogueParagraphs(contentDoc.Selection)
}

// collectDialogueParagraphs applies the qualifying-paragraph rule to one
// container and returns the joined qualifying text, or "" when fewer than
// minQualifyingParagraphs qualify.
func collectDialogueParagraphs(container *goquery.Selection) string {
	var (
		qualifying []string
		afterLabel bool
	)

	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			return
		}

		// A short transcript-labeled paragraph switches collection on for
		// everything that follows it.
		if len(text) < 80 && matchesTranscriptPhrase(text) {
			afterLabel = true
			return
		}

		if afterLabel || isSpeakerLine(text) {
			qualifying = append(qualifying, text)
		}
	})

	if len(qualifying) < minQualifyingParagraphs {
		return ""
	}
	return strings.Join(qualifying, "\n\n")
}

// fromExplicitContainer selects elements whose class or id attribute contains
// "transcript" and returns the longest candidate text.
func fromExplicitContainer(doc *goquery.Document) string {
	var best string

	doc.Find(`[class*="transcript"], [id*="transcript"], [class*="Transcript"], [id*="Transcript"]`).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); len(text) > len(best) {
			best = text
		}
	})

	return best
}

// fromLabeledContainer covers ARIA-labeled transcript regions that carry no
// transcript class or id.
func fromLabeledContainer(doc *goquery.Document) string {
	var best string

	doc.Find("[aria-label]").Each(func(_ int, sel *goquery.Selection) {
		label, _ := sel.Attr("aria-label")
		if !matchesTranscriptPhrase(label) {
			return
		}
		if text := strings.TrimSpace(sel.Text()); len(text) > len(best) {
			best = text
		}
	})

	return best
}

func isSpeakerLine(text string) bool {
	return speakerLineRe.MatchString(text) || bracketSpeakerRe.MatchString(text)
}

func headingLevel(nodeName string) int {
	switch nodeName {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	default:
		return 0
	}
}
