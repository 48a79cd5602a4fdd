package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/harvey/internal/model"
)

// strategy recovers one field from a parsed page. It returns "" when it
// finds nothing.
type strategy func(doc *goquery.Document) string

// Strategies per field, in order of preference. Structural selectors come
// first, then OpenGraph metadata, then the <title> tag.
var (
	nameStrategies = []strategy{
		selectorText("div.pv-text-details__left-panel h1"),
		selectorText("div.top-card-layout__entity-info h1"),
		selectorText("div.pv-top-card h1"),
		selectorText("section.top-card-layout h1"),
		selectorText("h1.top-card-layout__title"),
		titlePart(metaContent("og:title"), 0),
		titlePart(pageTitle, 0),
	}

	titleStrategies = []strategy{
		selectorText("div.pv-text-details__left-panel div.text-body-medium"),
		selectorText("div.text-body-medium"),
		selectorText("div.pv-top-card--list-bullet"),
		selectorText("h2.top-card-layout__headline"),
		selectorText("section.top-card-layout h2"),
		titlePart(metaContent("og:title"), 1),
		titlePart(pageTitle, 1),
	}

	jobTitleStrategies = []strategy{
		selectorText("section#experience-section h3"),
		selectorText("section[data-section='experience'] h3"),
		selectorText("section.experience li h3"),
		selectorText("li.experience-item h3"),
	}

	aboutStrategies = []strategy{
		selectorText("section.summary p"),
		selectorText("section[data-section='summary'] p"),
		selectorText("div.core-section-container__content p"),
		metaContent("og:description"),
		metaContent("description"),
	}
)

// gatedMarkers identify placeholder text LinkedIn shows instead of a
// member's data. A candidate value containing any of them is discarded.
var gatedMarkers = []string{
	"linkedin",
	"sign in",
	"sign up",
	"log in",
	"join now",
	"authwall",
}

// ExtractLinkedIn recovers profile fields from a LinkedIn profile page.
// When neither a name nor a headline can be recovered the record carries
// ErrorLoginRequired, which is the usual outcome for pages behind the
// login wall.
func ExtractLinkedIn(profileURL string, body []byte) model.CandidateRecord {
	record := model.CandidateRecord{
		Source: model.SourceLinkedInScrape,
		Origin: model.OriginLinkedIn,
		URL:    profileURL,
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		record.Error = model.ErrorParseFailure
		return record
	}

	record.FullName = firstOf(doc, nameStrategies, isGated)
	record.Title = firstOf(doc, titleStrategies, isGated)
	record.JobTitle = firstOf(doc, jobTitleStrategies, isBoilerplate)
	record.AboutText = firstOf(doc, aboutStrategies, isBoilerplate)

	if record.FullName == "" && record.Title == "" {
		record.Error = model.ErrorLoginRequired
	}
	return record
}

// firstOf runs strategies in order and returns the first value that reject
// does not discard.
func firstOf(doc *goquery.Document, strategies []strategy, reject func(string) bool) string {
	for _, s := range strategies {
		if v := s(doc); v != "" && !reject(v) {
			return v
		}
	}
	return ""
}

// isGated reports whether a name or headline candidate is placeholder text.
func isGated(v string) bool {
	lower := strings.ToLower(v)
	for _, marker := range gatedMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// isBoilerplate is the looser check for free text, which may legitimately
// mention LinkedIn.
func isBoilerplate(v string) bool {
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "linkedin") {
		return true
	}
	for _, marker := range gatedMarkers[1:] {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// selectorText returns the text of the first element matching sel.
func selectorText(sel string) strategy {
	return func(doc *goquery.Document) string {
		return collapseSpace(doc.Find(sel).First().Text())
	}
}

// metaContent returns the content of <meta property=name> or <meta name=name>.
func metaContent(name string) strategy {
	return func(doc *goquery.Document) string {
		for _, attr := range []string{"property", "name"} {
			sel := doc.Find("meta[" + attr + "='" + name + "']").First()
			if content, ok := sel.Attr("content"); ok {
				if v := collapseSpace(content); v != "" {
					return v
				}
			}
		}
		return ""
	}
}

// pageTitle returns the text of the <title> tag.
func pageTitle(doc *goquery.Document) string {
	return collapseSpace(doc.Find("title").First().Text())
}

// titlePart splits a "Name - Headline - Company | LinkedIn" style string
// produced by src and returns the part at index.
func titlePart(src strategy, index int) strategy {
	return func(doc *goquery.Document) string {
		parts := splitTitle(src(doc))
		if index >= len(parts) {
			return ""
		}
		return parts[index]
	}
}

// splitTitle drops a trailing "| LinkedIn" section and splits the rest on
// " - " or "|".
func splitTitle(title string) []string {
	if i := strings.LastIndex(title, "|"); i >= 0 && isGated(title[i:]) {
		title = title[:i]
	}
	var raw []string
	if strings.Contains(title, " - ") {
		raw = strings.Split(title, " - ")
	} else {
		raw = strings.Split(title, "|")
	}

	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = collapseSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
