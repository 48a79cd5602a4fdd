package extract

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is an anchor found on a page.
type Link struct {
	// URL is the href resolved against the page URL.
	URL string

	// Text is the anchor's visible text with whitespace collapsed.
	Text string
}

// skippedTextElements never contribute visible text.
var skippedTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Anchors returns every <a href> on the page in document order, resolved
// against pageURL. Script, mail and fragment-only links are dropped.
func Anchors(body []byte, pageURL string) []Link {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		base = &url.URL{}
	}

	links := make([]Link, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if resolved := resolveURL(base, getAttr(n, "href")); resolved != "" {
				links = append(links, Link{URL: resolved, Text: collapseSpace(nodeText(n))})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// PageText returns the visible text of a page together with every href and
// meta content value, so that contact links hidden in attributes are part
// of the searchable surface.
func PageText(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedTextElements[n.Data] {
				return
			}
			if href := getAttr(n, "href"); href != "" {
				sb.WriteString(href)
				sb.WriteString(" ")
			}
			if n.Data == "meta" {
				if content := getAttr(n, "content"); content != "" {
					sb.WriteString(content)
					sb.WriteString(" ")
				}
			}
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseSpace(sb.String())
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// nodeText concatenates all text below n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// resolveURL resolves href against base and returns "" for links that
// cannot lead to a page.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
