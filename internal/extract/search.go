package extract

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// searchEngineHosts are never returned as people-search results.
var searchEngineHosts = []string{
	"duckduckgo.com",
	"bing.com",
	"microsoft.com",
	"msn.com",
	"google.com",
}

// UnwrapRedirect returns the destination of a search engine click-tracking
// link, or raw unchanged when it is not one. DuckDuckGo carries the target
// in the "uddg" parameter; Bing base64-encodes it in "u" behind an "a1"
// prefix.
func UnwrapRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()

	if target := q.Get("uddg"); target != "" {
		return target
	}

	if strings.HasPrefix(u.Path, "/ck/") {
		if encoded, ok := strings.CutPrefix(q.Get("u"), "a1"); ok {
			if target := decodeBase64URL(encoded); target != "" {
				return target
			}
		}
	}

	return raw
}

func decodeBase64URL(s string) string {
	for _, enc := range []*base64.Encoding{base64.RawURLEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.StdEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			return string(b)
		}
	}
	return ""
}

// LinkedInProfileLinks returns up to limit distinct LinkedIn profile URLs
// linked from a search result page, normalized and in page order.
func LinkedInProfileLinks(body []byte, pageURL string, limit int) []string {
	return collectLinks(body, pageURL, limit, IsLinkedInProfileURL)
}

// ResultLinks returns up to limit distinct outbound result links from a
// search result page, skipping links back to search engines and to the
// page's own host.
func ResultLinks(body []byte, pageURL string, limit int) []string {
	ownHost := ""
	if u, err := url.Parse(pageURL); err == nil {
		ownHost = strings.ToLower(u.Hostname())
	}

	return collectLinks(body, pageURL, limit, func(link string) bool {
		u, err := url.Parse(link)
		if err != nil {
			return false
		}
		host := strings.ToLower(u.Hostname())
		if host == ownHost {
			return false
		}
		for _, engine := range searchEngineHosts {
			if host == engine || strings.HasSuffix(host, "."+engine) {
				return false
			}
		}
		return true
	})
}

func collectLinks(body []byte, pageURL string, limit int, keep func(string) bool) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)

	for _, a := range Anchors(body, pageURL) {
		if limit > 0 && len(links) >= limit {
			break
		}
		link := NormalizeURL(UnwrapRedirect(a.URL))
		if link == "" || seen[link] || !keep(link) {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}

	return links
}
