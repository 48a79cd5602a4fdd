package extract

import (
	"net/url"
	"strings"
)

// linkedInProfileBase is the canonical prefix for LinkedIn profile URLs.
const linkedInProfileBase = "https://www.linkedin.com/in/"

// linkedInHost is the host every LinkedIn URL is rewritten to.
const linkedInHost = "www.linkedin.com"

// NormalizeURL returns raw in canonical form for equality comparison: the
// query string, fragment and trailing slashes are removed and the scheme
// and host are lowercased. LinkedIn URLs on the apex or a country
// subdomain (uk.linkedin.com) become https://www.linkedin.com. It returns
// "" when raw is not an absolute http(s) URL.
func NormalizeURL(raw string) string {
	u, ok := parseAbsolute(raw)
	if !ok {
		return ""
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if isLinkedInHost(u.Hostname()) {
		u.Scheme = "https"
		u.Host = linkedInHost
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")
	return u.String()
}

// IsAbsoluteURL reports whether raw is a well-formed absolute http(s) URL.
func IsAbsoluteURL(raw string) bool {
	_, ok := parseAbsolute(raw)
	return ok
}

// IsLinkedInURL reports whether raw points at linkedin.com or one of its
// subdomains.
func IsLinkedInURL(raw string) bool {
	u, ok := parseAbsolute(raw)
	if !ok {
		return false
	}
	return isLinkedInHost(u.Hostname())
}

// IsLinkedInProfileURL reports whether raw is a LinkedIn member profile
// URL (https://*.linkedin.com/in/<slug>).
func IsLinkedInProfileURL(raw string) bool {
	u, ok := parseAbsolute(raw)
	if !ok || !isLinkedInHost(u.Hostname()) {
		return false
	}
	slug, found := strings.CutPrefix(u.Path, "/in/")
	if !found {
		return false
	}
	slug = strings.Trim(slug, "/")
	return slug != "" && !strings.Contains(slug, "/")
}

// LinkedInProfileURL builds the canonical profile URL for a member slug.
func LinkedInProfileURL(slug string) string {
	return linkedInProfileBase + strings.Trim(slug, "/")
}

func isLinkedInHost(host string) bool {
	host = strings.ToLower(host)
	return host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com")
}

func parseAbsolute(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Hostname() == "" {
		return nil, false
	}
	return u, true
}
