package extract

import (
	"regexp"
	"strings"
)

// linkedInPatterns are tried in order; a full URL wins over a bare fragment.
var linkedInPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://(?:[a-z]{2,3}\.)?linkedin\.com/in/[a-z0-9_%\-]+/?`),
	regexp.MustCompile(`(?i)(?:^|[^a-z0-9./])(?:[a-z]{2,3}\.)?linkedin\.com/in/([a-z0-9_%\-]+)`),
}

// emailPatterns are tried in order: explicit mailto links, plain addresses,
// then "name [at] domain [dot] tld" obfuscations.
var emailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)mailto:([a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,})`),
	regexp.MustCompile(`(?i)([a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,})`),
	regexp.MustCompile(`(?i)([a-z0-9._%+\-]+)\s*[\[(]\s*at\s*[\])]\s*([a-z0-9\-]+(?:\s*[\[(]\s*dot\s*[\])]\s*[a-z0-9\-]+)+)`),
}

var obfuscatedDot = regexp.MustCompile(`(?i)\s*[\[(]\s*dot\s*[\])]\s*`)

// ignoredEmailSuffixes are addresses that never belong to a person.
var ignoredEmailSuffixes = []string{
	"noreply.github.com",
	"@example.com",
	".png",
	".jpg",
	".gif",
	".svg",
}

// FindLinkedInURL returns the first LinkedIn profile URL found in text, or
// "". A bare "linkedin.com/in/<slug>" fragment is expanded to
// https://www.linkedin.com/in/<slug>. The result is normalized.
func FindLinkedInURL(text string) string {
	if m := linkedInPatterns[0].FindString(text); m != "" {
		return NormalizeURL(m)
	}
	if m := linkedInPatterns[1].FindStringSubmatch(text); m != nil {
		return NormalizeURL(LinkedInProfileURL(m[1]))
	}
	return ""
}

// FindEmail returns the first personal email address found in text, or "".
// Addresses are lowercased.
func FindEmail(text string) string {
	for i, pattern := range emailPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			var email string
			if i == len(emailPatterns)-1 {
				email = m[1] + "@" + obfuscatedDot.ReplaceAllString(m[2], ".")
			} else {
				email = m[1]
			}
			email = strings.ToLower(strings.TrimRight(email, "."))
			if isIgnoredEmail(email) {
				continue
			}
			return email
		}
	}
	return ""
}

func isIgnoredEmail(email string) bool {
	for _, suffix := range ignoredEmailSuffixes {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}

// FindURL returns the first absolute http(s) URL embedded in text that
// satisfies keep, with trailing ".,;" punctuation removed. A nil keep
// accepts every URL.
func FindURL(text string, keep func(string) bool) string {
	for _, m := range urlPattern.FindAllString(text, -1) {
		candidate := strings.TrimRight(m, ".,;")
		if !IsAbsoluteURL(candidate) {
			continue
		}
		if keep == nil || keep(candidate) {
			return candidate
		}
	}
	return ""
}

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)
