package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug folds a person's name into a lowercase ASCII slug suitable for URLs
// and file names: "José  Díaz-Ruiz" becomes "jose-diaz-ruiz".
func Slug(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}

	var sb strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && sb.Len() > 0 {
			sb.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimRight(sb.String(), "-")
}

// TitleName collapses whitespace and upper-cases the first letter of every
// word, leaving the rest untouched: "jane  mcDonald" becomes "Jane McDonald".
func TitleName(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(collapseSpace(name))
}

// collapseSpace trims s and replaces every whitespace run with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
