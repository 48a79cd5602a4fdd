package fetch

import "strings"

// blockPhrases are lowercase fragments that anti-bot challenge pages contain.
var blockPhrases = []string{
	"captcha",
	"are you human",
	"unusual traffic",
	"bot detection",
	"verify you are",
}

// IsBlocked reports whether body looks like an anti-automation challenge.
// Matching is a case-insensitive substring search.
func IsBlocked(body []byte) bool {
	text := strings.ToLower(string(body))
	for _, phrase := range blockPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
