package reconcile

import (
	"github.com/nao1215/harvey/internal/extract"
	"github.com/nao1215/harvey/internal/model"
)

// resolvePortfolio picks the portfolio URL. The GitHub blog wins when it is
// an absolute URL; otherwise the free text of the GitHub profile and then
// of every record, in order, is scanned for an embedded non-LinkedIn URL.
func resolvePortfolio(gh *model.GitHubProfile, records []model.CandidateRecord) string {
	texts := make([]string, 0, 2+3*len(records))

	if gh != nil {
		if extract.IsAbsoluteURL(gh.Blog) {
			return gh.Blog
		}
		texts = append(texts, gh.Bio, gh.DisplayName)
	}
	for _, r := range records {
		texts = append(texts, r.AboutText, r.Title, r.FullName)
	}

	for _, text := range texts {
		if u := extract.FindURL(text, notLinkedIn); u != "" {
			return u
		}
	}
	return ""
}

func notLinkedIn(u string) bool {
	return !extract.IsLinkedInURL(u)
}
