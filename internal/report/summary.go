package report

import (
	"time"

	"github.com/nao1215/harvey/internal/model"
)

// NoDataMessage is shown when a report is requested before any
// investigation exists.
const NoDataMessage = "No investigation data available. Please research someone first."

// Confidence levels.
const (
	ConfidenceHigh = "High"
	ConfidenceLow  = "Low"
)

// Recommendations.
const (
	RecommendFurther = "Further investigation recommended"
	RecommendLimited = "Limited public data available"
)

// Summary is the headline of a report.
type Summary struct {
	Target      string    `json:"target"`
	GeneratedAt time.Time `json:"generated_at"`

	// Status is "Complete", "Timed out (partial results)" or
	// "Completed with errors".
	Status string `json:"status"`

	// TotalSources counts LinkedIn candidates, the GitHub profile and the
	// portfolio link.
	TotalSources int `json:"total_sources"`

	Confidence     string `json:"confidence"`
	Recommendation string `json:"recommendation"`

	ValidationStatus model.ValidationStatus `json:"validation_status"`
}

// NewSummary summarizes inv at time now.
func NewSummary(inv *model.Investigation, now time.Time) *Summary {
	snap := snapshotOf(inv)

	s := &Summary{
		Target:           inv.Target,
		GeneratedAt:      now,
		Status:           statusText(inv),
		TotalSources:     snap.SourceCount(),
		Confidence:       ConfidenceLow,
		Recommendation:   RecommendLimited,
		ValidationStatus: snap.ValidationStatus,
	}
	if snap.HasLinkedIn() || snap.GitHubProfile != nil {
		s.Confidence = ConfidenceHigh
		s.Recommendation = RecommendFurther
	}
	return s
}

func statusText(inv *model.Investigation) string {
	switch {
	case inv.TimedOut:
		return "Timed out (partial results)"
	case len(inv.Errors) > 0:
		return "Completed with errors"
	default:
		return "Complete"
	}
}

// snapshotOf returns inv's snapshot, or an empty one when the
// investigation never reached reconciliation.
func snapshotOf(inv *model.Investigation) *model.Snapshot {
	if inv.Snapshot != nil {
		return inv.Snapshot
	}
	return model.NewSnapshot(inv.Target)
}
