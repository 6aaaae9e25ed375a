// Package score assigns final confidence to executives and ranks them for
// output.
package score

import (
	"sort"

	"github.com/sells-group/execdiscovery/internal/model"
)

// Per-contact confidence increments for website-sourced records. Each
// contact type present adds a fixed bonus, capped at 1.0.
const (
	emailBonus    = 0.10
	phoneBonus    = 0.10
	linkedinBonus = 0.05
)

// Scorer finalizes confidence scores and sorts the executive list.
type Scorer struct {
	// MinConfidence is the floor below which executives are dropped from
	// the final output as noise. Filtering happens after scoring.
	MinConfidence float64
}

// NewScorer creates a Scorer with the given confidence floor.
func NewScorer(minConfidence float64) *Scorer {
	return &Scorer{MinConfidence: minConfidence}
}

// ScoreAndRank applies the confidence rules, filters noise, and sorts by
// seniority tier (most senior first) with confidence descending as the
// tie-break.
func (s *Scorer) ScoreAndRank(execs []model.ExecutiveContact) []model.ExecutiveContact {
	scored := make([]model.ExecutiveContact, 0, len(execs))
	for _, e := range execs {
		e.ConfidenceScore = Confidence(e)
		scored = append(scored, e)
	}

	filtered := scored[:0]
	for _, e := range scored {
		if e.ConfidenceScore >= s.MinConfidence {
			filtered = append(filtered, e)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].SeniorityTier != filtered[j].SeniorityTier {
			return filtered[i].SeniorityTier < filtered[j].SeniorityTier
		}
		return filtered[i].ConfidenceScore > filtered[j].ConfidenceScore
	})
	return filtered
}

// Confidence computes the final score for one executive. Registry-sourced
// records are pinned at 1.0, unaffected by downstream enrichment. Website
// records earn a completeness bonus on top of their extraction confidence;
// adding a contact never decreases the score.
func Confidence(e model.ExecutiveContact) float64 {
	if e.IsRegistrySourced() {
		return 1.0
	}

	conf := e.ConfidenceScore
	if e.Email != "" {
		conf += emailBonus
	}
	if e.Phone != "" {
		conf += phoneBonus
	}
	if e.LinkedInURL != "" {
		conf += linkedinBonus
	}
	if conf > 1.0 {
		conf = 1.0
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}
