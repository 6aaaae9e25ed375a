package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/execdiscovery/internal/model"
)

// TitleClassifier matches executive titles in text and maps them to
// seniority tiers.
type TitleClassifier struct {
	tier1 *regexp.Regexp
	tier2 *regexp.Regexp
	tier3 *regexp.Regexp
	all   *regexp.Regexp
}

// NewTitleClassifier compiles the title patterns from the rule tables.
func NewTitleClassifier(rules TitleRules) *TitleClassifier {
	var combined []string
	combined = append(combined, rules.Tier1...)
	combined = append(combined, rules.Tier2...)
	combined = append(combined, rules.Tier3...)
	return &TitleClassifier{
		tier1: compileTitles(rules.Tier1),
		tier2: compileTitles(rules.Tier2),
		tier3: compileTitles(rules.Tier3),
		all:   compileTitles(combined),
	}
}

// compileTitles builds a single case-insensitive alternation, longest
// pattern first so "managing director" wins over "director".
func compileTitles(patterns []string) *regexp.Regexp {
	if len(patterns) == 0 {
		return regexp.MustCompile(`\b$^`) // never matches
	}
	sorted := make([]string, len(patterns))
	copy(sorted, patterns)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, p := range sorted {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Classify maps a free-text title to a seniority tier. Unknown titles fall
// into the lowest band.
func (tc *TitleClassifier) Classify(title string) model.SeniorityTier {
	switch {
	case tc.tier1.MatchString(title):
		return model.TierTopLeadership
	case tc.tier2.MatchString(title):
		return model.TierMidManagement
	default:
		return model.TierOther
	}
}

// FindNearby searches a window of characters around offset for the longest
// title pattern. Returns the matched title text, its tier, and whether
// anything matched.
func (tc *TitleClassifier) FindNearby(text string, offset, window int) (string, model.SeniorityTier, bool) {
	lo := offset - window
	if lo < 0 {
		lo = 0
	}
	hi := offset + window
	if hi > len(text) {
		hi = len(text)
	}

	matches := tc.all.FindAllString(text[lo:hi], -1)
	if len(matches) == 0 {
		return "", model.TierOther, false
	}

	// Prefer the longest (most specific) match in the window.
	best := matches[0]
	for _, m := range matches[1:] {
		if len(m) > len(best) {
			best = m
		}
	}
	return best, tc.Classify(best), true
}
