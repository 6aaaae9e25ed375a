package extract

import (
	"strings"

	"github.com/sells-group/execdiscovery/internal/model"
)

// Contact quality weights per type. Phone and email dominate; LinkedIn is a
// weaker ownership signal.
const (
	qualityWeightPhone    = 0.4
	qualityWeightEmail    = 0.4
	qualityWeightLinkedIn = 0.2
)

// titleSearchWindow bounds how far from a name occurrence a title may sit
// and still describe that person.
const titleSearchWindow = 80

// WebsiteExecutive is a person assembled from website text: a validated
// candidate name plus the contacts attributed to it by proximity.
type WebsiteExecutive struct {
	Candidate CandidateName
	Title     string
	Tier      model.SeniorityTier

	Email    *ContactItem
	Phone    *ContactItem
	LinkedIn *ContactItem

	ContactQualityScore    float64
	CompletenessPercentage int
	Confidence             float64
}

// Attributor associates contact items with candidate names based on textual
// closeness. Window is the proximity bound in characters; a contact within
// Window of any occurrence of a person's name or title is attributed to
// that person. One contact may attach to several people when windows
// overlap; that is accepted heuristic behavior, not deduplicated away.
type Attributor struct {
	Window int
	titles *TitleClassifier
}

// NewAttributor builds an Attributor with the given proximity window.
func NewAttributor(window int, titles *TitleClassifier) *Attributor {
	if window <= 0 {
		window = 250
	}
	return &Attributor{Window: window, titles: titles}
}

// Attribute builds per-person contact bundles from the candidate names and
// contact items extracted from the same source text.
func (a *Attributor) Attribute(text string, names []CandidateName, contacts []ContactItem) []WebsiteExecutive {
	lowerText := strings.ToLower(text)

	execs := make([]WebsiteExecutive, 0, len(names))
	for _, name := range names {
		exec := WebsiteExecutive{Candidate: name, Tier: model.TierOther}

		anchors := occurrences(lowerText, strings.ToLower(name.Raw))
		if len(anchors) == 0 {
			anchors = []int{name.Offset}
		}

		// Title lookup around the first mention; the title's own
		// occurrences become additional anchors.
		if title, tier, ok := a.titles.FindNearby(text, anchors[0], titleSearchWindow); ok {
			exec.Title = title
			exec.Tier = tier
			anchors = append(anchors, occurrences(lowerText, strings.ToLower(title))...)
		}

		var phones, emails, links []ContactItem
		for _, c := range contacts {
			if !withinWindow(anchors, c.Offset, a.Window) {
				continue
			}
			switch c.Type {
			case ContactPhone:
				phones = append(phones, c)
			case ContactEmail:
				emails = append(emails, c)
			case ContactLinkedIn:
				links = append(links, c)
			}
		}

		exec.Phone = best(phones)
		exec.Email = best(emails)
		exec.LinkedIn = best(links)

		exec.ContactQualityScore = qualityScore(phones, emails, links)
		exec.CompletenessPercentage = completeness(exec)
		exec.Confidence = extractionConfidence(exec)

		execs = append(execs, exec)
	}
	return execs
}

// occurrences returns every index where needle appears in haystack.
func occurrences(haystack, needle string) []int {
	if needle == "" {
		return nil
	}
	var offs []int
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return offs
		}
		offs = append(offs, from+i)
		from += i + len(needle)
	}
}

func withinWindow(anchors []int, offset, window int) bool {
	for _, a := range anchors {
		d := offset - a
		if d < 0 {
			d = -d
		}
		if d <= window {
			return true
		}
	}
	return false
}

// best returns the highest-confidence item, or nil for an empty slice.
func best(items []ContactItem) *ContactItem {
	if len(items) == 0 {
		return nil
	}
	top := items[0]
	for _, it := range items[1:] {
		if it.Confidence > top.Confidence {
			top = it
		}
	}
	return &top
}

// qualityScore is a weighted combination of the average confidence of each
// attributed contact type.
func qualityScore(phones, emails, links []ContactItem) float64 {
	return qualityWeightPhone*avgConfidence(phones) +
		qualityWeightEmail*avgConfidence(emails) +
		qualityWeightLinkedIn*avgConfidence(links)
}

func avgConfidence(items []ContactItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += it.Confidence
	}
	return sum / float64(len(items))
}

// completeness assigns fixed points per contact type present (40/40/20):
// presence matters more than per-item certainty here.
func completeness(e WebsiteExecutive) int {
	pct := 0
	if e.Email != nil {
		pct += 40
	}
	if e.Phone != nil {
		pct += 40
	}
	if e.LinkedIn != nil {
		pct += 20
	}
	return pct
}

// extractionConfidence is the website-stage confidence: the name-validation
// tier confidence plus a small boost when a title was found alongside.
func extractionConfidence(e WebsiteExecutive) float64 {
	conf := e.Candidate.Confidence
	if e.Title != "" {
		conf += 0.1
	}
	return clamp01(conf)
}
