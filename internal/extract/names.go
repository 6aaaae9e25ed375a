package extract

import (
	"regexp"
	"strings"
)

// ValidationTier records which check a candidate name passed.
type ValidationTier string

const (
	// TierKnownFirstName: the first word is in the curated first-name list.
	TierKnownFirstName ValidationTier = "known_first_name"
	// TierKnownSurname: the second word is in the curated surname list.
	TierKnownSurname ValidationTier = "known_surname"
	// TierStructural: both words only pass the lenient structural check.
	TierStructural ValidationTier = "structural"
)

// Extraction-stage confidence per validation tier. The tiered fallback
// trades precision (reject garbage) against recall (allow legitimate but
// uncommon names).
const (
	confKnownFirstName = 0.80
	confKnownSurname   = 0.65
	confStructural     = 0.50
)

// CandidateName is a two-word span that plausibly represents a human name.
// Ephemeral: produced and consumed within a single extraction pass.
type CandidateName struct {
	Raw        string
	FirstName  string
	LastName   string
	Offset     int
	Tier       ValidationTier
	Confidence float64
}

// wordRe matches a single capitalized alphabetic token, 2-20 characters,
// allowing internal capitals (McDonald) and apostrophes (O'Brien).
var wordRe = regexp.MustCompile(`[A-Z][A-Za-z']{1,19}`)

// NameExtractor scans text for candidate person names using the layered
// allow/deny tables in its RuleSet.
type NameExtractor struct {
	rules      *RuleSet
	titleWords map[string]struct{}
}

// NewNameExtractor builds an extractor over the given rule tables.
func NewNameExtractor(rules *RuleSet) *NameExtractor {
	// Individual words of every title pattern act as span boundaries so
	// that "CEO John Smith" yields "John Smith", never "Ceo John".
	tw := make(map[string]struct{})
	for _, group := range [][]string{rules.Titles.Tier1, rules.Titles.Tier2, rules.Titles.Tier3} {
		for _, pattern := range group {
			for _, w := range strings.Fields(pattern) {
				tw[strings.ToLower(w)] = struct{}{}
			}
		}
	}
	return &NameExtractor{rules: rules, titleWords: tw}
}

// Extract returns a deduplicated list of candidate names found in text.
// Malformed or empty input yields an empty list, never an error.
func (x *NameExtractor) Extract(text string) []CandidateName {
	locs := wordRe.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return nil
	}

	type token struct {
		word       string
		start, end int
	}
	tokens := make([]token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, token{word: text[loc[0]:loc[1]], start: loc[0], end: loc[1]})
	}

	// adjacent reports whether two tokens are separated by whitespace only.
	adjacent := func(a, b token) bool {
		if b.start <= a.end {
			return false
		}
		gap := text[a.end:b.start]
		return strings.TrimSpace(gap) == "" && len(gap) <= 3
	}

	// nameLike reports whether a token could be part of a name span. Title
	// words are stripped: they bound the span instead of extending it.
	nameLike := func(t token) bool {
		if x.isTitleWord(t.word) {
			return false
		}
		return !isAllCaps(t.word)
	}

	seen := make(map[string]struct{})
	var out []CandidateName

	for i := 0; i+1 < len(tokens); i++ {
		w1, w2 := tokens[i], tokens[i+1]
		if !adjacent(w1, w2) || !nameLike(w1) || !nameLike(w2) {
			continue
		}

		// Exactly two words: a capitalized name-like neighbor on either
		// side means the span is longer and the pair is rejected.
		if i > 0 && adjacent(tokens[i-1], w1) && nameLike(tokens[i-1]) {
			continue
		}
		if i+2 < len(tokens) && adjacent(w2, tokens[i+2]) && nameLike(tokens[i+2]) {
			continue
		}

		tier, ok := x.Validate(w1.word, w2.word)
		if !ok {
			continue
		}

		full := w1.word + " " + w2.word
		key := strings.ToLower(full)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, CandidateName{
			Raw:        full,
			FirstName:  w1.word,
			LastName:   w2.word,
			Offset:     w1.start,
			Tier:       tier,
			Confidence: tierConfidence(tier),
		})
	}
	return out
}

// Validate applies the tiered name checks to a two-word pair. It is a pure
// function of its inputs: an accepted pair is always re-accepted.
func (x *NameExtractor) Validate(first, last string) (ValidationTier, bool) {
	if !structuralWord(first) || !structuralWord(last) {
		return "", false
	}
	if x.rules.IsDenied(first) || x.rules.IsDenied(last) {
		return "", false
	}
	if x.isTitleWord(first) || x.isTitleWord(last) {
		return "", false
	}
	if x.rules.IsKnownFirstName(first) {
		return TierKnownFirstName, true
	}
	if x.rules.IsKnownSurname(last) {
		return TierKnownSurname, true
	}
	return TierStructural, true
}

func (x *NameExtractor) isTitleWord(word string) bool {
	_, ok := x.titleWords[strings.ToLower(word)]
	return ok
}

// structuralWord is the lenient fallback check: 2-20 characters, starts
// uppercase, alphabetic, and not an all-caps abbreviation.
func structuralWord(word string) bool {
	if len(word) < 2 || len(word) > 20 {
		return false
	}
	if isAllCaps(word) {
		return false
	}
	return wordRe.MatchString(word) && wordRe.FindString(word) == word
}

// isAllCaps treats fully uppercase multi-letter strings as abbreviations.
func isAllCaps(word string) bool {
	hasLetter := false
	for _, r := range word {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter && len(word) > 1
}

func tierConfidence(tier ValidationTier) float64 {
	switch tier {
	case TierKnownFirstName:
		return confKnownFirstName
	case TierKnownSurname:
		return confKnownSurname
	default:
		return confStructural
	}
}
