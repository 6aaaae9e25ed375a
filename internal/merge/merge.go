// Package merge combines registry-sourced and website-sourced executive
// records into one deduplicated list.
package merge

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/execdiscovery/internal/model"
)

// Engine merges the two source lists. Registry records are authoritative:
// they are seeded unconditionally and never removed or merged away into a
// website record.
type Engine struct {
	// SimilarityThreshold is the word-overlap score above which a website
	// name and a registry name are treated as the same person.
	SimilarityThreshold float64
}

// NewEngine creates a merge engine. A non-positive threshold falls back to
// the 0.8 default.
func NewEngine(threshold float64) *Engine {
	if threshold <= 0 {
		threshold = 0.8
	}
	return &Engine{SimilarityThreshold: threshold}
}

// Merge produces the final combined list. Website-discovered contact
// details enrich matching registry records; unmatched website executives
// are kept as separately-tagged secondary entries. The operation is
// idempotent: merging the same inputs twice yields the same output.
func (e *Engine) Merge(registry, website []model.ExecutiveContact) []model.ExecutiveContact {
	// Seed with copies of all registry executives so inputs stay unmodified.
	out := make([]model.ExecutiveContact, 0, len(registry)+len(website))
	for _, r := range registry {
		r.Sources = append([]string(nil), r.Sources...)
		out = append(out, r)
	}

	for _, w := range website {
		matched := false
		for i := range out {
			if !out[i].IsRegistrySourced() {
				continue
			}
			sim := PersonNameSimilarity(w.FullName, out[i].FullName)
			if sim < e.SimilarityThreshold {
				continue
			}
			enrich(&out[i], w)
			matched = true
			zap.L().Debug("merge: website record absorbed into registry record",
				zap.String("website_name", w.FullName),
				zap.String("registry_name", out[i].FullName),
				zap.Float64("similarity", sim),
			)
			break
		}
		if !matched {
			w.Sources = append([]string(nil), w.Sources...)
			w.AddSource(model.SourceWebsiteExtraction)
			out = append(out, w)
		}
	}
	return out
}

// enrich copies website-discovered contact details onto a registry record
// for any field the registry lacks. Registry data never carries contact
// details, so this is the primary enrichment path. Confidence is untouched:
// the registry value stands.
func enrich(target *model.ExecutiveContact, source model.ExecutiveContact) {
	enriched := false
	if target.Email == "" && source.Email != "" {
		target.Email = source.Email
		enriched = true
	}
	if target.Phone == "" && source.Phone != "" {
		target.Phone = source.Phone
		enriched = true
	}
	if target.LinkedInURL == "" && source.LinkedInURL != "" {
		target.LinkedInURL = source.LinkedInURL
		enriched = true
	}
	// A website title is finer-grained than the register's role word.
	if target.Title == "" && source.Title != "" {
		target.Title = source.Title
	}
	if enriched {
		target.AddSource(model.SourceWebsiteEnrichment)
	}
}

// PersonNameSimilarity is word-set overlap between two person names,
// case-insensitive: shared words divided by the smaller set. "Jane Doe" vs
// "Jane Elizabeth Doe" scores 1.0.
func PersonNameSimilarity(a, b string) float64 {
	setA := nameWords(a)
	setB := nameWords(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}
	return float64(inter) / float64(smaller)
}

func nameWords(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,")
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
