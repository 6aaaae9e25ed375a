// Package reconcile cross-references discovered companies against the
// Companies House register and converts verified officers into executives.
package reconcile

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/execdiscovery/internal/extract"
	"github.com/sells-group/execdiscovery/internal/model"
	"github.com/sells-group/execdiscovery/pkg/companieshouse"
)

// Match score bonuses. Active companies and expected-industry SIC codes are
// stronger candidates than name overlap alone suggests.
const (
	activeStatusBonus = 0.2
	sicPrefixBonus    = 0.1
)

// legalSuffixes lists UK legal-entity suffixes stripped before searching,
// since registry search is sensitive to exact tokens.
var legalSuffixes = []string{
	" LTD", " LTD.", " LIMITED",
	" PLC", " P.L.C.",
	" LLP", " L.L.P.",
	" CIC", " C.I.C.",
	" CO", " CO.", " COMPANY",
	" GROUP", " HOLDINGS",
}

// genericWords are industry-generic tokens dropped from the search query.
var genericWords = map[string]struct{}{
	"SERVICES": {}, "SERVICE": {}, "SOLUTIONS": {}, "THE": {}, "UK": {},
	"PLUMBING": {}, "HEATING": {}, "ELECTRICAL": {}, "BUILDING": {},
	"ROOFING": {}, "CLEANING": {},
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// Result is the reconciler's outcome for one company. An unverified result
// with zero executives is a normal negative outcome, never a pipeline error.
type Result struct {
	Executives []model.ExecutiveContact
	// Officers is the raw register evidence, resigned rows included.
	Officers      []model.OfficerRecord
	Verified      bool
	CompanyNumber string
	MatchedTitle  string
	MatchScore    float64
}

// Reconciler queries the official registry and treats its officer records
// as ground truth.
type Reconciler struct {
	client        companieshouse.Client
	titles        *extract.TitleClassifier
	minMatchScore float64
	sicPrefixes   []string
}

// Option configures the Reconciler.
type Option func(*Reconciler)

// WithExpectedSICPrefixes boosts search candidates whose registry
// classification codes start with any of the given prefixes.
func WithExpectedSICPrefixes(prefixes []string) Option {
	return func(r *Reconciler) {
		r.sicPrefixes = prefixes
	}
}

// New creates a Reconciler. minMatchScore is the similarity floor below
// which no registry match is accepted.
func New(client companieshouse.Client, titles *extract.TitleClassifier, minMatchScore float64, opts ...Option) *Reconciler {
	r := &Reconciler{
		client:        client,
		titles:        titles,
		minMatchScore: minMatchScore,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile searches the register by cleaned company name, selects the best
// active match, and returns its current officers as executives with maximum
// confidence. Government-register provenance is authoritative and is never
// downgraded by absent contact details.
func (r *Reconciler) Reconcile(ctx context.Context, companyName, domain string) (*Result, error) {
	cleaned := CleanCompanyName(companyName)
	if cleaned == "" {
		return &Result{}, nil
	}

	items, err := r.client.SearchCompanies(ctx, cleaned)
	if err != nil {
		return &Result{}, eris.Wrap(err, "reconcile: search")
	}
	if len(items) == 0 {
		zap.L().Debug("reconcile: no search results", zap.String("query", cleaned))
		return &Result{}, nil
	}

	bestItem, bestScore := r.selectBest(companyName, items)
	if bestScore < r.minMatchScore {
		zap.L().Debug("reconcile: best match below threshold",
			zap.String("query", cleaned),
			zap.String("candidate", bestItem.Title),
			zap.Float64("score", bestScore),
		)
		return &Result{}, nil
	}

	officers, err := r.client.ListOfficers(ctx, bestItem.CompanyNumber)
	if err != nil {
		return &Result{}, eris.Wrap(err, "reconcile: list officers")
	}

	result := &Result{
		CompanyNumber: bestItem.CompanyNumber,
		MatchedTitle:  bestItem.Title,
		MatchScore:    bestScore,
	}
	for _, o := range officers {
		result.Officers = append(result.Officers, officerRecord(o, bestItem.CompanyNumber))
		if !o.IsActive() {
			continue
		}
		result.Executives = append(result.Executives, r.officerToExecutive(o, companyName, domain))
	}
	result.Verified = len(result.Executives) > 0

	zap.L().Info("reconcile: registry match",
		zap.String("company", companyName),
		zap.String("company_number", bestItem.CompanyNumber),
		zap.Float64("score", bestScore),
		zap.Int("active_officers", len(result.Executives)),
	)
	return result, nil
}

// selectBest scores every search item against the input name and returns
// the winner.
func (r *Reconciler) selectBest(inputName string, items []companieshouse.CompanySearchItem) (companieshouse.CompanySearchItem, float64) {
	best := items[0]
	bestScore := -1.0
	for _, item := range items {
		score := NameSimilarity(inputName, item.Title)
		if strings.EqualFold(item.CompanyStatus, "active") {
			score += activeStatusBonus
		}
		if r.matchesSIC(item.SICCodes) {
			score += sicPrefixBonus
		}
		if score > bestScore {
			best = item
			bestScore = score
		}
	}
	return best, bestScore
}

func (r *Reconciler) matchesSIC(codes []string) bool {
	for _, code := range codes {
		for _, prefix := range r.sicPrefixes {
			if strings.HasPrefix(code, prefix) {
				return true
			}
		}
	}
	return false
}

// officerRecord normalizes one register row, keeping resigned officers as
// evidence even though only active ones become executives.
func officerRecord(o companieshouse.Officer, companyNumber string) model.OfficerRecord {
	return model.OfficerRecord{
		Name:          CanonicalOfficerName(o.Name),
		RoleTitle:     titleCase(strings.ToLower(o.OfficerRole)),
		IsActive:      o.IsActive(),
		AppointedOn:   o.AppointedOn,
		CompanyNumber: companyNumber,
	}
}

// officerToExecutive converts a registry officer row into an executive at
// the maximum confidence tier.
func (r *Reconciler) officerToExecutive(o companieshouse.Officer, companyName, domain string) model.ExecutiveContact {
	full := CanonicalOfficerName(o.Name)
	first, last := splitName(full)
	title := titleCase(strings.ToLower(o.OfficerRole))

	return model.ExecutiveContact{
		FullName:        full,
		FirstName:       first,
		LastName:        last,
		Title:           title,
		SeniorityTier:   r.titles.Classify(o.OfficerRole),
		CompanyName:     companyName,
		Domain:          domain,
		Sources:         []string{model.SourceOfficialRegistry},
		DiscoveryMethod: "companies_house_officers",
		ValidationNotes: "verified against Companies House register",
		ConfidenceScore: 1.0,
	}
}

// CleanCompanyName strips legal-entity suffixes and industry-generic words
// before searching the register.
func CleanCompanyName(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" {
		return ""
	}

	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(upper, suffix) {
			upper = strings.TrimSuffix(upper, suffix)
			break
		}
	}

	words := strings.Fields(upper)
	kept := words[:0]
	for _, w := range words {
		w = strings.Trim(w, ".,&")
		if w == "" {
			continue
		}
		if _, generic := genericWords[w]; generic && len(words) > 1 {
			continue
		}
		kept = append(kept, w)
	}
	out := strings.Join(kept, " ")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(out, " "))
}

// NameSimilarity is word-set Jaccard overlap between two company names,
// case-insensitive.
func NameSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToUpper(s)) {
		w = strings.Trim(w, ".,&()")
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// titleCase builds a fresh Caser per call: a cases.Caser is stateful and
// must not be shared between the goroutines of concurrent company runs.
func titleCase(s string) string {
	return cases.Title(language.BritishEnglish).String(s)
}

// CanonicalOfficerName converts the register's "SURNAME, Forename" form
// into "Forename Surname" with normal casing.
func CanonicalOfficerName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, ","); i >= 0 {
		surname := strings.TrimSpace(name[:i])
		forenames := strings.TrimSpace(name[i+1:])
		name = forenames + " " + surname
	}
	return titleCase(strings.ToLower(name))
}

// splitName splits a full name into first and last words. Middle names fold
// into the first-name part.
func splitName(full string) (string, string) {
	words := strings.Fields(full)
	switch len(words) {
	case 0:
		return "", ""
	case 1:
		return words[0], ""
	default:
		return strings.Join(words[:len(words)-1], " "), words[len(words)-1]
	}
}
