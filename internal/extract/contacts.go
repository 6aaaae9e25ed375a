package extract

import (
	"regexp"
	"sort"
	"strings"
)

// ContactType is one of phone, email, linkedin.
type ContactType string

const (
	ContactPhone    ContactType = "phone"
	ContactEmail    ContactType = "email"
	ContactLinkedIn ContactType = "linkedin"
)

// Email subtypes. Inferred addresses are guesses built from name patterns
// and are never treated as verified.
const (
	EmailObserved = "observed"
	EmailInferred = "inferred"
)

// ContactItem is one extracted phone, email, or LinkedIn URL with a
// format-specific confidence. Ephemeral, same lifecycle as CandidateName.
type ContactItem struct {
	Type       ContactType
	Value      string // normalized
	Raw        string
	Offset     int
	Confidence float64
	Subtype    string
	Context    string
}

var (
	intlPhoneRe    = regexp.MustCompile(`\+\d{1,3}[\s-]?\(?\d{1,4}\)?(?:[\s-]?\d{2,4}){2,4}`)
	ukPhoneRe      = regexp.MustCompile(`\b0\d{2,4}[\s-]?\d{3,4}[\s-]?\d{3,4}\b`)
	usPhoneRe      = regexp.MustCompile(`\(\d{3}\)[\s.-]?\d{3}[\s.-]?\d{4}\b`)
	genericPhoneRe = regexp.MustCompile(`\b\d{4,6}[\s-]\d{5,8}\b`)

	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	linkedinRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/(?:in|company)/[A-Za-z0-9_.%\-]+/?(?:\?[^\s"'<>)]*)?`)

	nonDigitRe = regexp.MustCompile(`\D`)
)

// contactKeywords boost confidence when present near a match.
var contactKeywords = []string{
	"phone", "tel", "telephone", "call", "mobile", "cell",
	"contact", "reach", "email", "e-mail", "fax", "enquiries",
}

// execKeywords in context suggest the contact belongs to a named executive.
var execKeywords = []string{
	"director", "ceo", "owner", "founder", "manager", "managing",
	"chief", "head", "partner", "md",
}

// ContactExtractor independently extracts phones, emails, and LinkedIn URLs
// from text. It holds no state; the company domain is passed per call.
type ContactExtractor struct{}

// NewContactExtractor returns a ContactExtractor.
func NewContactExtractor() *ContactExtractor {
	return &ContactExtractor{}
}

// Extract runs all three matchers over text and deduplicates per type,
// keeping the highest-confidence instance per normalized value.
func (c *ContactExtractor) Extract(text, companyDomain string) []ContactItem {
	var items []ContactItem
	items = append(items, c.ExtractPhones(text)...)
	items = append(items, c.ExtractEmails(text, companyDomain)...)
	items = append(items, c.ExtractLinkedIn(text)...)
	return Dedupe(items)
}

// ExtractPhones matches US, UK, international, and generic phone formats.
func (c *ContactExtractor) ExtractPhones(text string) []ContactItem {
	var items []ContactItem
	for _, re := range []*regexp.Regexp{intlPhoneRe, ukPhoneRe, usPhoneRe, genericPhoneRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			raw := text[loc[0]:loc[1]]
			digits := nonDigitRe.ReplaceAllString(raw, "")
			if len(digits) < 7 || len(digits) > 15 {
				continue
			}
			ctx := surrounding(text, loc[0], loc[1], 40)
			items = append(items, ContactItem{
				Type:       ContactPhone,
				Value:      digits,
				Raw:        strings.TrimSpace(raw),
				Offset:     loc[0],
				Confidence: phoneConfidence(raw, digits, ctx),
				Subtype:    phoneSubtype(raw, digits, ctx),
				Context:    ctx,
			})
		}
	}
	return items
}

// phoneConfidence starts from a base value and accumulates format and
// context boosts, capped at 1.0.
func phoneConfidence(raw, digits, ctx string) float64 {
	conf := 0.5
	if len(digits) >= 10 && len(digits) <= 15 {
		conf += 0.15
	}
	if containsAny(ctx, contactKeywords) {
		conf += 0.15
	}
	if containsAny(ctx, execKeywords) {
		conf += 0.10
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "+") {
		conf += 0.10
	}
	if strings.Contains(raw, "(") && strings.Contains(raw, ")") {
		conf += 0.05
	}
	return clamp01(conf)
}

// phoneSubtype classifies a number as mobile, fax, or office.
func phoneSubtype(raw, digits, ctx string) string {
	lower := strings.ToLower(ctx)
	switch {
	case strings.Contains(lower, "fax"):
		return "fax"
	case strings.HasPrefix(digits, "07"), strings.HasPrefix(digits, "447"),
		strings.Contains(lower, "mobile"), strings.Contains(lower, "cell"):
		return "mobile"
	default:
		return "office"
	}
}

// ExtractEmails matches literal email addresses. A domain match against the
// company website is the single strongest signal.
func (c *ContactExtractor) ExtractEmails(text, companyDomain string) []ContactItem {
	companyDomain = strings.ToLower(strings.TrimPrefix(companyDomain, "www."))
	var items []ContactItem
	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		value := strings.ToLower(raw)
		ctx := surrounding(text, loc[0], loc[1], 40)

		conf := 0.6
		at := strings.LastIndex(value, "@")
		local, domain := value[:at], value[at+1:]
		if companyDomain != "" && domain == companyDomain {
			conf += 0.30
		}
		if containsAny(local, execKeywords) {
			conf += 0.10
		}
		if containsAny(ctx, contactKeywords) {
			conf += 0.05
		}

		items = append(items, ContactItem{
			Type:       ContactEmail,
			Value:      value,
			Raw:        raw,
			Offset:     loc[0],
			Confidence: clamp01(conf),
			Subtype:    EmailObserved,
			Context:    ctx,
		})
	}
	return items
}

// InferEmails generates plausible executive addresses from candidate names
// when no literal email was observed. Inferred addresses carry markedly
// lower confidence and are tagged as inferred.
func (c *ContactExtractor) InferEmails(names []CandidateName, companyDomain string) []ContactItem {
	companyDomain = strings.ToLower(strings.TrimPrefix(companyDomain, "www."))
	if companyDomain == "" {
		return nil
	}
	var items []ContactItem
	for _, n := range names {
		first := strings.ToLower(n.FirstName)
		last := strings.ToLower(n.LastName)
		patterns := []struct {
			local string
			conf  float64
		}{
			{first + "." + last, 0.30},
			{first, 0.20},
			{string(first[0]) + last, 0.20},
			{first + last, 0.15},
		}
		for _, p := range patterns {
			items = append(items, ContactItem{
				Type:       ContactEmail,
				Value:      p.local + "@" + companyDomain,
				Raw:        p.local + "@" + companyDomain,
				Offset:     n.Offset,
				Confidence: p.conf,
				Subtype:    EmailInferred,
			})
		}
	}
	return items
}

// ExtractLinkedIn matches /in/, /company/, and bare-domain LinkedIn URLs.
func (c *ContactExtractor) ExtractLinkedIn(text string) []ContactItem {
	var items []ContactItem
	for _, loc := range linkedinRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		ctx := surrounding(text, loc[0], loc[1], 40)

		conf := 0.5
		if strings.HasPrefix(strings.ToLower(raw), "https://") {
			conf += 0.10
		}
		if strings.Contains(strings.ToLower(raw), "linkedin.com/in/") {
			conf += 0.20
		}
		if containsAny(ctx, []string{"profile", "connect", "follow", "contact"}) {
			conf += 0.10
		}

		items = append(items, ContactItem{
			Type:       ContactLinkedIn,
			Value:      normalizeLinkedIn(raw),
			Raw:        raw,
			Offset:     loc[0],
			Confidence: clamp01(conf),
			Subtype:    linkedinSubtype(raw),
			Context:    ctx,
		})
	}
	return items
}

func linkedinSubtype(raw string) string {
	if strings.Contains(strings.ToLower(raw), "/company/") {
		return "company"
	}
	return "profile"
}

// normalizeLinkedIn strips the query string, lowercases, and trims the
// trailing slash so variants of the same profile deduplicate.
func normalizeLinkedIn(raw string) string {
	v := strings.ToLower(raw)
	if i := strings.Index(v, "?"); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSuffix(v, "/")
}

// Dedupe keeps the highest-confidence instance per (type, normalized value).
// Items are sorted descending by confidence first so the best survives.
func Dedupe(items []ContactItem) []ContactItem {
	sorted := make([]ContactItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	type key struct {
		t ContactType
		v string
	}
	seen := make(map[key]struct{})
	out := sorted[:0]
	for _, item := range sorted {
		k := key{item.Type, item.Value}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// surrounding returns a short context string around a match.
func surrounding(text string, start, end, pad int) string {
	lo := start - pad
	if lo < 0 {
		lo = 0
	}
	hi := end + pad
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
