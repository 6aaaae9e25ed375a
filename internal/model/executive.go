package model

// SeniorityTier classifies an executive's title into three ordinal bands.
// Lower is more senior.
type SeniorityTier int

const (
	// TierTopLeadership covers CEO, Owner, Founder, Managing Director.
	TierTopLeadership SeniorityTier = 1
	// TierMidManagement covers Director and Head-of roles.
	TierMidManagement SeniorityTier = 2
	// TierOther covers Manager and everything else.
	TierOther SeniorityTier = 3
)

// Discovery source tags attached to an executive's Sources list, in the
// order the evidence was found.
const (
	SourceOfficialRegistry  = "official_registry"
	SourceWebsiteExtraction = "website_extraction"
	SourceWebsiteEnrichment = "website_contact_enrichment"
)

// ExecutiveContact is one real or believed-real person associated with a
// company. Contact fields are independently optional; a record may carry
// zero to three of them.
type ExecutiveContact struct {
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Title         string        `json:"title,omitempty"`
	SeniorityTier SeniorityTier `json:"seniority_tier"`

	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`

	CompanyName     string   `json:"company_name"`
	Domain          string   `json:"domain,omitempty"`
	Sources         []string `json:"sources"`
	DiscoveryMethod string   `json:"discovery_method,omitempty"`
	ValidationNotes string   `json:"validation_notes,omitempty"`

	// ConfidenceScore is always within [0,1]. Registry-sourced records are
	// pinned at 1.0 regardless of contact completeness.
	ConfidenceScore float64 `json:"confidence_score"`
}

// HasSource reports whether tag is already in the record's source list.
func (e *ExecutiveContact) HasSource(tag string) bool {
	for _, s := range e.Sources {
		if s == tag {
			return true
		}
	}
	return false
}

// AddSource appends tag to the source list if not already present.
func (e *ExecutiveContact) AddSource(tag string) {
	if !e.HasSource(tag) {
		e.Sources = append(e.Sources, tag)
	}
}

// IsRegistrySourced reports whether the record originated from the official
// registry. Such records are authoritative and never merged away.
func (e *ExecutiveContact) IsRegistrySourced() bool {
	return e.HasSource(SourceOfficialRegistry)
}

// ContactCount returns how many of the three contact fields are populated.
func (e *ExecutiveContact) ContactCount() int {
	n := 0
	if e.Email != "" {
		n++
	}
	if e.Phone != "" {
		n++
	}
	if e.LinkedInURL != "" {
		n++
	}
	return n
}

// CompletenessPercentage assigns fixed points per contact type present:
// 40 for email, 40 for phone, 20 for LinkedIn. Presence matters more than
// per-item certainty for this metric.
func (e *ExecutiveContact) CompletenessPercentage() int {
	pct := 0
	if e.Email != "" {
		pct += 40
	}
	if e.Phone != "" {
		pct += 40
	}
	if e.LinkedInURL != "" {
		pct += 20
	}
	return pct
}

// OfficerRecord is a single officer row from the official registry
// collaborator, resigned appointments included.
type OfficerRecord struct {
	Name          string `json:"name"`
	RoleTitle     string `json:"role_title"`
	IsActive      bool   `json:"is_active"`
	AppointedOn   string `json:"appointed_on,omitempty"`
	CompanyNumber string `json:"company_number,omitempty"`
}
