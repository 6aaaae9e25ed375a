package model

import "time"

// RunStatus represents the current state of a discovery run.
type RunStatus string

// The website and registry branches run in parallel, so a single linear
// status cannot represent extraction and reconciliation separately;
// "fetching" covers the whole parallel phase and per-branch detail lives in
// the step telemetry.
const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusIdentifying RunStatus = "identifying"
	RunStatusFetching    RunStatus = "fetching"
	RunStatusMerging     RunStatus = "merging"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Company is the discovery target: a company name plus its website URL.
type Company struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CompanyIdentification is resolved once at step 1 of a run and immutable
// afterward. ServedURL is the URL variant that actually returned content,
// which may differ from the input after protocol/www fallback.
type CompanyIdentification struct {
	CompanyName string  `json:"company_name"`
	Domain      string  `json:"domain"`
	InputURL    string  `json:"input_url"`
	ServedURL   string  `json:"served_url"`
	Confidence  float64 `json:"confidence"`
	Method      string  `json:"method"`
}

// DiscoveryStep records one pipeline stage's outcome. Write-once per run,
// used for observability only, never for decision logic.
type DiscoveryStep struct {
	Index             int            `json:"index"`
	Name              string         `json:"name"`
	Source            string         `json:"source"`
	Success           bool           `json:"success"`
	Confidence        float64        `json:"confidence"`
	DurationMS        int64          `json:"duration_ms"`
	FallbackTriggered bool           `json:"fallback_triggered"`
	Findings          map[string]any `json:"findings,omitempty"`
	Error             string         `json:"error,omitempty"`
}

// DiscoveryResult is the final output of one company's pipeline run.
type DiscoveryResult struct {
	RunID            string                `json:"run_id"`
	Company          Company               `json:"company"`
	Identification   CompanyIdentification `json:"identification"`
	Executives       []ExecutiveContact    `json:"executives"`
	RegistryVerified bool                  `json:"registry_verified"`
	PagesFetched     int                   `json:"pages_fetched"`
	Steps            []DiscoveryStep       `json:"steps"`
}

// Run represents a single persisted discovery run for a company.
type Run struct {
	ID        string           `json:"id"`
	Company   Company          `json:"company"`
	Status    RunStatus        `json:"status"`
	Result    *DiscoveryResult `json:"result,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
