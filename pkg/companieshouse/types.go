package companieshouse

// CompanySearchItem is one result from the company search endpoint.
type CompanySearchItem struct {
	Title          string   `json:"title"`
	CompanyNumber  string   `json:"company_number"`
	CompanyStatus  string   `json:"company_status"`
	CompanyType    string   `json:"company_type"`
	AddressSnippet string   `json:"address_snippet"`
	SICCodes       []string `json:"sic_codes,omitempty"`
}

// searchResponse wraps the search endpoint payload.
type searchResponse struct {
	Items        []CompanySearchItem `json:"items"`
	TotalResults int                 `json:"total_results"`
}

// Officer is one row from the company officers endpoint.
type Officer struct {
	Name        string `json:"name"`
	OfficerRole string `json:"officer_role"`
	AppointedOn string `json:"appointed_on,omitempty"`
	ResignedOn  string `json:"resigned_on,omitempty"`
}

// IsActive reports whether the officer has not resigned.
func (o Officer) IsActive() bool {
	return o.ResignedOn == ""
}

// officersResponse wraps the officers endpoint payload.
type officersResponse struct {
	Items        []Officer `json:"items"`
	ActiveCount  int       `json:"active_count"`
	TotalResults int       `json:"total_results"`
}
