package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/execdiscovery/internal/fetch"
	"github.com/sells-group/execdiscovery/internal/model"
)

// Identify resolves the discovery target from the raw input. An unparseable
// URL or empty company name is a hard failure: no pipeline can proceed
// without a resolvable target.
func Identify(company model.Company) (model.CompanyIdentification, error) {
	name := strings.TrimSpace(company.Name)
	if name == "" {
		return model.CompanyIdentification{}, eris.New("pipeline: empty company name")
	}

	domain := fetch.Domain(company.URL)
	if domain == "" {
		return model.CompanyIdentification{}, eris.Errorf("pipeline: unparseable url %q", company.URL)
	}

	return model.CompanyIdentification{
		CompanyName: name,
		Domain:      domain,
		InputURL:    company.URL,
		ServedURL:   company.URL,
		Confidence:  1.0,
		Method:      "caller_input",
	}, nil
}
