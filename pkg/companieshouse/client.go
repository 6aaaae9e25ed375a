// Package companieshouse provides a rate-limited client for the UK
// Companies House public data API.
package companieshouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client abstracts the Companies House API for testing.
type Client interface {
	// SearchCompanies searches the register by company name. No results is
	// an empty slice, not an error.
	SearchCompanies(ctx context.Context, name string) ([]CompanySearchItem, error)

	// ListOfficers returns all officers (active and resigned) for a company.
	ListOfficers(ctx context.Context, companyNumber string) ([]Officer, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second budget. Companies House allows
// 600 requests per 5 minutes (2 req/s); callers tolerate the added latency
// silently.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithMaxSearchItems caps how many search results are requested per query.
func WithMaxSearchItems(n int) Option {
	return func(c *client) {
		c.maxItems = n
	}
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxItems   int
}

// NewClient creates a Companies House client. The API key is used as the
// basic-auth username per the API's authentication scheme.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:     apiKey,
		baseURL:    "https://api.company-information.service.gov.uk",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(2, 1), // 600 per 5 min
		maxItems:   10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) SearchCompanies(ctx context.Context, name string) ([]CompanySearchItem, error) {
	endpoint := fmt.Sprintf("%s/search/companies?q=%s&items_per_page=%d",
		c.baseURL, url.QueryEscape(name), c.maxItems)

	var resp searchResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, eris.Wrap(err, "companieshouse: search companies")
	}
	return resp.Items, nil
}

func (c *client) ListOfficers(ctx context.Context, companyNumber string) ([]Officer, error) {
	endpoint := fmt.Sprintf("%s/company/%s/officers",
		c.baseURL, url.PathEscape(companyNumber))

	var resp officersResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, eris.Wrap(err, "companieshouse: list officers")
	}
	return resp.Items, nil
}

// get waits on the rate limiter, issues an authenticated GET, and decodes
// the JSON body into out. 404 decodes as an empty payload: an unknown
// company is a negative result, not an error.
func (c *client) get(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "do request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return eris.New("rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return eris.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}
