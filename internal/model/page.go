package model

import "time"

// FetchedPage is the rendered text content of a single page.
type FetchedPage struct {
	URL        string `json:"url"`
	Path       string `json:"path"`
	Title      string `json:"title,omitempty"`
	Text       string `json:"text"`
	StatusCode int    `json:"status_code"`
}

// PageCache stores fetched pages for a company URL with an expiry.
type PageCache struct {
	ID         string        `json:"id"`
	CompanyURL string        `json:"company_url"`
	Pages      []FetchedPage `json:"pages"`
	FetchedAt  time.Time     `json:"fetched_at"`
	ExpiresAt  time.Time     `json:"expires_at"`
}
