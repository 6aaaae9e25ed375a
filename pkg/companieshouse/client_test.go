package companieshouse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCompanies(t *testing.T) {
	var gotUser, gotQuery, gotPerPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		gotQuery = r.URL.Query().Get("q")
		gotPerPage = r.URL.Query().Get("items_per_page")
		assert.Equal(t, "/search/companies", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"title": "ACME PLUMBING LTD", "company_number": "01234567",
				 "company_status": "active", "sic_codes": ["43220"]}
			],
			"total_results": 1
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithMaxSearchItems(5))
	items, err := c.SearchCompanies(context.Background(), "ACME PLUMBING")

	require.NoError(t, err)
	assert.Equal(t, "test-key", gotUser)
	assert.Equal(t, "ACME PLUMBING", gotQuery)
	assert.Equal(t, "5", gotPerPage)

	require.Len(t, items, 1)
	assert.Equal(t, "ACME PLUMBING LTD", items[0].Title)
	assert.Equal(t, "01234567", items[0].CompanyNumber)
	assert.Equal(t, []string{"43220"}, items[0].SICCodes)
}

func TestListOfficers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/01234567/officers", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"name": "DOE, Jane", "officer_role": "director", "appointed_on": "2015-03-01"},
				{"name": "SMITH, John", "officer_role": "secretary", "resigned_on": "2019-06-30"}
			],
			"active_count": 1,
			"total_results": 2
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	officers, err := c.ListOfficers(context.Background(), "01234567")

	require.NoError(t, err)
	require.Len(t, officers, 2)
	assert.True(t, officers[0].IsActive())
	assert.False(t, officers[1].IsActive())
}

func TestGet_NotFoundIsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))

	items, err := c.SearchCompanies(context.Background(), "UNKNOWN CO")
	require.NoError(t, err)
	assert.Empty(t, items)

	officers, err := c.ListOfficers(context.Background(), "99999999")
	require.NoError(t, err)
	assert.Empty(t, officers)
}

func TestGet_RateLimitedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.SearchCompanies(context.Background(), "ACME")
	assert.Error(t, err)
}

func TestGet_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.ListOfficers(context.Background(), "01234567")
	assert.Error(t, err)
}

func TestGet_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.SearchCompanies(ctx, "ACME")
	assert.Error(t, err)
}

func TestGet_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.SearchCompanies(context.Background(), "ACME")
	assert.Error(t, err)
}
