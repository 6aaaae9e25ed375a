package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/execdiscovery/internal/config"
	"github.com/sells-group/execdiscovery/internal/extract"
	"github.com/sells-group/execdiscovery/internal/model"
	"github.com/sells-group/execdiscovery/internal/reconcile"
	"github.com/sells-group/execdiscovery/pkg/companieshouse"
)

const aboutPageText = "Our Managing Director John Smith can be reached at " +
	"john.smith@acmeplumbing.co.uk or 020 7946 0958."

func testConfig() *config.Config {
	return &config.Config{
		Fetch: config.FetchConfig{
			MaxConcurrent: 2,
			CacheTTLHours: 1,
		},
		Discovery: config.DiscoveryConfig{
			ProximityWindow:         250,
			NameSimilarityThreshold: 0.8,
			MinConfidence:           0.5,
		},
	}
}

func newTestPipeline(t *testing.T, st *memStore, fetcher *mockFetcher, registry *mockRegistry) *Pipeline {
	t.Helper()
	rules, err := extract.DefaultRules()
	require.NoError(t, err)
	titles := extract.NewTitleClassifier(rules.Titles)
	reconciler := reconcile.New(registry, titles, 0.5)
	return New(testConfig(), st, fetcher, reconciler, rules)
}

func stepByName(steps []model.DiscoveryStep, name string) (model.DiscoveryStep, bool) {
	for _, s := range steps {
		if s.Name == name {
			return s, true
		}
	}
	return model.DiscoveryStep{}, false
}

func TestRun_WebsiteAndRegistryCombined(t *testing.T) {
	st := newMemStore()

	fetcher := &mockFetcher{}
	fetcher.On("FetchPage", mock.Anything, "https://acmeplumbing.co.uk").
		Return(&model.FetchedPage{URL: "https://acmeplumbing.co.uk", Text: aboutPageText}, nil)

	registry := &mockRegistry{}
	registry.On("SearchCompanies", mock.Anything, "ACME").Return([]companieshouse.CompanySearchItem{
		{Title: "ACME PLUMBING LTD", CompanyNumber: "01234567", CompanyStatus: "active"},
	}, nil)
	registry.On("ListOfficers", mock.Anything, "01234567").Return([]companieshouse.Officer{
		{Name: "DOE, Jane", OfficerRole: "director"},
	}, nil)

	p := newTestPipeline(t, st, fetcher, registry)
	result, err := p.Run(context.Background(), model.Company{
		Name: "Acme Plumbing Ltd",
		URL:  "acmeplumbing.co.uk",
	})

	require.NoError(t, err)
	assert.True(t, result.RegistryVerified)
	assert.Equal(t, 1, result.PagesFetched)
	assert.Equal(t, "acmeplumbing.co.uk", result.Identification.Domain)
	assert.Equal(t, "https://acmeplumbing.co.uk", result.Identification.ServedURL)

	// Website-discovered top leadership ranks above the registry director.
	require.Len(t, result.Executives, 2)
	top := result.Executives[0]
	assert.Equal(t, "John Smith", top.FullName)
	assert.Equal(t, "Managing Director", top.Title)
	assert.Equal(t, model.TierTopLeadership, top.SeniorityTier)
	assert.Equal(t, "john.smith@acmeplumbing.co.uk", top.Email)
	assert.Equal(t, "020 7946 0958", top.Phone)
	assert.InDelta(t, 1.0, top.ConfidenceScore, 1e-9)

	second := result.Executives[1]
	assert.Equal(t, "Jane Doe", second.FullName)
	assert.True(t, second.IsRegistrySourced())
	assert.InDelta(t, 1.0, second.ConfidenceScore, 1e-9)

	require.Len(t, result.Steps, 6)
	for _, s := range result.Steps {
		assert.True(t, s.Success, "step %s should succeed", s.Name)
	}

	run, err := st.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)

	fetcher.AssertExpectations(t)
	registry.AssertExpectations(t)
}

func TestRun_RegistryTimeoutDegradesToWebsiteOnly(t *testing.T) {
	st := newMemStore()

	fetcher := &mockFetcher{}
	fetcher.On("FetchPage", mock.Anything, "https://acmeplumbing.co.uk").
		Return(&model.FetchedPage{URL: "https://acmeplumbing.co.uk", Text: aboutPageText}, nil)

	registry := &mockRegistry{}
	registry.On("SearchCompanies", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	p := newTestPipeline(t, st, fetcher, registry)
	result, err := p.Run(context.Background(), model.Company{
		Name: "Acme Plumbing Ltd",
		URL:  "acmeplumbing.co.uk",
	})

	require.NoError(t, err)
	assert.False(t, result.RegistryVerified)

	require.Len(t, result.Executives, 1)
	assert.Equal(t, "John Smith", result.Executives[0].FullName)
	assert.False(t, result.Executives[0].IsRegistrySourced())

	step, ok := stepByName(result.Steps, "registry_reconcile")
	require.True(t, ok)
	assert.False(t, step.Success)
	assert.True(t, step.FallbackTriggered)
	assert.NotEmpty(t, step.Error)

	run, err := st.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
}

func TestRun_WebsiteFailureDegradesToRegistryOnly(t *testing.T) {
	st := newMemStore()

	fetcher := &mockFetcher{}
	fetcher.On("FetchPage", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	registry := &mockRegistry{}
	registry.On("SearchCompanies", mock.Anything, mock.Anything).Return([]companieshouse.CompanySearchItem{
		{Title: "ACME PLUMBING LTD", CompanyNumber: "01234567", CompanyStatus: "active"},
	}, nil)
	registry.On("ListOfficers", mock.Anything, "01234567").Return([]companieshouse.Officer{
		{Name: "DOE, Jane", OfficerRole: "director"},
	}, nil)

	p := newTestPipeline(t, st, fetcher, registry)
	result, err := p.Run(context.Background(), model.Company{
		Name: "Acme Plumbing Ltd",
		URL:  "acmeplumbing.co.uk",
	})

	require.NoError(t, err)
	assert.True(t, result.RegistryVerified)
	assert.Equal(t, 0, result.PagesFetched)

	require.Len(t, result.Executives, 1)
	assert.Equal(t, "Jane Doe", result.Executives[0].FullName)

	step, ok := stepByName(result.Steps, "fetch_website")
	require.True(t, ok)
	assert.True(t, step.FallbackTriggered)

	// The extraction step never runs without pages.
	_, ok = stepByName(result.Steps, "extract_and_attribute")
	assert.False(t, ok)
}

func TestRun_BoilerplateSiteYieldsNoExecutives(t *testing.T) {
	st := newMemStore()

	fetcher := &mockFetcher{}
	fetcher.On("FetchPage", mock.Anything, "https://acmeplumbing.co.uk").
		Return(&model.FetchedPage{
			URL:  "https://acmeplumbing.co.uk",
			Text: "Call us now! Free Estimate! Emergency Plumbing Services Birmingham.",
		}, nil)

	registry := &mockRegistry{}
	registry.On("SearchCompanies", mock.Anything, mock.Anything).
		Return([]companieshouse.CompanySearchItem{}, nil)

	p := newTestPipeline(t, st, fetcher, registry)
	result, err := p.Run(context.Background(), model.Company{
		Name: "Acme Plumbing Ltd",
		URL:  "acmeplumbing.co.uk",
	})

	require.NoError(t, err)
	assert.Empty(t, result.Executives)
	assert.False(t, result.RegistryVerified)
}

func TestRun_CachedPagesSkipFetching(t *testing.T) {
	st := newMemStore()
	require.NoError(t, st.SetCachedPages(context.Background(), "acmeplumbing.co.uk", []model.FetchedPage{
		{URL: "https://acmeplumbing.co.uk", Path: "/", Text: aboutPageText},
	}, 1))

	fetcher := &mockFetcher{}

	registry := &mockRegistry{}
	registry.On("SearchCompanies", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	p := newTestPipeline(t, st, fetcher, registry)
	result, err := p.Run(context.Background(), model.Company{
		Name: "Acme Plumbing Ltd",
		URL:  "acmeplumbing.co.uk",
	})

	require.NoError(t, err)
	require.Len(t, result.Executives, 1)
	assert.Equal(t, "John Smith", result.Executives[0].FullName)
	fetcher.AssertNotCalled(t, "FetchPage", mock.Anything, mock.Anything)
}

func TestRun_MalformedInputFailsRun(t *testing.T) {
	st := newMemStore()
	p := newTestPipeline(t, st, &mockFetcher{}, &mockRegistry{})

	_, err := p.Run(context.Background(), model.Company{Name: "", URL: "acmeplumbing.co.uk"})
	assert.Error(t, err)

	_, err = p.Run(context.Background(), model.Company{Name: "Acme Plumbing Ltd", URL: ""})
	assert.Error(t, err)
}

func TestRun_StatusProgression(t *testing.T) {
	st := newMemStore()

	fetcher := &mockFetcher{}
	fetcher.On("FetchPage", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	registry := &mockRegistry{}
	registry.On("SearchCompanies", mock.Anything, mock.Anything).
		Return([]companieshouse.CompanySearchItem{}, nil)

	p := newTestPipeline(t, st, fetcher, registry)
	result, err := p.Run(context.Background(), model.Company{
		Name: "Acme Plumbing Ltd",
		URL:  "acmeplumbing.co.uk",
	})

	require.NoError(t, err)
	statuses := st.recordedStatuses(result.RunID)
	assert.Equal(t, []model.RunStatus{
		model.RunStatusIdentifying,
		model.RunStatusFetching,
		model.RunStatusMerging,
		model.RunStatusComplete,
	}, statuses)
}

func TestIdentify(t *testing.T) {
	ident, err := Identify(model.Company{Name: "Acme Plumbing Ltd", URL: "https://www.acmeplumbing.co.uk"})
	require.NoError(t, err)
	assert.Equal(t, "acmeplumbing.co.uk", ident.Domain)
	assert.Equal(t, "Acme Plumbing Ltd", ident.CompanyName)
	assert.InDelta(t, 1.0, ident.Confidence, 1e-9)
	assert.Equal(t, "caller_input", ident.Method)

	_, err = Identify(model.Company{Name: " ", URL: "acmeplumbing.co.uk"})
	assert.Error(t, err)

	_, err = Identify(model.Company{Name: "Acme", URL: "   "})
	assert.Error(t, err)
}
