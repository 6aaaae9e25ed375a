package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/execdiscovery/internal/model"
	"github.com/sells-group/execdiscovery/internal/store"
	"github.com/sells-group/execdiscovery/pkg/companieshouse"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchPage(ctx context.Context, pageURL string) (*model.FetchedPage, error) {
	args := m.Called(ctx, pageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FetchedPage), args.Error(1)
}

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) SearchCompanies(ctx context.Context, name string) ([]companieshouse.CompanySearchItem, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]companieshouse.CompanySearchItem), args.Error(1)
}

func (m *mockRegistry) ListOfficers(ctx context.Context, companyNumber string) ([]companieshouse.Officer, error) {
	args := m.Called(ctx, companyNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]companieshouse.Officer), args.Error(1)
}

// memStore is an in-memory Store for pipeline tests. Step saves arrive
// concurrently from the website and registry branches.
type memStore struct {
	mu       sync.Mutex
	seq      int
	runs     map[string]*model.Run
	steps    map[string][]model.DiscoveryStep
	cache    map[string]*model.PageCache
	statuses map[string][]model.RunStatus
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		runs:     make(map[string]*model.Run),
		steps:    make(map[string][]model.DiscoveryStep),
		cache:    make(map[string]*model.PageCache),
		statuses: make(map[string][]model.RunStatus),
	}
}

func (s *memStore) CreateRun(_ context.Context, company model.Company) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	run := &model.Run{
		ID:        fmt.Sprintf("run-%d", s.seq),
		Company:   company,
		Status:    model.RunStatusQueued,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.runs[run.ID] = run
	return run, nil
}

func (s *memStore) UpdateRunStatus(_ context.Context, runID string, status model.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	run.Status = status
	s.statuses[runID] = append(s.statuses[runID], status)
	return nil
}

func (s *memStore) UpdateRunResult(_ context.Context, runID string, result *model.DiscoveryResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	run.Result = result
	run.Status = model.RunStatusComplete
	return nil
}

func (s *memStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return run, nil
}

func (s *memStore) ListRuns(_ context.Context, filter store.RunFilter) ([]model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var runs []model.Run
	for _, r := range s.runs {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.CompanyURL != "" && r.Company.URL != filter.CompanyURL {
			continue
		}
		runs = append(runs, *r)
	}
	return runs, nil
}

func (s *memStore) SaveStep(_ context.Context, runID string, step model.DiscoveryStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[runID] = append(s.steps[runID], step)
	return nil
}

func (s *memStore) GetCachedPages(_ context.Context, companyURL string) (*model.PageCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache[companyURL], nil
}

func (s *memStore) SetCachedPages(_ context.Context, companyURL string, pages []model.FetchedPage, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.cache[companyURL] = &model.PageCache{
		ID:         fmt.Sprintf("cache-%s", companyURL),
		CompanyURL: companyURL,
		Pages:      pages,
		FetchedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	return nil
}

func (s *memStore) DeleteExpiredPages(_ context.Context) (int, error) {
	return 0, nil
}

func (s *memStore) Migrate(_ context.Context) error { return nil }

func (s *memStore) Close() error { return nil }

func (s *memStore) recordedStatuses(runID string) []model.RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.RunStatus(nil), s.statuses[runID]...)
}
