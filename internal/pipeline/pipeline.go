// Package pipeline orchestrates the executive discovery run for a single
// company: fetch website content, extract and attribute contacts, reconcile
// against the official registry, merge, score, and rank.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/execdiscovery/internal/config"
	"github.com/sells-group/execdiscovery/internal/extract"
	"github.com/sells-group/execdiscovery/internal/fetch"
	"github.com/sells-group/execdiscovery/internal/merge"
	"github.com/sells-group/execdiscovery/internal/model"
	"github.com/sells-group/execdiscovery/internal/reconcile"
	"github.com/sells-group/execdiscovery/internal/score"
	"github.com/sells-group/execdiscovery/internal/store"
)

// Pipeline holds the explicitly constructed, dependency-injected
// collaborators for one process lifetime. No hidden global state is shared
// between company runs.
type Pipeline struct {
	cfg        *config.Config
	store      store.Store
	fetcher    fetch.Fetcher
	names      *extract.NameExtractor
	contacts   *extract.ContactExtractor
	titles     *extract.TitleClassifier
	attributor *extract.Attributor
	reconciler *reconcile.Reconciler
	merger     *merge.Engine
	scorer     *score.Scorer
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	fetcher fetch.Fetcher,
	reconciler *reconcile.Reconciler,
	rules *extract.RuleSet,
) *Pipeline {
	titles := extract.NewTitleClassifier(rules.Titles)
	return &Pipeline{
		cfg:        cfg,
		store:      st,
		fetcher:    fetcher,
		names:      extract.NewNameExtractor(rules),
		contacts:   extract.NewContactExtractor(),
		titles:     titles,
		attributor: extract.NewAttributor(cfg.Discovery.ProximityWindow, titles),
		reconciler: reconciler,
		merger:     merge.NewEngine(cfg.Discovery.NameSimilarityThreshold),
		scorer:     score.NewScorer(cfg.Discovery.MinConfidence),
	}
}

// Run executes the full discovery pipeline for a single company. Per-source
// failures degrade to empty contributions recorded in the step telemetry;
// only malformed input aborts the run.
func (p *Pipeline) Run(ctx context.Context, company model.Company) (*model.DiscoveryResult, error) {
	log := zap.L().With(zap.String("company", company.Name), zap.String("url", company.URL))
	log.Info("pipeline: starting discovery")

	run, err := p.store.CreateRun(ctx, company)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	result := &model.DiscoveryResult{
		RunID:   run.ID,
		Company: company,
	}

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	// Step tracking with a mutex: the website and registry branches record
	// steps concurrently.
	var stepsMu sync.Mutex
	var stepIndex int
	trackStep := func(name, source string, fn func(step *model.DiscoveryStep) error) {
		stepsMu.Lock()
		stepIndex++
		step := model.DiscoveryStep{Index: stepIndex, Name: name, Source: source}
		stepsMu.Unlock()

		start := time.Now()
		fnErr := fn(&step)
		step.DurationMS = time.Since(start).Milliseconds()

		if fnErr != nil {
			step.Success = false
			step.FallbackTriggered = true
			step.Error = fnErr.Error()
			log.Warn("pipeline: step degraded",
				zap.String("step", name),
				zap.Int64("duration_ms", step.DurationMS),
				zap.Error(fnErr),
			)
		} else {
			step.Success = true
			log.Info("pipeline: step complete",
				zap.String("step", name),
				zap.Int64("duration_ms", step.DurationMS),
			)
		}

		if saveErr := p.store.SaveStep(ctx, run.ID, step); saveErr != nil {
			log.Warn("pipeline: failed to save step", zap.Error(saveErr))
		}
		stepsMu.Lock()
		result.Steps = append(result.Steps, step)
		stepsMu.Unlock()
	}

	// ===== Step 1: Identify =====
	setStatus(model.RunStatusIdentifying)

	ident, err := Identify(company)
	if err != nil {
		setStatus(model.RunStatusFailed)
		return nil, err
	}

	trackStep("identify_company", "caller_input", func(step *model.DiscoveryStep) error {
		step.Confidence = ident.Confidence
		step.Findings = map[string]any{"domain": ident.Domain}
		return nil
	})

	// ===== Steps 2-5: website chain and registry reconcile in parallel.
	// The two branches share no mutable state.
	setStatus(model.RunStatusFetching)

	var websiteExecs []model.ExecutiveContact
	var registryResult *reconcile.Result

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var pageSet *fetch.PageSet
		trackStep("fetch_website", "website", func(step *model.DiscoveryStep) error {
			ps, fetchErr := p.fetchWithCache(gCtx, company.URL)
			if fetchErr != nil {
				return fetchErr
			}
			pageSet = ps
			ident.ServedURL = ps.ServedBase
			step.Confidence = 0.9
			step.Findings = map[string]any{"pages_fetched": len(ps.Pages)}
			return nil
		})
		if pageSet == nil {
			return nil
		}
		result.PagesFetched = len(pageSet.Pages)

		trackStep("extract_and_attribute", "website", func(step *model.DiscoveryStep) error {
			websiteExecs = p.extractExecutives(pageSet.CombinedText(), ident)
			step.Confidence = 0.7
			step.Findings = map[string]any{"executives": len(websiteExecs)}
			return nil
		})
		return nil
	})

	g.Go(func() error {
		trackStep("registry_reconcile", "official_registry", func(step *model.DiscoveryStep) error {
			rr, recErr := p.reconciler.Reconcile(gCtx, company.Name, ident.Domain)
			if recErr != nil {
				registryResult = &reconcile.Result{}
				return recErr
			}
			registryResult = rr
			step.Confidence = rr.MatchScore
			step.Findings = map[string]any{
				"verified":        rr.Verified,
				"company_number":  rr.CompanyNumber,
				"active_officers": len(rr.Executives),
				"total_officers":  len(rr.Officers),
			}
			return nil
		})
		return nil
	})

	_ = g.Wait()

	if registryResult == nil {
		registryResult = &reconcile.Result{}
	}
	result.Identification = ident
	result.RegistryVerified = registryResult.Verified

	// ===== Step 6: Merge & dedupe =====
	setStatus(model.RunStatusMerging)

	var mergedExecs []model.ExecutiveContact
	trackStep("merge_dedupe", "merge", func(step *model.DiscoveryStep) error {
		mergedExecs = p.merger.Merge(registryResult.Executives, websiteExecs)
		step.Confidence = 1.0
		step.Findings = map[string]any{
			"registry_records": len(registryResult.Executives),
			"website_records":  len(websiteExecs),
			"merged_records":   len(mergedExecs),
		}
		return nil
	})

	// ===== Step 7: Score & rank =====
	trackStep("score_rank", "score", func(step *model.DiscoveryStep) error {
		result.Executives = p.scorer.ScoreAndRank(mergedExecs)
		step.Confidence = 1.0
		step.Findings = map[string]any{
			"final_count": len(result.Executives),
			"dropped":     len(mergedExecs) - len(result.Executives),
		}
		return nil
	})

	setStatus(model.RunStatusComplete)
	if saveErr := p.store.UpdateRunResult(ctx, run.ID, result); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}

	log.Info("pipeline: discovery complete",
		zap.String("run_id", run.ID),
		zap.Int("executives", len(result.Executives)),
		zap.Bool("registry_verified", result.RegistryVerified),
	)
	return result, nil
}

// fetchWithCache returns cached pages when fresh, otherwise fetches the
// site across its priority sub-paths and caches the outcome.
func (p *Pipeline) fetchWithCache(ctx context.Context, companyURL string) (*fetch.PageSet, error) {
	if cached, err := p.store.GetCachedPages(ctx, companyURL); err == nil && cached != nil {
		zap.L().Debug("pipeline: using cached pages",
			zap.String("url", companyURL),
			zap.Int("pages", len(cached.Pages)),
		)
		ps := &fetch.PageSet{Pages: cached.Pages, ServedBase: companyURL}
		if len(cached.Pages) > 0 {
			ps.ServedBase = cached.Pages[0].URL
		}
		return ps, nil
	}

	ps, err := fetch.FetchPages(ctx, p.fetcher, companyURL, p.cfg.Fetch.SubPaths, p.cfg.Fetch.MaxConcurrent)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(p.cfg.Fetch.CacheTTLHours) * time.Hour
	if ttl > 0 {
		if cacheErr := p.store.SetCachedPages(ctx, companyURL, ps.Pages, ttl); cacheErr != nil {
			zap.L().Warn("pipeline: failed to cache pages", zap.Error(cacheErr))
		}
	}
	return ps, nil
}

// extractExecutives runs the extraction core over the combined corpus:
// candidate names and contact items independently, then proximity
// attribution into per-person bundles.
func (p *Pipeline) extractExecutives(text string, ident model.CompanyIdentification) []model.ExecutiveContact {
	candidates := p.names.Extract(text)
	if len(candidates) == 0 {
		return nil
	}

	contacts := p.contacts.Extract(text, ident.Domain)

	// Inference only fires when no literal email was observed anywhere.
	hasObservedEmail := false
	for _, c := range contacts {
		if c.Type == extract.ContactEmail && c.Subtype == extract.EmailObserved {
			hasObservedEmail = true
			break
		}
	}
	if !hasObservedEmail {
		contacts = extract.Dedupe(append(contacts, p.contacts.InferEmails(candidates, ident.Domain)...))
	}

	attributed := p.attributor.Attribute(text, candidates, contacts)

	execs := make([]model.ExecutiveContact, 0, len(attributed))
	for _, a := range attributed {
		execs = append(execs, websiteExecutive(a, ident))
	}
	return execs
}

// websiteExecutive converts an attributed bundle into the output entity.
func websiteExecutive(a extract.WebsiteExecutive, ident model.CompanyIdentification) model.ExecutiveContact {
	e := model.ExecutiveContact{
		FullName:        a.Candidate.Raw,
		FirstName:       a.Candidate.FirstName,
		LastName:        a.Candidate.LastName,
		Title:           a.Title,
		SeniorityTier:   a.Tier,
		CompanyName:     ident.CompanyName,
		Domain:          ident.Domain,
		Sources:         []string{model.SourceWebsiteExtraction},
		DiscoveryMethod: "website_pattern_extraction",
		ValidationNotes: "name validation tier: " + string(a.Candidate.Tier),
		ConfidenceScore: a.Confidence,
	}
	if a.Email != nil {
		e.Email = a.Email.Value
		if a.Email.Subtype == extract.EmailInferred {
			e.ValidationNotes += "; email inferred from name pattern, unverified"
		}
	}
	if a.Phone != nil {
		e.Phone = a.Phone.Raw
	}
	if a.LinkedIn != nil {
		e.LinkedInURL = a.LinkedIn.Value
	}
	return e
}
