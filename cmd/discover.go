package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/execdiscovery/internal/extract"
	"github.com/sells-group/execdiscovery/internal/fetch"
	"github.com/sells-group/execdiscovery/internal/model"
	"github.com/sells-group/execdiscovery/internal/pipeline"
	"github.com/sells-group/execdiscovery/internal/reconcile"
	"github.com/sells-group/execdiscovery/internal/store"
	"github.com/sells-group/execdiscovery/pkg/companieshouse"
)

var (
	discoverURL  string
	discoverName string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run executive discovery for a single company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := buildPipeline(st)
		if err != nil {
			return err
		}

		company := model.Company{
			Name: discoverName,
			URL:  discoverURL,
		}

		result, err := p.Run(ctx, company)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("discovery complete",
			zap.String("company", company.Name),
			zap.Int("executives", len(result.Executives)),
			zap.Bool("registry_verified", result.RegistryVerified),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// initStore opens and migrates the run database.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// buildPipeline wires the fetcher, registry client, and rule tables into a
// pipeline. Clients are constructed here and injected; nothing is global.
func buildPipeline(st store.Store) (*pipeline.Pipeline, error) {
	rules, err := extract.LoadRules(cfg.Discovery.RulesPath)
	if err != nil {
		return nil, eris.Wrap(err, "load rules")
	}

	fetcher := fetch.NewHTTPFetcher(fetch.HTTPFetcherConfig{
		TimeoutSecs:  cfg.Fetch.TimeoutSecs,
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})

	chClient := companieshouse.NewClient(cfg.CompaniesHouse.Key,
		companieshouse.WithBaseURL(cfg.CompaniesHouse.BaseURL),
		companieshouse.WithRateLimit(cfg.CompaniesHouse.RatePerSecond),
		companieshouse.WithMaxSearchItems(cfg.CompaniesHouse.MaxSearchItems),
		companieshouse.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.CompaniesHouse.TimeoutSecs) * time.Second,
		}),
	)

	titles := extract.NewTitleClassifier(rules.Titles)
	reconciler := reconcile.New(chClient, titles, cfg.CompaniesHouse.MinMatchScore)

	return pipeline.New(cfg, st, fetcher, reconciler, rules), nil
}

func init() {
	discoverCmd.Flags().StringVar(&discoverURL, "url", "", "company website URL (required)")
	discoverCmd.Flags().StringVar(&discoverName, "name", "", "company name (required)")
	_ = discoverCmd.MarkFlagRequired("url")
	_ = discoverCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(discoverCmd)
}
