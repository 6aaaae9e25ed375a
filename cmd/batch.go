package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/execdiscovery/internal/model"
)

var batchFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run discovery for a CSV of companies (name,url per row)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		companies, err := readCompaniesCSV(batchFile)
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			return eris.New("batch: no companies in input")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := buildPipeline(st)
		if err != nil {
			return err
		}

		zap.L().Info("batch: starting",
			zap.Int("companies", len(companies)),
			zap.Int("max_concurrent", cfg.Batch.MaxConcurrentCompanies),
		)

		// Each company's run is independent; only the registry client's
		// shared rate limiter constrains cross-company concurrency.
		results := make([]*model.DiscoveryResult, len(companies))
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentCompanies)

		for i, company := range companies {
			i, company := i, company
			g.Go(func() error {
				result, runErr := p.Run(gCtx, company)
				if runErr != nil {
					zap.L().Error("batch: company failed",
						zap.String("company", company.Name),
						zap.Error(runErr),
					)
					return nil
				}
				results[i] = result
				return nil
			})
		}
		_ = g.Wait()

		var succeeded []*model.DiscoveryResult
		for _, r := range results {
			if r != nil {
				succeeded = append(succeeded, r)
			}
		}

		zap.L().Info("batch: complete",
			zap.Int("succeeded", len(succeeded)),
			zap.Int("failed", len(companies)-len(succeeded)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(succeeded)
	},
}

// readCompaniesCSV parses rows of "name,url". A header row is skipped when
// its first cell reads "name".
func readCompaniesCSV(path string) ([]model.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var companies []model.Company
	for {
		row, readErr := r.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, eris.Wrap(readErr, "batch: read csv")
		}
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		url := strings.TrimSpace(row[1])
		if name == "" || url == "" || strings.EqualFold(name, "name") {
			continue
		}
		companies = append(companies, model.Company{Name: name, URL: url})
	}
	return companies, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "CSV file of companies (required)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
