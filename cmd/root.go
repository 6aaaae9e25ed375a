package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/execdiscovery/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "execdiscovery",
	Short: "Executive discovery and contact attribution pipeline",
	Long:  "Fetches small-business websites, extracts executive names and contact details, reconciles against the Companies House register, and outputs a confidence-scored executive list.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
