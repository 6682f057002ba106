package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "brandwatch",
	Short: "Brand protagonism analysis for news clipping feeds",
	Long:  "Fetches clipped news articles, counts brand mentions with composite-aware matching, classifies protagonism tiers via rules and a Claude fallback, and exports wide-format spreadsheets.",
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
