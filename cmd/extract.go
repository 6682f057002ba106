package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/exclusive"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/pkg/anthropic"
)

var (
	extractInput string
	extractMonth string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Detect articles that mention exactly one group brand",
	Long:  "Runs the exclusivity extraction pass over the article set: an LLM lists the brands present in each article, noise is filtered out, and articles naming exactly one tracked group brand are reported.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Oracle.Key == "" {
			return eris.New("extract: oracle.key is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		var cache exclusive.ProcessedCache
		if cfg.Extract.CacheEnabled {
			cache = st
		}

		extractor, err := exclusive.New(
			anthropic.NewClient(cfg.Oracle.Key),
			cache,
			cfg.Extract.GroupBrands,
			cfg.Oracle,
		)
		if err != nil {
			return err
		}

		articles, err := loadArticles(cmd, extractInput)
		if err != nil {
			return err
		}

		month := extractMonth
		if month == "" {
			month = time.Now().Format("2006-01")
		}

		run, err := st.CreateRun(ctx, model.RunKindExtraction)
		if err != nil {
			return err
		}
		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
			return err
		}

		started := time.Now()
		report, err := extractor.Run(ctx, articles, month)
		if err != nil {
			_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return err
		}

		if err := exclusive.SaveReport(cfg.Extract.OutputDir, report); err != nil {
			_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return err
		}

		result := &model.RunResult{
			Articles:     report.TotalArticles,
			Records:      len(report.Exclusives),
			OracleCalls:  report.Processed,
			Failures:     report.Failures,
			DurationSecs: time.Since(started).Seconds(),
		}
		if err := st.UpdateRunResult(ctx, run.ID, result); err != nil {
			return err
		}

		zap.L().Info("extraction complete",
			zap.String("run", run.ID),
			zap.String("month", month),
			zap.Int("exclusives", len(report.Exclusives)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractInput, "input", "", "read articles from a .xlsx file instead of the feed")
	extractCmd.Flags().StringVar(&extractMonth, "month", "", "month tag for report file names (default: current month)")
	rootCmd.AddCommand(extractCmd)
}
