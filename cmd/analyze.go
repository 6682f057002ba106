package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/classifier"
	"github.com/pressroom-labs/brandwatch-cli/internal/export"
	"github.com/pressroom-labs/brandwatch-cli/internal/fetcher"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

var analyzeInput string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify protagonism tiers for the current article set",
	Long:  "Loads articles from the clipping feed (or a spreadsheet with --input), classifies every article-brand pair, applies the correction pass, and exports the wide-format results sheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initAnalysis(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		articles, err := loadArticles(cmd, analyzeInput)
		if err != nil {
			return err
		}

		run, err := env.Store.CreateRun(ctx, model.RunKindAnalysis)
		if err != nil {
			return err
		}
		if err := env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
			return err
		}

		started := time.Now()
		results, err := env.Classifier.Run(ctx, articles)
		if err != nil {
			_ = env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return eris.Wrap(err, "classify")
		}

		corrections := env.Classifier.Correct(results, articles)
		records := classifier.Aggregate(articles, results)

		exportPath, err := export.WriteRecords(cfg.Export.Dir, records, env.Brands)
		if err != nil {
			_ = env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return err
		}

		stats := env.Classifier.Stats()
		result := &model.RunResult{
			Articles:     len(articles),
			Records:      len(records),
			Corrections:  corrections,
			Failures:     stats.Failures,
			ExportPath:   exportPath,
			DurationSecs: time.Since(started).Seconds(),
		}
		if env.Oracle != nil {
			result.OracleCalls = env.Oracle.Calls()
			result.EstCostUSD = env.Oracle.Usage().EstimateCost(cfg.Oracle.Model)
			env.Oracle.Usage().LogCost(cfg.Oracle.Model, "analyze")
		}
		if err := env.Store.UpdateRunResult(ctx, run.ID, result); err != nil {
			return err
		}

		zap.L().Info("analysis complete",
			zap.String("run", run.ID),
			zap.Int("articles", len(articles)),
			zap.Int("records", len(records)),
			zap.Int("oracle_calls", result.OracleCalls),
			zap.Int("corrections", corrections),
			zap.Int("failures", stats.Failures),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// loadArticles reads the article set from the feed, or from a local
// spreadsheet when an input path is given.
func loadArticles(cmd *cobra.Command, input string) ([]model.Article, error) {
	ctx := cmd.Context()

	if input != "" {
		articles, err := fetcher.ReadArticlesXLSX(input)
		if err != nil {
			return nil, err
		}
		zap.L().Info("articles loaded from spreadsheet",
			zap.String("path", input),
			zap.Int("articles", len(articles)),
		)
		return articles, nil
	}

	return fetchFeedArticles(ctx)
}

// fetchFeedArticles pulls the current article set from every configured
// feed endpoint.
func fetchFeedArticles(ctx context.Context) ([]model.Article, error) {
	endpoints, err := fetcher.LoadEndpoints(cfg.Feed.EndpointsFile)
	if err != nil {
		return nil, err
	}
	client := fetcher.NewFeedClient(cfg.Feed)
	articles, err := client.FetchArticles(ctx, endpoints)
	if err != nil {
		return nil, eris.Wrap(err, "fetch feed")
	}
	return articles, nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "read articles from a .xlsx file instead of the feed")
	rootCmd.AddCommand(analyzeCmd)
}
