package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/fetcher"
)

var (
	fetchOut     string
	fetchArchive bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the article feed and save a spreadsheet snapshot",
	Long:  "Pulls articles from every configured feed endpoint and writes them to a .xlsx snapshot for offline analysis. With --archive, downloads the monthly archive over FTP instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		out := fetchOut
		if out == "" {
			out = filepath.Join(cfg.Export.Dir,
				"articles_"+time.Now().Format("20060102_150405")+".xlsx")
		}

		if fetchArchive {
			if cfg.Feed.ArchiveURL == "" {
				return eris.New("fetch: no feed.archive_url configured")
			}
			ftp := fetcher.NewFTPFetcher(fetcher.FTPOptions{})
			n, err := ftp.DownloadToFile(ctx, cfg.Feed.ArchiveURL, out)
			if err != nil {
				return err
			}
			zap.L().Info("archive downloaded",
				zap.String("path", out),
				zap.Int64("bytes", n),
			)
			fmt.Println(out)
			return nil
		}

		endpoints, err := fetcher.LoadEndpoints(cfg.Feed.EndpointsFile)
		if err != nil {
			return err
		}
		client := fetcher.NewFeedClient(cfg.Feed)
		articles, err := client.FetchArticles(ctx, endpoints)
		if err != nil {
			return eris.Wrap(err, "fetch feed")
		}

		if err := fetcher.WriteArticlesXLSX(out, articles); err != nil {
			return err
		}

		zap.L().Info("feed snapshot saved",
			zap.String("path", out),
			zap.Int("articles", len(articles)),
		)
		fmt.Println(out)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "output path (default: exports/articles_<timestamp>.xlsx)")
	fetchCmd.Flags().BoolVar(&fetchArchive, "archive", false, "download the monthly archive over FTP")
	rootCmd.AddCommand(fetchCmd)
}
