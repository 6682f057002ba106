// Package export writes the aggregated wide-format results spreadsheet.
package export

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

// CanonicalName is the stable "latest results" file name next to the
// timestamped snapshots.
const CanonicalName = "protagonism_results.xlsx"

// WriteRecords writes one row per record with a fixed column layout:
// identifying fields, then per configured brand its tier label,
// spokesperson mentions (tracking brands only), and occurrence count.
// Two files are produced in dir: a timestamped snapshot and the
// canonical latest file. Returns the snapshot path.
func WriteRecords(dir string, records []model.Record, brands []model.BrandSpec) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "export: create dir %s", dir)
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("results")
	if err != nil {
		return "", eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range []string{"ID", "View URL", "Source URL", "Title"} {
		header.AddCell().SetString(name)
	}
	for _, b := range brands {
		header.AddCell().SetString("Protagonism " + b.Name)
		if b.TracksSpokespersons {
			header.AddCell().SetString("Spokespersons " + b.Name)
		}
		header.AddCell().SetString("Mentions " + b.Name)
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.ArticleID)
		row.AddCell().SetString(rec.ViewURL)
		row.AddCell().SetString(rec.SourceURL)
		row.AddCell().SetString(rec.Title)
		for _, b := range brands {
			r, ok := rec.Results[b.Name]
			if !ok {
				// Pair excluded by the channel pre-filter: blank cells.
				row.AddCell()
				if b.TracksSpokespersons {
					row.AddCell()
				}
				row.AddCell()
				continue
			}
			row.AddCell().SetString(r.OutcomeLabel())
			if b.TracksSpokespersons {
				row.AddCell().SetString(strings.Join(r.Spokespersons, "; "))
			}
			row.AddCell().SetString(strconv.Itoa(r.Occurrences))
		}
	}

	snapshot := filepath.Join(dir,
		"protagonism_results_"+time.Now().Format("20060102_150405")+".xlsx")
	if err := f.Save(snapshot); err != nil {
		return "", eris.Wrapf(err, "export: save %s", snapshot)
	}
	canonical := filepath.Join(dir, CanonicalName)
	if err := f.Save(canonical); err != nil {
		return "", eris.Wrapf(err, "export: save %s", canonical)
	}

	zap.L().Info("results exported",
		zap.String("snapshot", snapshot),
		zap.Int("records", len(records)),
	)
	return snapshot, nil
}
