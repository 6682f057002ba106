package exclusive

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SaveReport writes the three report files for a run: the full report,
// the exclusives list, and the brand frequency tally. monthTag shapes
// the file names ("2025-07").
func SaveReport(dir string, report *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "exclusive: create dir %s", dir)
	}

	tag := report.MonthTag
	files := map[string]any{
		"extraction_report_" + tag + ".json":  report,
		"exclusive_articles_" + tag + ".json": report.Exclusives,
		"brand_frequency_" + tag + ".json":    report.BrandFrequency,
	}
	for name, payload := range files {
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return eris.Wrapf(err, "exclusive: marshal %s", name)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "exclusive: write %s", path)
		}
	}

	zap.L().Info("extraction report saved",
		zap.String("dir", dir),
		zap.String("month", report.MonthTag),
	)
	return nil
}
