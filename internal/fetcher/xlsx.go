package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/internal/textutil"
)

// Column headers recognized in article spreadsheets. Matching is folded,
// so accented or capitalized variants work.
var articleColumns = map[string]string{
	"id":         "id",
	"title":      "title",
	"body":       "body",
	"content":    "body",
	"channels":   "channels",
	"view_url":   "view_url",
	"view url":   "view_url",
	"source_url": "source_url",
	"source url": "source_url",
}

var requiredArticleColumns = []string{"id", "title", "body", "channels"}

// ReadArticlesXLSX loads articles from a spreadsheet export (first
// sheet, header row first). Missing URL columns are tolerated with a
// warning; missing required columns fail the load.
func ReadArticlesXLSX(path string) ([]model.Article, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}
	if len(f.Sheets) == 0 || len(f.Sheets[0].Rows) == 0 {
		return nil, eris.Errorf("xlsx: %s has no data", path)
	}
	sheet := f.Sheets[0]

	// Map header positions to canonical column names.
	cols := make(map[string]int)
	for j, cell := range sheet.Rows[0].Cells {
		if name, ok := articleColumns[textutil.Fold(strings.TrimSpace(cell.String()))]; ok {
			if _, dup := cols[name]; !dup {
				cols[name] = j
			}
		}
	}
	for _, name := range requiredArticleColumns {
		if _, ok := cols[name]; !ok {
			return nil, eris.Errorf("xlsx: %s is missing required column %q", path, name)
		}
	}
	for _, name := range []string{"view_url", "source_url"} {
		if _, ok := cols[name]; !ok {
			zap.L().Warn("xlsx: optional column missing, defaulting to empty",
				zap.String("file", path),
				zap.String("column", name),
			)
		}
	}

	cellAt := func(row *xlsx.Row, name string) string {
		j, ok := cols[name]
		if !ok || j >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[j].String())
	}

	var articles []model.Article
	for _, row := range sheet.Rows[1:] {
		a := model.Article{
			ID:        cellAt(row, "id"),
			Title:     cellAt(row, "title"),
			Body:      cellAt(row, "body"),
			Channels:  cellAt(row, "channels"),
			ViewURL:   cellAt(row, "view_url"),
			SourceURL: cellAt(row, "source_url"),
		}
		if a.ID == "" && a.Empty() {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// WriteArticlesXLSX writes an article snapshot, one row per article with
// the canonical header. Used by the fetch command so a feed pull can be
// re-analyzed offline.
func WriteArticlesXLSX(path string, articles []model.Article) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("articles")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range []string{"id", "title", "body", "channels", "view_url", "source_url"} {
		header.AddCell().SetString(name)
	}
	for _, a := range articles {
		row := sheet.AddRow()
		row.AddCell().SetString(a.ID)
		row.AddCell().SetString(a.Title)
		row.AddCell().SetString(a.Body)
		row.AddCell().SetString(a.Channels)
		row.AddCell().SetString(a.ViewURL)
		row.AddCell().SetString(a.SourceURL)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}
