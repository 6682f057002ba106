package classifier

import (
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

// Aggregate folds per-pair results into one wide record per article, in
// input article order. Articles where every brand came out None or
// failed are dropped: they carry no protagonism signal worth exporting.
func Aggregate(articles []model.Article, results []model.ClassificationResult) []model.Record {
	byArticle := make(map[string]map[string]model.ClassificationResult)
	for _, r := range results {
		m, ok := byArticle[r.ArticleID]
		if !ok {
			m = make(map[string]model.ClassificationResult)
			byArticle[r.ArticleID] = m
		}
		m[r.Brand] = r
	}

	var records []model.Record
	for _, a := range articles {
		rs, ok := byArticle[a.ID]
		if !ok {
			continue
		}
		keep := false
		for _, r := range rs {
			if r.Valid() {
				keep = true
				break
			}
		}
		if !keep {
			continue
		}
		records = append(records, model.Record{
			ArticleID: a.ID,
			ViewURL:   a.ViewURL,
			SourceURL: a.SourceURL,
			Title:     a.Title,
			Results:   rs,
		})
	}
	return records
}
