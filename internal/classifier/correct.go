package classifier

import (
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

// Correct reconsiders every None or failed result deterministically: it
// recomputes the composite-aware count and the title isolation from the
// article text and reassigns the tier when they disagree with the stored
// outcome. Results are modified in place; the return value is the number
// of results changed.
//
// The pass is idempotent: a corrected result is no longer None or
// failed, and a result it leaves untouched recomputes identically on a
// second run.
func (c *Classifier) Correct(results []model.ClassificationResult, articles []model.Article) int {
	byID := make(map[string]model.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	byBrand := make(map[string]model.BrandSpec)
	for _, b := range c.matcher.Brands() {
		byBrand[b.Name] = b
	}

	corrected := 0
	for i := range results {
		r := &results[i]
		if r.Valid() {
			continue
		}
		a, ok := byID[r.ArticleID]
		if !ok {
			zap.L().Warn("correction: article text not available",
				zap.String("article", r.ArticleID),
			)
			continue
		}
		b, ok := byBrand[r.Brand]
		if !ok {
			continue
		}

		count := c.matcher.CompositeCount(b, a.Title, a.Body)
		tier := tierForCount(count)
		isolated := c.matcher.IsolatedInTitle(b, a.Title)
		if isolated {
			tier = model.TierDedicated
		}
		if tier == model.TierNone {
			// Nothing recoverable. A failed result stays failed rather
			// than being coerced to None.
			continue
		}

		var spokes []string
		if b.TracksSpokespersons {
			if m := c.registry.FindMentions(a.Title, a.Body); len(m) > 0 {
				spokes = m
				if tier == model.TierCitation {
					tier = model.TierContent
					c.stats.SpokespersonUpgrades++
				}
			}
		}

		zap.L().Info("corrected result",
			zap.String("article", r.ArticleID),
			zap.String("brand", r.Brand),
			zap.String("from", r.OutcomeLabel()),
			zap.String("to", tier.Label()),
			zap.Int("occurrences", count),
		)

		r.Tier = tier
		r.Occurrences = count
		r.Spokespersons = spokes
		r.Provenance = model.ProvenanceCorrected
		r.Failed = false
		r.FailureReason = ""
		corrected++
	}

	c.stats.Corrections += corrected
	return corrected
}
