// Package classifier assigns a protagonism tier to every (article,
// brand) pair that survives the channel pre-filter. Deterministic rules
// resolve nearly every pair; the oracle handles the configured ambiguous
// remainder, and a correction pass reconsiders None and failed outcomes
// once the full article set is done.
package classifier

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/mention"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/internal/spokesperson"
)

// Tier thresholds on the occurrence count.
const (
	dedicatedThreshold = 5
	contentThreshold   = 3
)

// Stats summarizes one classification run.
type Stats struct {
	Articles             int
	Skipped              int // empty title+body
	FilteredPairs        int // channel pre-filter misses
	Results              int
	RuleResolved         int
	OracleResolved       int
	Failures             int
	SpokespersonUpgrades int
	Corrections          int
}

// Classifier runs the tier state machine. Articles are processed
// strictly sequentially, brands strictly in configured order.
type Classifier struct {
	matcher  *mention.Matcher
	registry *spokesperson.Registry
	oracle   Oracle
	stats    Stats
}

// New builds a Classifier. The oracle may be nil when every configured
// brand resolves deterministically; a nil oracle fails any pair that
// would need one.
func New(matcher *mention.Matcher, registry *spokesperson.Registry, oracle Oracle) *Classifier {
	return &Classifier{
		matcher:  matcher,
		registry: registry,
		oracle:   oracle,
	}
}

// Stats returns counters accumulated so far.
func (c *Classifier) Stats() Stats {
	return c.stats
}

// ResetStats clears the accumulated counters. Long-lived callers reset
// before each run so reported stats cover that run only.
func (c *Classifier) ResetStats() {
	c.stats = Stats{}
}

// tierForCount maps an occurrence count to its deterministic tier.
func tierForCount(n int) model.Tier {
	switch {
	case n >= dedicatedThreshold:
		return model.TierDedicated
	case n >= contentThreshold:
		return model.TierContent
	case n >= 1:
		return model.TierCitation
	}
	return model.TierNone
}

// Run classifies every article. Per-article failures are logged and do
// not stop the run; the error return is reserved for context
// cancellation.
func (c *Classifier) Run(ctx context.Context, articles []model.Article) ([]model.ClassificationResult, error) {
	var all []model.ClassificationResult
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return all, eris.Wrap(err, "classifier: run canceled")
		}
		results := c.ClassifyArticle(ctx, a)
		// Commit only after the article's full brand loop completed.
		all = append(all, results...)
	}
	return all, nil
}

// ClassifyArticle runs the brand loop for one article and returns one
// result per brand that passed the channel pre-filter.
func (c *Classifier) ClassifyArticle(ctx context.Context, a model.Article) []model.ClassificationResult {
	c.stats.Articles++
	if a.Empty() {
		c.stats.Skipped++
		zap.L().Info("skipping article without text", zap.String("article", a.ID))
		return nil
	}

	tags := c.matcher.NormalizeChannels(a.Channels)

	var candidates []model.BrandSpec
	for _, b := range c.matcher.Brands() {
		if c.matcher.InChannels(b, tags) {
			candidates = append(candidates, b)
		} else {
			c.stats.FilteredPairs++
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// One registry scan per article, shared by every tracking brand.
	var mentions []string
	for _, b := range candidates {
		if b.TracksSpokespersons {
			mentions = c.registry.FindMentions(a.Title, a.Body)
			break
		}
	}

	results := make([]model.ClassificationResult, 0, len(candidates))
	for _, b := range candidates {
		r := c.classifyPair(ctx, a, b, tags, mentions)
		c.stats.Results++
		if r.Failed {
			c.stats.Failures++
		}
		results = append(results, r)
	}
	return results
}

func (c *Classifier) classifyPair(ctx context.Context, a model.Article, b model.BrandSpec, tags string, mentions []string) model.ClassificationResult {
	r := model.ClassificationResult{
		ArticleID:  a.ID,
		Brand:      b.Name,
		Provenance: model.ProvenanceRule,
	}
	r.Occurrences = c.matcher.Count(b, a.Title, a.Body)
	r.Tier = tierForCount(r.Occurrences)

	if r.Tier >= model.TierCitation && b.TracksSpokespersons && len(mentions) > 0 {
		r.Spokespersons = mentions
		if r.Tier == model.TierCitation {
			// A named spokesperson in passing coverage means the brand is
			// actually speaking in the piece.
			r.Tier = model.TierContent
			c.stats.SpokespersonUpgrades++
		}
	}

	isolated := c.matcher.IsolatedInTitle(b, a.Title)
	if isolated && r.Tier < model.TierDedicated {
		r.Tier = model.TierDedicated
		r.Provenance = model.ProvenanceTitleOverride
	}

	if r.Tier > model.TierNone || isolated {
		c.stats.RuleResolved++
		return r
	}

	// Zero count, nothing in the title. Confirm with the generic
	// composite-aware recount; only a divergence or an explicit opt-in
	// sends the pair to the oracle.
	recount := c.matcher.CompositeCount(b, a.Title, a.Body)
	if recount == 0 && !b.OracleFallback {
		c.stats.RuleResolved++
		return r
	}

	return c.consultOracle(ctx, a, b, tags, r)
}

func (c *Classifier) consultOracle(ctx context.Context, a model.Article, b model.BrandSpec, tags string, r model.ClassificationResult) model.ClassificationResult {
	r.Provenance = model.ProvenanceOracle

	if c.oracle == nil {
		r.Failed = true
		r.FailureReason = "oracle not configured"
		zap.L().Error("pair needs oracle but none is configured",
			zap.String("article", a.ID),
			zap.String("brand", b.Name),
		)
		return r
	}

	var hints OracleHints
	if len(c.matcher.ContentCheckHits(b, tags, a.Title, a.Body)) > 0 {
		hints.MinTier = model.TierCitation
	}

	tier, err := c.oracle.ClassifyTier(ctx, a, b, hints)
	if err != nil {
		r.Failed = true
		r.FailureReason = err.Error()
		zap.L().Warn("oracle classification failed",
			zap.String("article", a.ID),
			zap.String("brand", b.Name),
			zap.Error(err),
		)
		return r
	}

	r.Tier = tier
	c.stats.OracleResolved++
	return r
}
