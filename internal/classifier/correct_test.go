package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

func TestCorrectRecoversFailedResult(t *testing.T) {
	c := newTestClassifier(t, nil)

	a := article("a1", "Quarterly wrap", "Acme grew. Acme hired. Acme expanded.", "acme")
	results := []model.ClassificationResult{{
		ArticleID:     "a1",
		Brand:         "Acme",
		Failed:        true,
		FailureReason: "oracle timeout",
		Provenance:    model.ProvenanceOracle,
	}}

	n := c.Correct(results, []model.Article{a})
	assert.Equal(t, 1, n)

	r := results[0]
	assert.False(t, r.Failed)
	assert.Empty(t, r.FailureReason)
	assert.Equal(t, model.TierContent, r.Tier)
	assert.Equal(t, 3, r.Occurrences)
	assert.Equal(t, model.ProvenanceCorrected, r.Provenance)
}

func TestCorrectAppliesTitleOverride(t *testing.T) {
	c := newTestClassifier(t, nil)

	a := article("a1", "Acme expands south", "The move was expected.", "acme")
	results := []model.ClassificationResult{{
		ArticleID: "a1", Brand: "Acme", Failed: true,
	}}

	require.Equal(t, 1, c.Correct(results, []model.Article{a}))
	assert.Equal(t, model.TierDedicated, results[0].Tier)
}

func TestCorrectAppliesSpokespersonUpgrade(t *testing.T) {
	c := newTestClassifier(t, nil)

	a := article("a1", "Market note", "Acme fell, said Maria Souza.", "acme")
	results := []model.ClassificationResult{{
		ArticleID: "a1", Brand: "Acme", Tier: model.TierNone,
	}}

	require.Equal(t, 1, c.Correct(results, []model.Article{a}))
	assert.Equal(t, model.TierContent, results[0].Tier)
	assert.Equal(t, []string{"Maria Souza"}, results[0].Spokespersons)
}

func TestCorrectLeavesUnrecoverableFailed(t *testing.T) {
	c := newTestClassifier(t, nil)

	// Only the composite form appears: the recount stays zero and a
	// failed outcome is never coerced to None.
	a := article("a1", "Fund news", "Acme Capital raised money.", "acme")
	results := []model.ClassificationResult{{
		ArticleID: "a1", Brand: "Acme", Failed: true, FailureReason: "oracle timeout",
	}}

	assert.Equal(t, 0, c.Correct(results, []model.Article{a}))
	assert.True(t, results[0].Failed)
	assert.Equal(t, "oracle timeout", results[0].FailureReason)
}

func TestCorrectSkipsValidResults(t *testing.T) {
	c := newTestClassifier(t, nil)

	a := article("a1", "Acme expands", "Acme grew.", "acme")
	results := []model.ClassificationResult{{
		ArticleID: "a1", Brand: "Acme", Tier: model.TierCitation,
		Provenance: model.ProvenanceRule, Occurrences: 1,
	}}

	assert.Equal(t, 0, c.Correct(results, []model.Article{a}))
	assert.Equal(t, model.ProvenanceRule, results[0].Provenance)
}

func TestCorrectIsIdempotent(t *testing.T) {
	c := newTestClassifier(t, nil)

	articles := []model.Article{
		article("a1", "Quarterly wrap", "Acme grew. Acme hired.", "acme"),
		article("a2", "Fund news", "Acme Capital raised money.", "acme"),
	}
	results := []model.ClassificationResult{
		{ArticleID: "a1", Brand: "Acme", Failed: true},
		{ArticleID: "a2", Brand: "Acme", Tier: model.TierNone},
	}

	assert.Equal(t, 1, c.Correct(results, articles))
	after := make([]model.ClassificationResult, len(results))
	copy(after, results)

	assert.Equal(t, 0, c.Correct(results, articles))
	assert.Equal(t, after, results)
}

func TestCorrectMissingArticleText(t *testing.T) {
	c := newTestClassifier(t, nil)

	results := []model.ClassificationResult{{
		ArticleID: "ghost", Brand: "Acme", Failed: true,
	}}
	assert.Equal(t, 0, c.Correct(results, nil))
	assert.True(t, results[0].Failed)
}
