package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierOrdering(t *testing.T) {
	assert.True(t, TierNone < TierCitation)
	assert.True(t, TierCitation < TierContent)
	assert.True(t, TierContent < TierDedicated)
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
		ok   bool
	}{
		{"dedicated", TierDedicated, true},
		{"Dedicated", TierDedicated, true},
		{"  CONTENT. ", TierContent, true},
		{`"citation"`, TierCitation, true},
		{"none", TierNone, true},
		{"None.", TierNone, true},
		{"protagonist", TierNone, false},
		{"", TierNone, false},
		{"the tier is citation because", TierNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseTier(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "Dedicated", ClassificationResult{Tier: TierDedicated}.OutcomeLabel())
	assert.Equal(t, "None", ClassificationResult{}.OutcomeLabel())
	assert.Equal(t, "Error", ClassificationResult{Failed: true, Tier: TierContent}.OutcomeLabel())
}

func TestResultValid(t *testing.T) {
	assert.True(t, ClassificationResult{Tier: TierCitation}.Valid())
	assert.False(t, ClassificationResult{Tier: TierNone}.Valid())
	assert.False(t, ClassificationResult{Tier: TierContent, Failed: true}.Valid())
}

func TestBrandSpecValidate(t *testing.T) {
	assert.NoError(t, BrandSpec{Name: "Acme"}.Validate())
	assert.NoError(t, BrandSpec{Name: "Acme", Rule: RuleSimple}.Validate())
	assert.Error(t, BrandSpec{}.Validate())
	assert.Error(t, BrandSpec{Name: "Acme", Rule: "fuzzy"}.Validate())
	assert.Error(t, BrandSpec{Name: "ACM", Rule: RuleAsymmetric}.Validate())
	assert.NoError(t, BrandSpec{
		Name:            "ACM",
		Rule:            RuleAsymmetric,
		CountComposites: []string{"Acme ACM"},
	}.Validate())
	assert.Error(t, BrandSpec{
		Name:          "Acme",
		ContentChecks: []ContentCheck{{ChannelTerm: "acme news"}},
	}.Validate())
}

func TestEffectiveRule(t *testing.T) {
	assert.Equal(t, RuleComposite, BrandSpec{Name: "Acme"}.EffectiveRule())
	assert.Equal(t, RuleSimple, BrandSpec{Name: "Acme", Rule: RuleSimple}.EffectiveRule())
}
