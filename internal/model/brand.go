package model

import "github.com/rotisserie/eris"

// MatchRule selects how occurrences of a brand name are counted.
type MatchRule string

const (
	// RuleComposite counts whole-word occurrences of the base name after
	// masking composite brand names ("Acme Capital" does not count for
	// "Acme"). This is the default.
	RuleComposite MatchRule = "composite"

	// RuleSimple counts plain whole-word occurrences and ignores the
	// composite list entirely.
	RuleSimple MatchRule = "simple"

	// RuleAsymmetric counts isolated occurrences of the base name plus
	// occurrences of the forms listed in count_composites. Used for
	// ticker-like short names that also appear inside a parent brand's
	// composite form.
	RuleAsymmetric MatchRule = "asymmetric"
)

// AllMatchRules returns the supported rules.
func AllMatchRules() []MatchRule {
	return []MatchRule{RuleComposite, RuleSimple, RuleAsymmetric}
}

// ContentCheck pairs a channel tag term with a content term. When the
// channel term appears in an article's channel tags and the content term
// appears in its text, the oracle prompt carries a minimum-Citation hint.
type ContentCheck struct {
	ChannelTerm string `yaml:"channel_term"`
	ContentTerm string `yaml:"content_term"`
}

// BrandSpec is the per-brand configuration driving matching and
// classification. Loaded once from brands.yaml and treated as immutable.
type BrandSpec struct {
	// Name is the canonical display name; also the base matching term.
	Name string `yaml:"name"`

	// Rule defaults to RuleComposite when empty.
	Rule MatchRule `yaml:"rule"`

	// Composites are longer brand names containing the base name, whose
	// occurrences must not count for this brand ("Acme Capital").
	Composites []string `yaml:"composites"`

	// CountComposites lists composite forms whose occurrences DO count
	// toward this brand. Only meaningful with RuleAsymmetric.
	CountComposites []string `yaml:"count_composites"`

	// ChannelTerms are alias tags under which the clipping provider files
	// this brand's coverage. The base name is always implied.
	ChannelTerms []string `yaml:"channel_terms"`

	// TracksSpokespersons enables the spokesperson upgrade for this brand.
	TracksSpokespersons bool `yaml:"spokespersons"`

	// OracleFallback sends zero-count pairs to the oracle instead of
	// assigning None directly. Off by default.
	OracleFallback bool `yaml:"oracle_fallback"`

	// ContentChecks drive the minimum-Citation oracle hint.
	ContentChecks []ContentCheck `yaml:"content_checks"`
}

// Validate checks a single brand spec for configuration errors.
func (b BrandSpec) Validate() error {
	if b.Name == "" {
		return eris.New("brand: empty name")
	}
	switch b.Rule {
	case "", RuleComposite, RuleSimple:
	case RuleAsymmetric:
		if len(b.CountComposites) == 0 {
			return eris.Errorf("brand %s: asymmetric rule requires count_composites", b.Name)
		}
	default:
		return eris.Errorf("brand %s: unknown match rule %q", b.Name, b.Rule)
	}
	for _, cc := range b.ContentChecks {
		if cc.ChannelTerm == "" || cc.ContentTerm == "" {
			return eris.Errorf("brand %s: content check needs both channel_term and content_term", b.Name)
		}
	}
	return nil
}

// EffectiveRule resolves the empty rule to the default.
func (b BrandSpec) EffectiveRule() MatchRule {
	if b.Rule == "" {
		return RuleComposite
	}
	return b.Rule
}
