// Package mention implements composite-aware brand occurrence counting.
//
// The counting problem: "Acme Capital announced" must not count as a
// mention of "Acme". Go's regexp has no lookarounds, so instead of
// negative lookahead the matcher masks every composite form with a
// non-lexical placeholder before counting whole-word occurrences of the
// base name. Longer composites are masked first so "Acme Capital
// Management" wins over "Acme Capital".
package mention

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/internal/textutil"
)

// MaxOccurrences caps the reported per-pair count. Anything above it
// carries no extra signal for tier assignment.
const MaxOccurrences = 10

// compositeMask replaces a masked composite form. It contains no word
// characters, so a base-name word-boundary pattern can never match
// across it.
const compositeMask = "\x01"

type checkPatterns struct {
	check   model.ContentCheck
	channel *regexp.Regexp
	content *regexp.Regexp
}

type brandPatterns struct {
	base       *regexp.Regexp
	composites []string // folded, longest first
	countForms []*regexp.Regexp
	// asymMask is composites plus the count forms, longest first. Under
	// RuleAsymmetric the count forms are masked before the isolated count
	// so a form's occurrence is never counted twice.
	asymMask []string
	channels []*regexp.Regexp
	// tagForms are the folded tags that canonicalize to this brand's
	// name: the base name plus every channel term, compared whole-tag.
	tagForms []string
	checks   []checkPatterns
}

// Matcher holds the compiled matching state for a fixed brand set.
// Build once at startup; safe for concurrent reads.
type Matcher struct {
	brands []model.BrandSpec
	pats   map[string]*brandPatterns
}

// NewMatcher compiles matching patterns for every brand. Any invalid
// brand spec is a configuration error and aborts startup.
func NewMatcher(brands []model.BrandSpec) (*Matcher, error) {
	m := &Matcher{
		brands: brands,
		pats:   make(map[string]*brandPatterns, len(brands)),
	}
	for _, b := range brands {
		if err := b.Validate(); err != nil {
			return nil, eris.Wrap(err, "mention: invalid brand spec")
		}
		p := &brandPatterns{
			base: textutil.WordPattern(textutil.Fold(b.Name)),
		}
		for _, c := range b.Composites {
			p.composites = append(p.composites, textutil.Fold(c))
		}
		sort.Slice(p.composites, func(i, j int) bool {
			return len(p.composites[i]) > len(p.composites[j])
		})
		p.asymMask = append(p.asymMask, p.composites...)
		for _, c := range b.CountComposites {
			folded := textutil.Fold(c)
			p.countForms = append(p.countForms, textutil.WordPattern(folded))
			p.asymMask = append(p.asymMask, folded)
		}
		sort.Slice(p.asymMask, func(i, j int) bool {
			return len(p.asymMask[i]) > len(p.asymMask[j])
		})
		p.channels = append(p.channels, p.base)
		p.tagForms = append(p.tagForms, textutil.Fold(b.Name))
		for _, term := range b.ChannelTerms {
			p.channels = append(p.channels, textutil.WordPattern(textutil.Fold(term)))
			p.tagForms = append(p.tagForms, textutil.Fold(term))
		}
		for _, cc := range b.ContentChecks {
			p.checks = append(p.checks, checkPatterns{
				check:   cc,
				channel: textutil.WordPattern(textutil.Fold(cc.ChannelTerm)),
				content: textutil.WordPattern(textutil.Fold(cc.ContentTerm)),
			})
		}
		m.pats[b.Name] = p
	}
	return m, nil
}

// Brands returns the configured brand specs in configuration order.
func (m *Matcher) Brands() []model.BrandSpec {
	return m.brands
}

func (m *Matcher) pat(name string) *brandPatterns {
	return m.pats[name]
}

func maskComposites(folded string, composites []string) string {
	for _, c := range composites {
		folded = strings.ReplaceAll(folded, c, compositeMask)
	}
	return folded
}

func saturate(n int) int {
	if n > MaxOccurrences {
		return MaxOccurrences
	}
	return n
}

// Count returns the occurrence count for the brand in title+body under
// the brand's configured match rule, saturated at MaxOccurrences.
func (m *Matcher) Count(b model.BrandSpec, title, body string) int {
	p := m.pat(b.Name)
	if p == nil {
		return 0
	}
	text := textutil.Fold(title + " " + body)

	switch b.EffectiveRule() {
	case model.RuleSimple:
		return saturate(len(p.base.FindAllStringIndex(text, -1)))
	case model.RuleAsymmetric:
		n := len(p.base.FindAllStringIndex(maskComposites(text, p.asymMask), -1))
		for _, form := range p.countForms {
			n += len(form.FindAllStringIndex(text, -1))
		}
		return saturate(n)
	default:
		return saturate(len(p.base.FindAllStringIndex(maskComposites(text, p.composites), -1)))
	}
}

// CompositeCount always counts under the composite-aware default rule,
// ignoring the brand's configured rule. The classifier uses it as the
// confirmation recount before skipping the oracle, and the correction
// pass uses it exclusively.
func (m *Matcher) CompositeCount(b model.BrandSpec, title, body string) int {
	p := m.pat(b.Name)
	if p == nil {
		return 0
	}
	text := textutil.Fold(title + " " + body)
	return saturate(len(p.base.FindAllStringIndex(maskComposites(text, p.composites), -1)))
}

// IsolatedInTitle reports whether the base name appears in the title
// with no composite form present there. An isolated title mention forces
// Dedicated regardless of body counts. RuleSimple brands skip the
// composite check, consistent with how they count.
func (m *Matcher) IsolatedInTitle(b model.BrandSpec, title string) bool {
	p := m.pat(b.Name)
	if p == nil {
		return false
	}
	t := textutil.Fold(title)
	if !p.base.MatchString(t) {
		return false
	}
	if b.EffectiveRule() == model.RuleSimple {
		return true
	}
	for _, c := range p.composites {
		if strings.Contains(t, c) {
			return false
		}
	}
	return true
}

// InChannels is the channel pre-filter: true when any of the brand's
// channel terms (base name implied) occurs whole-word in the cleaned
// channel tags. Pairs that fail this never produce a result.
func (m *Matcher) InChannels(b model.BrandSpec, cleanedTags string) bool {
	p := m.pat(b.Name)
	if p == nil {
		return false
	}
	tags := textutil.Fold(cleanedTags)
	for _, ch := range p.channels {
		if ch.MatchString(tags) {
			return true
		}
	}
	return false
}

// ContentCheckHits returns the brand's content checks that fire for this
// article: channel term present in tags AND content term present in the
// text. Hits translate into a minimum-Citation hint on the oracle prompt.
func (m *Matcher) ContentCheckHits(b model.BrandSpec, cleanedTags, title, body string) []model.ContentCheck {
	p := m.pat(b.Name)
	if p == nil || len(p.checks) == 0 {
		return nil
	}
	tags := textutil.Fold(cleanedTags)
	text := textutil.Fold(title + " " + body)
	var hits []model.ContentCheck
	for _, cp := range p.checks {
		if cp.channel.MatchString(tags) && cp.content.MatchString(text) {
			hits = append(hits, cp.check)
		}
	}
	return hits
}

// NormalizeChannels rewrites raw feed channel tags to canonical brand
// names: each tag equal to a brand's base name or one of its channel
// terms becomes the brand name, duplicates collapse, unknown tags pass
// through untouched. Comparison is whole-tag, so "acme capital"
// canonicalizes to the composite brand, not to "Acme", and tags that
// only contain a brand term (content-check channels among them) are
// left alone for the downstream word-level matching.
func (m *Matcher) NormalizeChannels(raw string) string {
	cleaned := textutil.CleanChannelTags(raw)
	if cleaned == "" {
		return ""
	}

	var out []string
	seen := make(map[string]bool)
	for _, tag := range strings.Split(cleaned, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		canonical := tag
		folded := textutil.Fold(tag)
		for _, b := range m.brands {
			matched := false
			for _, form := range m.pats[b.Name].tagForms {
				if folded == form {
					matched = true
					break
				}
			}
			if matched {
				canonical = b.Name
				break
			}
		}
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	return strings.Join(out, ", ")
}
