package model

import "strings"

// Tier is the protagonism level assigned to a (article, brand) pair.
// The ordering matters: finalized results are only ever upgraded.
type Tier int

const (
	TierNone Tier = iota
	TierCitation
	TierContent
	TierDedicated
)

// AllTiers returns the tiers in ascending order.
func AllTiers() []Tier {
	return []Tier{TierNone, TierCitation, TierContent, TierDedicated}
}

func (t Tier) String() string {
	switch t {
	case TierCitation:
		return "citation"
	case TierContent:
		return "content"
	case TierDedicated:
		return "dedicated"
	default:
		return "none"
	}
}

// Label returns the display form used in exported spreadsheets.
func (t Tier) Label() string {
	switch t {
	case TierCitation:
		return "Citation"
	case TierContent:
		return "Content"
	case TierDedicated:
		return "Dedicated"
	default:
		return "None"
	}
}

// ParseTier parses a tier label. It tolerates surrounding whitespace,
// trailing punctuation, and any casing, because oracle responses are
// free text. The second return is false for anything unrecognized.
func ParseTier(s string) (Tier, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	cleaned = strings.Trim(cleaned, `."'():`)
	switch cleaned {
	case "none":
		return TierNone, true
	case "citation":
		return TierCitation, true
	case "content":
		return TierContent, true
	case "dedicated":
		return TierDedicated, true
	}
	return TierNone, false
}

// Provenance records which stage produced a result's tier.
type Provenance string

const (
	ProvenanceRule          Provenance = "rule"
	ProvenanceTitleOverride Provenance = "title_override"
	ProvenanceOracle        Provenance = "oracle"
	ProvenanceCorrected     Provenance = "corrected"
)

// ClassificationResult is the outcome for one (article, brand) pair.
type ClassificationResult struct {
	ArticleID     string     `json:"article_id"`
	Brand         string     `json:"brand"`
	Tier          Tier       `json:"tier"`
	Occurrences   int        `json:"occurrences"`
	Spokespersons []string   `json:"spokespersons,omitempty"`
	Provenance    Provenance `json:"provenance"`
	Failed        bool       `json:"failed,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
}

// Valid reports whether the result carries a usable tier above None.
func (r ClassificationResult) Valid() bool {
	return !r.Failed && r.Tier != TierNone
}

// OutcomeLabel returns the spreadsheet cell text for this result.
func (r ClassificationResult) OutcomeLabel() string {
	if r.Failed {
		return "Error"
	}
	return r.Tier.Label()
}
