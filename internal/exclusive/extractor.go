// Package exclusive detects articles that mention exactly one tracked
// group brand and no other brand at all. It is a secondary consumer of
// the article feed: an LLM extracts the brand names present, local
// filters strip noise, and a content-hash cache keeps reprocessing of
// unchanged articles free.
package exclusive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pressroom-labs/brandwatch-cli/internal/config"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/internal/resilience"
	"github.com/pressroom-labs/brandwatch-cli/internal/textutil"
	"github.com/pressroom-labs/brandwatch-cli/pkg/anthropic"
)

// ProcessedCache is the content-hash cache the extractor consults before
// paying for an extraction. Append-only.
type ProcessedCache interface {
	IsProcessed(ctx context.Context, hash string) (bool, error)
	MarkProcessed(ctx context.Context, hash string) error
}

// extractionRubric asks for a strict JSON array so parsing stays dumb.
const extractionRubric = `You extract organization names from news articles.
List every company or brand name that appears in the article text.
Reply with a JSON array of strings and nothing else. Use the shortest
common form of each name. Reply [] if no company or brand appears.`

// genericTerms are institution names the extractor keeps returning that
// are never brands in this corpus.
var genericTerms = map[string]bool{
	"government":      true,
	"central bank":    true,
	"federal reserve": true,
	"congress":        true,
	"senate":          true,
	"stock exchange":  true,
	"stock market":    true,
}

// Extractor runs the exclusivity detection pass.
type Extractor struct {
	client    anthropic.Client
	cache     ProcessedCache
	group     map[string]string // folded name → display name
	groupList []string
	modelID   string
	maxTokens int64
	timeout   time.Duration
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
}

// New builds an Extractor. cache may be nil to disable caching.
func New(client anthropic.Client, cache ProcessedCache, groupBrands []string, cfg config.OracleConfig) (*Extractor, error) {
	if len(groupBrands) == 0 {
		return nil, eris.New("exclusive: no group brands configured")
	}
	group := make(map[string]string, len(groupBrands))
	for _, b := range groupBrands {
		group[textutil.Fold(b)] = b
	}

	throttle := time.Duration(cfg.ThrottleMillis) * time.Millisecond
	if throttle <= 0 {
		throttle = 500 * time.Millisecond
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{
		client:    client,
		cache:     cache,
		group:     group,
		groupList: groupBrands,
		modelID:   cfg.Model,
		maxTokens: 1024,
		timeout:   timeout,
		limiter:   rate.NewLimiter(rate.Every(throttle), 1),
		retry: resilience.RetryConfig{
			MaxAttempts: 2,
			Backoff:     time.Duration(cfg.RetryDelaySecs) * time.Second,
			ShouldRetry: func(err error) bool {
				if status := anthropic.StatusOf(err); status != 0 {
					return resilience.IsTransientHTTPStatus(status)
				}
				return resilience.IsTransient(err)
			},
			OnRetry: resilience.RetryLogger("exclusive", "extract_brands"),
		},
	}, nil
}

// ContentHash identifies an article by its text, so edits reprocess but
// unchanged refeeds do not.
func ContentHash(title, body string) string {
	sum := sha256.Sum256([]byte(title + "\n" + body))
	return hex.EncodeToString(sum[:])
}

// ExclusiveArticle is one detected exclusivity hit.
type ExclusiveArticle struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	Brand     string `json:"brand"`
	ViewURL   string `json:"view_url,omitempty"`
}

// Report summarizes one extraction run.
type Report struct {
	MonthTag       string             `json:"month_tag"`
	ExtractedAt    time.Time          `json:"extracted_at"`
	GroupBrands    []string           `json:"group_brands"`
	TotalArticles  int                `json:"total_articles"`
	Processed      int                `json:"processed"`
	SkippedCached  int                `json:"skipped_cached"`
	SkippedEmpty   int                `json:"skipped_empty"`
	Failures       int                `json:"failures"`
	Exclusives     []ExclusiveArticle `json:"exclusives"`
	BrandFrequency map[string]int     `json:"brand_frequency"`
}

// Run processes the article set sequentially. Per-article failures are
// logged and counted, not fatal.
func (e *Extractor) Run(ctx context.Context, articles []model.Article, monthTag string) (*Report, error) {
	report := &Report{
		MonthTag:       monthTag,
		ExtractedAt:    time.Now().UTC(),
		GroupBrands:    e.groupList,
		TotalArticles:  len(articles),
		BrandFrequency: make(map[string]int),
	}

	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return report, eris.Wrap(err, "exclusive: run canceled")
		}
		if a.Empty() {
			report.SkippedEmpty++
			continue
		}

		hash := ContentHash(a.Title, a.Body)
		if e.cache != nil {
			seen, err := e.cache.IsProcessed(ctx, hash)
			if err != nil {
				return report, eris.Wrap(err, "exclusive: cache lookup")
			}
			if seen {
				report.SkippedCached++
				continue
			}
		}

		brands, err := e.extractBrands(ctx, a)
		if err != nil {
			report.Failures++
			zap.L().Warn("brand extraction failed",
				zap.String("article", a.ID),
				zap.Error(err),
			)
			continue
		}
		report.Processed++

		brands = FilterBrands(brands)
		for _, b := range brands {
			report.BrandFrequency[b]++
		}
		if display, ok := e.checkExclusive(brands); ok {
			report.Exclusives = append(report.Exclusives, ExclusiveArticle{
				ArticleID: a.ID,
				Title:     a.Title,
				Brand:     display,
				ViewURL:   a.ViewURL,
			})
		}

		if e.cache != nil {
			if err := e.cache.MarkProcessed(ctx, hash); err != nil {
				return report, eris.Wrap(err, "exclusive: cache mark")
			}
		}
	}

	zap.L().Info("exclusivity extraction complete",
		zap.String("month", monthTag),
		zap.Int("articles", report.TotalArticles),
		zap.Int("exclusives", len(report.Exclusives)),
		zap.Int("failures", report.Failures),
	)
	return report, nil
}

func (e *Extractor) extractBrands(ctx context.Context, a model.Article) ([]string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "exclusive: throttle wait")
	}

	req := anthropic.MessageRequest{
		Model:     e.modelID,
		MaxTokens: e.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(extractionRubric),
		Messages: []anthropic.Message{
			{Role: "user", Content: "Title: " + a.Title + "\n\nArticle:\n" + a.Body},
		},
	}

	resp, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		// Each attempt gets the full request timeout; a retry must not
		// inherit a budget already spent by the first attempt.
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		return e.client.CreateMessage(attemptCtx, req)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "exclusive: extract %s", a.ID)
	}

	var brands []string
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &brands); err != nil {
		return nil, eris.Wrapf(err, "exclusive: parse response for %s", a.ID)
	}
	return brands, nil
}

// cleanJSON strips markdown code fences the model sometimes adds.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// FilterBrands drops extraction noise: blanks, URLs and emails, generic
// institutions, entries without letters, and duplicates. Order is
// preserved.
func FilterBrands(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, b := range raw {
		b = strings.TrimSpace(b)
		if len(b) < 2 || len(b) > 60 {
			continue
		}
		folded := textutil.Fold(b)
		if strings.Contains(folded, "http") || strings.Contains(folded, "www.") || strings.Contains(b, "@") {
			continue
		}
		if genericTerms[folded] {
			continue
		}
		hasLetter := false
		for _, r := range b {
			if unicode.IsLetter(r) {
				hasLetter = true
				break
			}
		}
		if !hasLetter {
			continue
		}
		if seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, b)
	}
	return out
}

// checkExclusive reports whether the filtered brand list is exactly one
// tracked group brand and nothing else. Returns the canonical display
// name on a hit.
func (e *Extractor) checkExclusive(brands []string) (string, bool) {
	if len(brands) != 1 {
		return "", false
	}
	display, ok := e.group[textutil.Fold(brands[0])]
	return display, ok
}
