package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/pressroom-labs/brandwatch-cli/internal/config"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/internal/resilience"
	"github.com/pressroom-labs/brandwatch-cli/pkg/anthropic"
)

// OracleHints carries deterministic context into the oracle prompt.
type OracleHints struct {
	// MinTier, when above None, tells the oracle the answer cannot be
	// below this tier. Driven by per-brand content checks.
	MinTier model.Tier
}

// Oracle resolves a protagonism tier when the deterministic rules cannot.
type Oracle interface {
	ClassifyTier(ctx context.Context, article model.Article, brand model.BrandSpec, hints OracleHints) (model.Tier, error)
}

// ErrMalformedResponse marks an oracle reply that is not one of the four
// tier labels. Malformed replies fail the pair; they are never guessed
// into a tier.
var ErrMalformedResponse = eris.New("oracle: unrecognized tier label")

// tierRubric is the fixed system prompt. It is identical on every call,
// so it ships as a cached system block.
const tierRubric = `You classify how prominently a specific brand features in a news article.
Answer with exactly one word, the tier name:

Dedicated - the article is primarily about the brand.
Content - the brand is a substantial subject of the article, with its own
statements, numbers, or actions discussed.
Citation - the brand is mentioned in passing or quoted briefly.
None - the brand does not actually feature in the article.

A mention of a longer composite brand name that merely contains the
target name does not count as a mention of the target brand. Reply with
one word only: Dedicated, Content, Citation or None.`

// bodyLimit caps the article body sent to the oracle.
const bodyLimit = 8000

// TierOracle implements Oracle over the Anthropic API with a fixed
// request timeout, one retry on transient failure, and a mandatory
// throttle between calls.
type TierOracle struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	retry     resilience.RetryConfig
	limiter   *rate.Limiter

	calls int
	usage anthropic.TokenUsage
}

// NewTierOracle builds a TierOracle from config.
func NewTierOracle(client anthropic.Client, cfg config.OracleConfig) *TierOracle {
	throttle := time.Duration(cfg.ThrottleMillis) * time.Millisecond
	if throttle <= 0 {
		throttle = 500 * time.Millisecond
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 16
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TierOracle{
		client:    client,
		model:     cfg.Model,
		maxTokens: maxTokens,
		timeout:   timeout,
		retry: resilience.RetryConfig{
			MaxAttempts: 2,
			Backoff:     time.Duration(cfg.RetryDelaySecs) * time.Second,
			ShouldRetry: func(err error) bool {
				if status := anthropic.StatusOf(err); status != 0 {
					return resilience.IsTransientHTTPStatus(status)
				}
				return resilience.IsTransient(err)
			},
			OnRetry: resilience.RetryLogger("oracle", "classify_tier"),
		},
		limiter: rate.NewLimiter(rate.Every(throttle), 1),
	}
}

// Calls returns the number of API calls made (excluding retries).
func (o *TierOracle) Calls() int {
	return o.calls
}

// Usage returns accumulated token usage across all calls.
func (o *TierOracle) Usage() anthropic.TokenUsage {
	return o.usage
}

// ResetUsage clears the call counter and token accounting. Long-lived
// callers reset before each run so per-run cost reporting stays honest.
func (o *TierOracle) ResetUsage() {
	o.calls = 0
	o.usage = anthropic.TokenUsage{}
}

func (o *TierOracle) ClassifyTier(ctx context.Context, article model.Article, brand model.BrandSpec, hints OracleHints) (model.Tier, error) {
	// The limiter enforces the minimum spacing between consecutive calls.
	if err := o.limiter.Wait(ctx); err != nil {
		return model.TierNone, eris.Wrap(err, "oracle: throttle wait")
	}

	req := anthropic.MessageRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(tierRubric),
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(article, brand, hints)},
		},
	}

	o.calls++
	resp, err := resilience.DoVal(ctx, o.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		// Each attempt gets the full request timeout; a retry must not
		// inherit a budget already spent by the first attempt.
		attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		return o.client.CreateMessage(attemptCtx, req)
	})
	if err != nil {
		return model.TierNone, eris.Wrapf(err, "oracle: classify %s for %s", article.ID, brand.Name)
	}
	o.usage.Add(resp.Usage)

	tier, ok := model.ParseTier(resp.Text())
	if !ok {
		return model.TierNone, eris.Wrapf(ErrMalformedResponse, "got %q", strings.TrimSpace(resp.Text()))
	}
	if tier < hints.MinTier {
		tier = hints.MinTier
	}
	return tier, nil
}

func buildPrompt(article model.Article, brand model.BrandSpec, hints OracleHints) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Brand: %s\n", brand.Name)
	if len(brand.Composites) > 0 {
		fmt.Fprintf(&sb, "Do not count mentions of these longer names as mentions of %s: %s\n",
			brand.Name, strings.Join(brand.Composites, "; "))
	}
	if hints.MinTier > model.TierNone {
		fmt.Fprintf(&sb, "Editorial context indicates the answer is at least %s.\n", hints.MinTier.Label())
	}

	body := article.Body
	if r := []rune(body); len(r) > bodyLimit {
		body = string(r[:bodyLimit])
	}
	fmt.Fprintf(&sb, "\nTitle: %s\n\nArticle:\n%s", article.Title, body)
	return sb.String()
}
