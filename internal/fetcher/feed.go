// Package fetcher retrieves articles from the clipping provider: JSON
// feed endpoints, spreadsheet exports, and the monthly FTP archive.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pressroom-labs/brandwatch-cli/internal/config"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/internal/resilience"
)

// FeedEndpoint is one configured feed query: the provider exposes a
// search endpoint per brand portfolio, each with its own POST payload.
type FeedEndpoint struct {
	Name    string          `json:"name"`
	URL     string          `json:"url"`
	Payload json.RawMessage `json:"payload"`
}

// LoadEndpoints reads the endpoint list from a JSON file.
func LoadEndpoints(path string) ([]FeedEndpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "feed: read endpoints file %s", path)
	}
	var endpoints []FeedEndpoint
	if err := json.Unmarshal(data, &endpoints); err != nil {
		return nil, eris.Wrapf(err, "feed: parse endpoints file %s", path)
	}
	if len(endpoints) == 0 {
		return nil, eris.Errorf("feed: endpoints file %s is empty", path)
	}
	for _, e := range endpoints {
		if e.URL == "" {
			return nil, eris.Errorf("feed: endpoint %q has no url", e.Name)
		}
	}
	return endpoints, nil
}

// feedConcurrency bounds parallel endpoint fetches.
const feedConcurrency = 4

// FeedClient fetches article batches from the feed endpoints with rate
// limiting and retry on server-side failures.
type FeedClient struct {
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewFeedClient builds a FeedClient from config.
func NewFeedClient(cfg config.FeedConfig) *FeedClient {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 2
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &FeedClient{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
		retry: resilience.RetryConfig{
			MaxAttempts: maxRetries,
			Backoff:     time.Duration(cfg.RetryDelaySecs) * time.Second,
			OnRetry:     resilience.RetryLogger("feed", "fetch"),
		},
	}
}

// FetchArticles queries every endpoint and concatenates the results in
// endpoint order. Endpoints run concurrently, bounded by feedConcurrency;
// any endpoint failing after retries fails the whole fetch.
func (f *FeedClient) FetchArticles(ctx context.Context, endpoints []FeedEndpoint) ([]model.Article, error) {
	perEndpoint := make([][]model.Article, len(endpoints))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedConcurrency)
	for i, ep := range endpoints {
		g.Go(func() error {
			articles, err := f.fetchEndpoint(gctx, ep)
			if err != nil {
				return err
			}
			mu.Lock()
			perEndpoint[i] = articles
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Article
	for _, batch := range perEndpoint {
		all = append(all, batch...)
	}
	zap.L().Info("feed fetch complete",
		zap.Int("endpoints", len(endpoints)),
		zap.Int("articles", len(all)),
	)
	return all, nil
}

func (f *FeedClient) fetchEndpoint(ctx context.Context, ep FeedEndpoint) ([]model.Article, error) {
	return resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]model.Article, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "feed: rate limiter wait")
		}

		payload := ep.Payload
		if len(payload) == 0 {
			payload = json.RawMessage(`{}`)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(payload))
		if err != nil {
			return nil, eris.Wrapf(err, "feed: build request for %s", ep.Name)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrapf(err, "feed: %s", ep.Name), 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrapf(err, "feed: read %s", ep.Name), 0)
		}

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("feed: %s returned %d", ep.Name, resp.StatusCode), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("feed: %s returned %d", ep.Name, resp.StatusCode)
		}

		articles, err := decodeArticles(body)
		if err != nil {
			return nil, eris.Wrapf(err, "feed: decode %s", ep.Name)
		}
		zap.L().Debug("feed endpoint fetched",
			zap.String("endpoint", ep.Name),
			zap.Int("articles", len(articles)),
		)
		return articles, nil
	})
}

// decodeArticles accepts both response shapes the provider has used: a
// bare array and an object with an "articles" field.
func decodeArticles(body []byte) ([]model.Article, error) {
	var plain []model.Article
	if err := json.Unmarshal(body, &plain); err == nil {
		return plain, nil
	}
	var wrapped struct {
		Articles []model.Article `json:"articles"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, eris.Wrap(err, "unrecognized response shape")
	}
	return wrapped.Articles, nil
}
