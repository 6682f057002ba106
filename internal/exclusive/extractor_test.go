package exclusive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pressroom-labs/brandwatch-cli/internal/config"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/pkg/anthropic"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

type memCache struct {
	seen map[string]bool
}

func newMemCache() *memCache {
	return &memCache{seen: make(map[string]bool)}
}

func (c *memCache) IsProcessed(ctx context.Context, hash string) (bool, error) {
	return c.seen[hash], nil
}

func (c *memCache) MarkProcessed(ctx context.Context, hash string) error {
	c.seen[hash] = true
	return nil
}

func jsonResponse(brands ...string) *anthropic.MessageResponse {
	data, _ := json.Marshal(brands)
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: string(data)}},
	}
}

func testConfig() config.OracleConfig {
	return config.OracleConfig{Model: "claude-haiku-4-5-20251001", ThrottleMillis: 1, TimeoutSecs: 5}
}

func TestContentHashStableAndDistinct(t *testing.T) {
	h1 := ContentHash("Title", "Body")
	assert.Equal(t, h1, ContentHash("Title", "Body"))
	assert.NotEqual(t, h1, ContentHash("Title", "Body changed"))
	assert.Len(t, h1, 64)
}

func TestFilterBrands(t *testing.T) {
	got := FilterBrands([]string{
		// duplicates after folding
		"Acme", " Acme ", "acme",
		"x",                    // too short
		"https://acme.example", // URL
		"press@acme.example",   // email
		"Central Bank",         // generic
		"123",                  // no letters
		"Zeta Bank",
	})
	assert.Equal(t, []string{"Acme", "Zeta Bank"}, got)
}

func TestRunDetectsExclusive(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(jsonResponse("Acme"), nil).Once()
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(jsonResponse("Acme", "Zeta Bank"), nil).Once()

	e, err := New(client, nil, []string{"Acme"}, testConfig())
	require.NoError(t, err)

	articles := []model.Article{
		{ID: "a1", Title: "Acme alone", Body: "Only Acme here.", ViewURL: "https://v/1"},
		{ID: "a2", Title: "Two brands", Body: "Acme and Zeta Bank."},
	}
	report, err := e.Run(context.Background(), articles, "2025-07")
	require.NoError(t, err)

	require.Len(t, report.Exclusives, 1)
	assert.Equal(t, "a1", report.Exclusives[0].ArticleID)
	assert.Equal(t, "Acme", report.Exclusives[0].Brand)
	assert.Equal(t, "https://v/1", report.Exclusives[0].ViewURL)
	assert.Equal(t, 2, report.BrandFrequency["Acme"])
	assert.Equal(t, 1, report.BrandFrequency["Zeta Bank"])
	assert.Equal(t, 2, report.Processed)
	client.AssertExpectations(t)
}

func TestRunNonGroupSoloIsNotExclusive(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(jsonResponse("Zeta Bank"), nil).Once()

	e, err := New(client, nil, []string{"Acme"}, testConfig())
	require.NoError(t, err)

	report, err := e.Run(context.Background(),
		[]model.Article{{ID: "a1", Title: "t", Body: "b"}}, "2025-07")
	require.NoError(t, err)
	assert.Empty(t, report.Exclusives)
}

func TestRunUsesContentCache(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(jsonResponse("Acme"), nil).Once()

	cache := newMemCache()
	e, err := New(client, cache, []string{"Acme"}, testConfig())
	require.NoError(t, err)

	a := model.Article{ID: "a1", Title: "Acme alone", Body: "Only Acme here."}

	report, err := e.Run(context.Background(), []model.Article{a}, "2025-07")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)

	// Same content again: cache hit, no second API call.
	report, err = e.Run(context.Background(), []model.Article{a}, "2025-07")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 1, report.SkippedCached)
	client.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestRunCountsFailures(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.New("boom")).Once()
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(jsonResponse("Acme"), nil).Once()

	e, err := New(client, nil, []string{"Acme"}, testConfig())
	require.NoError(t, err)

	report, err := e.Run(context.Background(), []model.Article{
		{ID: "a1", Title: "t", Body: "fails"},
		{ID: "a2", Title: "Acme alone", Body: "Only Acme."},
	}, "2025-07")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures)
	require.Len(t, report.Exclusives, 1)
	assert.Equal(t, "a2", report.Exclusives[0].ArticleID)
}

func TestRunSkipsEmptyArticles(t *testing.T) {
	e, err := New(&mockClient{}, nil, []string{"Acme"}, testConfig())
	require.NoError(t, err)

	report, err := e.Run(context.Background(),
		[]model.Article{{ID: "a1", Title: " ", Body: ""}}, "2025-07")
	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedEmpty)
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `["Acme"]`, cleanJSON("```json\n[\"Acme\"]\n```"))
	assert.Equal(t, `["Acme"]`, cleanJSON(`["Acme"]`))
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	report := &Report{
		MonthTag:       "2025-07",
		GroupBrands:    []string{"Acme"},
		Exclusives:     []ExclusiveArticle{{ArticleID: "a1", Brand: "Acme"}},
		BrandFrequency: map[string]int{"Acme": 2},
	}
	require.NoError(t, SaveReport(dir, report))

	for _, name := range []string{
		"extraction_report_2025-07.json",
		"exclusive_articles_2025-07.json",
		"brand_frequency_2025-07.json",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.True(t, json.Valid(data), name)
	}
}
