package anthropic

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestResponseText(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "Cita"},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "tion"},
	}}
	assert.Equal(t, "Citation", resp.Text())
	assert.Equal(t, "", (&MessageResponse{}).Text())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 0, StatusOf(eris.New("plain")))
	assert.Equal(t, 529, StatusOf(&APIError{StatusCode: 529, Err: eris.New("overloaded")}))
	assert.Equal(t, 429, StatusOf(eris.Wrap(&APIError{StatusCode: 429, Err: eris.New("rate")}, "outer")))
}

func TestTokenUsageAdd(t *testing.T) {
	u := TokenUsage{InputTokens: 10, OutputTokens: 5}
	u.Add(TokenUsage{InputTokens: 3, OutputTokens: 2, CacheReadInputTokens: 100})
	assert.Equal(t, int64(13), u.InputTokens)
	assert.Equal(t, int64(7), u.OutputTokens)
	assert.Equal(t, int64(100), u.CacheReadInputTokens)
}

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 4.80, u.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
	assert.Zero(t, u.EstimateCost("unknown-model"))
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("rubric")
	assert.Len(t, blocks, 1)
	assert.Equal(t, "rubric", blocks[0].Text)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}
