package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("123456789abcdef"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2025, 7, 14, 9, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "aaaabbbb-cccc-dddd-eeee-ffff00001111",
			Kind:      model.RunKindAnalysis,
			Status:    model.RunStatusComplete,
			Result:    &model.RunResult{Articles: 42},
			CreatedAt: created,
			UpdatedAt: created.Add(90 * time.Second),
		},
		{
			ID:        "22223333-4444-5555-6666-777788889999",
			Kind:      model.RunKindExtraction,
			Status:    model.RunStatusFailed,
			CreatedAt: created,
			UpdatedAt: created,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "aaaabbbb")
	assert.NotContains(t, out, "ffff00001111")
	assert.Contains(t, out, "analysis")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "extraction")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "2025-07-14 09:30")
	assert.Contains(t, out, "1m30s")
}
