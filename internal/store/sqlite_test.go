package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.RunKindAnalysis)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))

	result := &model.RunResult{Articles: 12, Records: 9, OracleCalls: 3, ExportPath: "exports/x.xlsx"}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, model.RunKindAnalysis, got.Kind)
	require.NotNil(t, got.Result)
	assert.Equal(t, 12, got.Result.Articles)
	assert.Equal(t, "exports/x.xlsx", got.Result.ExportPath)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
}

func TestSQLiteUpdateMissingRun(t *testing.T) {
	s := newTestSQLite(t)
	err := s.UpdateRunStatus(context.Background(), "missing", model.RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListRunsFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, model.RunKindAnalysis)
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, model.RunKindExtraction)
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, a.ID, model.RunStatusFailed))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, a.ID, failed[0].ID)

	extractions, err := s.ListRuns(ctx, RunFilter{Kind: model.RunKindExtraction})
	require.NoError(t, err)
	assert.Len(t, extractions, 1)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteProcessedContent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	seen, err := s.IsProcessed(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkProcessed(ctx, "abc123"))
	// Marking twice is a no-op.
	require.NoError(t, s.MarkProcessed(ctx, "abc123"))

	seen, err = s.IsProcessed(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestOpenSelectsSQLiteByDefault(t *testing.T) {
	cfg := testStoreConfig(t)
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.(*SQLiteStore)
	assert.True(t, ok)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := testStoreConfig(t)
	cfg.Driver = "oracle-rdbms"
	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
