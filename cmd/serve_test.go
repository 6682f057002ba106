package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom-labs/brandwatch-cli/internal/export"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/internal/store"
)

func newTestServer(t *testing.T) (*dashboardServer, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	srv := &dashboardServer{
		store:       st,
		exportDir:   t.TempDir(),
		runAnalysis: func(ctx context.Context, runID string) {},
	}
	return srv, st
}

func TestServeHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.mux(context.Background())

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeTriggerRun(t *testing.T) {
	srv, st := newTestServer(t)

	var mu sync.Mutex
	var triggered []string
	srv.runAnalysis = func(ctx context.Context, runID string) {
		mu.Lock()
		triggered = append(triggered, runID)
		mu.Unlock()
	}
	mux := srv.mux(context.Background())

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/runs", nil))

	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp["status"])
	require.NotEmpty(t, resp["run_id"])

	run, err := st.GetRun(context.Background(), resp["run_id"])
	require.NoError(t, err)
	assert.Equal(t, model.RunKindAnalysis, run.Kind)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(triggered) == 1 && triggered[0] == resp["run_id"]
	}, time.Second, 10*time.Millisecond)
}

func TestServeTriggerRunRejectsConcurrent(t *testing.T) {
	srv, _ := newTestServer(t)

	release := make(chan struct{})
	srv.runAnalysis = func(ctx context.Context, runID string) {
		<-release
	}
	mux := srv.mux(context.Background())

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/runs", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/runs", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already running")

	close(release)
	assert.Eventually(t, func() bool { return !srv.busy.Load() }, time.Second, 10*time.Millisecond)
}

func TestServeListAndGetRuns(t *testing.T) {
	srv, st := newTestServer(t)
	mux := srv.mux(context.Background())
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunKindExtraction)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs?kind=extraction", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var runs []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeListRunsEmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.mux(context.Background())

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestServeLatestResults(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.mux(context.Background())

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/results/latest", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	path := filepath.Join(srv.exportDir, export.CanonicalName)
	require.NoError(t, os.WriteFile(path, []byte("sheet"), 0o644))

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/results/latest", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), export.CanonicalName)
	assert.Equal(t, "sheet", rr.Body.String())
}
