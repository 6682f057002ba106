package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/classifier"
	"github.com/pressroom-labs/brandwatch-cli/internal/export"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard backend",
	Long:  "Serves run history, lets the dashboard trigger new analysis runs, and exposes the latest results spreadsheet for download. At most one analysis runs at a time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initAnalysis(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &dashboardServer{
			store:     env.Store,
			exportDir: cfg.Export.Dir,
			runAnalysis: func(runCtx context.Context, runID string) {
				runDashboardAnalysis(runCtx, env, runID)
			},
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.mux(ctx),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// dashboardServer holds the handler dependencies so the mux is testable
// without a listening socket.
type dashboardServer struct {
	store       store.Store
	exportDir   string
	runAnalysis func(ctx context.Context, runID string)
	busy        atomic.Bool
}

func (s *dashboardServer) mux(ctx context.Context) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /runs", func(w http.ResponseWriter, r *http.Request) {
		if !s.busy.CompareAndSwap(false, true) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "analysis already running"})
			return
		}

		run, err := s.store.CreateRun(r.Context(), model.RunKindAnalysis)
		if err != nil {
			s.busy.Store(false)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create run failed"})
			return
		}

		// The run outlives the request; tie it to the server context.
		go func() {
			defer s.busy.Store(false)
			s.runAnalysis(ctx, run.ID)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status": "accepted",
			"run_id": run.ID,
		})
	})

	mux.HandleFunc("GET /runs", func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status: model.RunStatus(r.URL.Query().Get("status")),
			Kind:   model.RunKind(r.URL.Query().Get("kind")),
		}
		runs, err := s.store.ListRuns(r.Context(), filter)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	mux.HandleFunc("GET /runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		run, err := s.store.GetRun(r.Context(), r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	mux.HandleFunc("GET /results/latest", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.exportDir, export.CanonicalName)
		if _, err := os.Stat(path); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no results exported yet"})
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename="+export.CanonicalName)
		http.ServeFile(w, r, path)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// runDashboardAnalysis executes one full feed-to-export analysis for a
// dashboard-triggered run.
func runDashboardAnalysis(ctx context.Context, env *analysisEnv, runID string) {
	if err := env.Store.UpdateRunStatus(ctx, runID, model.RunStatusRunning); err != nil {
		zap.L().Error("run status update failed", zap.String("run", runID), zap.Error(err))
		return
	}

	// The env outlives individual runs; reset counters so the persisted
	// run result reports this run only.
	env.Classifier.ResetStats()
	if env.Oracle != nil {
		env.Oracle.ResetUsage()
	}

	fail := func(err error) {
		zap.L().Error("dashboard analysis failed", zap.String("run", runID), zap.Error(err))
		_ = env.Store.UpdateRunStatus(ctx, runID, model.RunStatusFailed)
	}

	started := time.Now()
	articles, err := fetchFeedArticles(ctx)
	if err != nil {
		fail(err)
		return
	}

	results, err := env.Classifier.Run(ctx, articles)
	if err != nil {
		fail(err)
		return
	}
	corrections := env.Classifier.Correct(results, articles)
	records := classifier.Aggregate(articles, results)

	exportPath, err := export.WriteRecords(cfg.Export.Dir, records, env.Brands)
	if err != nil {
		fail(err)
		return
	}

	stats := env.Classifier.Stats()
	result := &model.RunResult{
		Articles:     len(articles),
		Records:      len(records),
		Corrections:  corrections,
		Failures:     stats.Failures,
		ExportPath:   exportPath,
		DurationSecs: time.Since(started).Seconds(),
	}
	if env.Oracle != nil {
		result.OracleCalls = env.Oracle.Calls()
		result.EstCostUSD = env.Oracle.Usage().EstimateCost(cfg.Oracle.Model)
	}
	if err := env.Store.UpdateRunResult(ctx, runID, result); err != nil {
		zap.L().Error("run result update failed", zap.String("run", runID), zap.Error(err))
		return
	}

	zap.L().Info("dashboard analysis complete",
		zap.String("run", runID),
		zap.Int("articles", len(articles)),
		zap.Int("records", len(records)),
	)
}
