// Package store persists run records and the processed-content cache.
// Two backends are supported: SQLite for single-operator installs and
// Postgres for the shared dashboard deployment.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/pressroom-labs/brandwatch-cli/internal/config"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

// RunFilter narrows ListRuns.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Kind   model.RunKind   `json:"kind,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, kind model.RunKind) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Processed-content cache for the extraction consumer
	IsProcessed(ctx context.Context, hash string) (bool, error)
	MarkProcessed(ctx context.Context, hash string) error

	Migrate(ctx context.Context) error
	Close() error
}

// Open builds the store selected by configuration and runs migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		s, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
