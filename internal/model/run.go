package model

import "time"

// RunStatus tracks a run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunKind distinguishes the two pipeline consumers.
type RunKind string

const (
	RunKindAnalysis   RunKind = "analysis"
	RunKindExtraction RunKind = "extraction"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID        string     `json:"id"`
	Kind      RunKind    `json:"kind"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult summarizes a completed run.
type RunResult struct {
	Articles     int     `json:"articles"`
	Records      int     `json:"records"`
	OracleCalls  int     `json:"oracle_calls"`
	Corrections  int     `json:"corrections"`
	Failures     int     `json:"failures"`
	ExportPath   string  `json:"export_path,omitempty"`
	EstCostUSD   float64 `json:"est_cost_usd"`
	DurationSecs float64 `json:"duration_secs"`
}
