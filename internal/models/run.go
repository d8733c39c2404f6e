package models

import "time"

// RunStatus is the lifecycle state of an analyze run.
// RUNNING transitions to exactly one of SUCCESS or FAILED; both are terminal.
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// RunLogEntry is a single ordered log line attached to a run.
type RunLogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Run records one end-to-end analyze invocation for a symbol.
// The run record and its log are the sole error-reporting channel:
// no pipeline error reaches an API caller uncaught.
type Run struct {
	ID         string        `json:"id" badgerhold:"key"`
	Symbol     string        `json:"symbol" badgerhold:"index"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Status     RunStatus     `json:"status"`
	Logs       []RunLogEntry `json:"logs"`
}

// Finished reports whether the run has reached a terminal status.
func (r *Run) Finished() bool {
	return r.Status == RunStatusSuccess || r.Status == RunStatusFailed
}

// FilingStats aggregates the filing pipeline's per-item outcomes.
type FilingStats struct {
	Fetched         int `json:"fetched"`
	Downloaded      int `json:"downloaded"`
	OCRUsed         int `json:"ocr_used"`
	Persisted       int `json:"persisted"`
	SkippedExisting int `json:"skipped_existing"`
	Failed          int `json:"failed"`
}

// NewsStats aggregates the news pipeline's per-item outcomes.
type NewsStats struct {
	Fetched   int `json:"fetched"`
	Persisted int `json:"persisted"`
	Failed    int `json:"failed"`
}

// PriceStats aggregates the price pipeline result.
type PriceStats struct {
	Bars int `json:"bars"`
}

// AnalyzeResult is the orchestrator's summary of a completed run.
type AnalyzeResult struct {
	RunID   string      `json:"run_id"`
	Filings FilingStats `json:"filings"`
	News    NewsStats   `json:"news"`
	Prices  PriceStats  `json:"prices"`
}
