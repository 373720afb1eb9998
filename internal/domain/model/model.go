package model

import "time"

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Per-item outcomes reported by the service commands.
const (
	ResultPlanned   = "planned"
	ResultOptimized = "optimized"
	ResultRestored  = "restored"
	ResultUnchanged = "unchanged"
	ResultNotFound  = "not_found"
	ResultError     = "error"
	ResultSkipped   = "skipped"
)

type ServiceItem struct {
	Service     string `json:"service"`
	Description string `json:"description,omitempty"`
	Risk        string `json:"risk,omitempty"`
	State       string `json:"state,omitempty"`
	Current     string `json:"current_startup_type,omitempty"`
	Target      string `json:"target_startup_type,omitempty"`
	Result      string `json:"result"`
	Error       string `json:"error,omitempty"`
}

type Summary struct {
	ItemsTotal int `json:"items_total"`
	Changed    int `json:"changed"`
	Unchanged  int `json:"unchanged"`
	NotFound   int `json:"not_found"`
	Errors     int `json:"errors"`
	LedgerSize int `json:"ledger_size"`
}

type CommandResult struct {
	SchemaVersion string        `json:"schema_version"`
	Command       string        `json:"command"`
	Timestamp     time.Time     `json:"timestamp"`
	DurationMS    int64         `json:"duration_ms"`
	DryRun        bool          `json:"dry_run,omitempty"`
	Summary       Summary       `json:"summary,omitempty"`
	Items         []ServiceItem `json:"items,omitempty"`
	Metrics       any           `json:"metrics,omitempty"`
}

type OperationLogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	PlanID     string    `json:"plan_id"`
	Command    string    `json:"command"`
	Action     string    `json:"action"`
	Service    string    `json:"service"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Risk       string    `json:"risk,omitempty"`
	Result     string    `json:"result"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	DryRun     bool      `json:"dry_run"`
}
