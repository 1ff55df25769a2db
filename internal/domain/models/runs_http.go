package models

import "time"

// Requests and responses for the run HTTP endpoints. Defined in domain for
// consistency and reuse; binding and range validation happen in pkg/http.

// RunOptions bounds the pipeline execution for one run.
type RunOptions struct {
	MaxIterations  int     `json:"max_iterations" default:"10" validate:"gte=1,lte=100"`
	Temperature    float64 `json:"temperature" default:"0.7" validate:"gte=0,lte=2"`
	TimeoutMinutes int     `json:"timeout_minutes" default:"30" validate:"gte=1,lte=60"`
}

// CreateRunRequest registers a new run in status PENDING.
type CreateRunRequest struct {
	Prompt   string      `json:"prompt" validate:"required,min=10,max=4000"`
	RiskTier string      `json:"risk_tier" default:"balanced" validate:"oneof=conservative balanced aggressive"`
	Options  *RunOptions `json:"options,omitempty"`
}

// CreateRunResponse acknowledges run creation.
type CreateRunResponse struct {
	RunID         string    `json:"run_id"`
	Status        RunStatus `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	PhasesPlanned []Phase   `json:"phases_planned"`
}

// OrchestrateRequest asks the orchestrator to start a pending run.
type OrchestrateRequest struct {
	RunID   string      `json:"run_id" validate:"required"`
	Options *RunOptions `json:"options,omitempty"`
}

// OrchestrateResponse acknowledges background execution.
type OrchestrateResponse struct {
	Accepted bool   `json:"accepted"`
	RunID    string `json:"run_id"`
	Message  string `json:"message"`
}

// RunStatusResponse is the pollable view of a run.
type RunStatusResponse struct {
	RunID        string             `json:"run_id"`
	Status       RunStatus          `json:"status"`
	CurrentPhase Phase              `json:"current_phase,omitempty"`
	Progress     float64            `json:"progress"`
	ErrorMessage string             `json:"error_message,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	FinishedAt   *time.Time         `json:"finished_at,omitempty"`
	EventCount   uint64             `json:"event_count"`
	LastSeq      uint64             `json:"last_seq"`
}

// ListEventsRequest filters the ledger read for one run.
type ListEventsRequest struct {
	After uint64 `query:"after" json:"after" validate:"gte=0"`
	Limit int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=5000"`
}
