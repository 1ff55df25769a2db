package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/domain/repository"
	xlogger "Heliox/pkg/logger"
)

// Outcome is the terminal result of a pipeline execution.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Registry owns the run lifecycle state machine. The orchestrator mutates
// run state only through these operations.
type Registry struct {
	runs    repository.RunStore
	metrics repository.Metrics
	logger  *xlogger.Logger
	now     func() time.Time
}

// NewRegistry creates a registry over the given run store.
func NewRegistry(runs repository.RunStore, metrics repository.Metrics, logger *xlogger.Logger) *Registry {
	return &Registry{runs: runs, metrics: metrics, logger: logger, now: time.Now}
}

// CreateRun registers a new run in status PENDING and returns it.
func (r *Registry) CreateRun(ctx context.Context, prompt string, tier models.RiskTier) (*models.Run, error) {
	run := &models.Run{
		ID:        models.NewTraceID(r.now()),
		Status:    models.RunStatusPending,
		RiskTier:  tier,
		Prompt:    prompt,
		CreatedAt: r.now().UTC(),
	}
	if err := r.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	r.logger.Info("run created",
		xlogger.String("run_id", run.ID),
		xlogger.String("risk_tier", string(tier)))
	return run, nil
}

// BeginRun moves a PENDING run to RUNNING, recording the start timestamp.
// This is the at-most-one-concurrent-execution guard: of two racing calls
// exactly one succeeds, the other observes the post-transition status and
// gets ErrInvalidTransition.
func (r *Registry) BeginRun(ctx context.Context, runID string) (*models.Run, error) {
	run, err := r.runs.Transition(ctx, runID, models.RunStatusRunning, r.now().UTC())
	if err != nil {
		return run, err
	}
	if r.metrics != nil {
		r.metrics.RecordRunStarted(string(run.RiskTier))
	}
	r.logger.Info("run started", xlogger.String("run_id", runID))
	return run, nil
}

// FinishRun moves a RUNNING run to its terminal status. Finishing an
// already-terminal run is a no-op that reports the existing status, since
// background completion and client cancellation may race.
func (r *Registry) FinishRun(ctx context.Context, runID string, outcome Outcome) (models.RunStatus, error) {
	to := models.RunStatusComplete
	if outcome == OutcomeFailure {
		to = models.RunStatusFailed
	}

	run, err := r.runs.Transition(ctx, runID, to, r.now().UTC())
	if errors.Is(err, repository.ErrInvalidTransition) && run != nil && run.Status.Terminal() {
		return run.Status, nil
	}
	if err != nil {
		return "", err
	}
	if r.metrics != nil {
		r.metrics.RecordRunFinished(string(run.Status))
	}
	r.logger.Info("run finished",
		xlogger.String("run_id", runID),
		xlogger.String("status", string(run.Status)))
	return run.Status, nil
}

// CancelRun marks a PENDING or RUNNING run as CANCELLED.
func (r *Registry) CancelRun(ctx context.Context, runID string) (*models.Run, error) {
	run, err := r.runs.Transition(ctx, runID, models.RunStatusCancelled, r.now().UTC())
	if err != nil {
		return run, err
	}
	if r.metrics != nil {
		r.metrics.RecordRunFinished(string(models.RunStatusCancelled))
	}
	r.logger.Info("run cancelled", xlogger.String("run_id", runID))
	return run, nil
}

// GetRun returns the current run state or ErrRunNotFound.
func (r *Registry) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	return r.runs.Get(ctx, runID)
}

// RecordProgress stores the current phase and progress fraction.
func (r *Registry) RecordProgress(ctx context.Context, runID string, phase models.Phase, progress float64) error {
	return r.runs.UpdateProgress(ctx, runID, phase, progress)
}

// RecordOutcome stores the error message and summary metrics.
func (r *Registry) RecordOutcome(ctx context.Context, runID string, errMsg string, metrics map[string]float64) error {
	return r.runs.SetOutcome(ctx, runID, errMsg, metrics)
}
