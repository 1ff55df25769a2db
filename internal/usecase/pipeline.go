package usecase

import (
	"context"

	"Heliox/internal/domain/models"
)

// PipelineState is the shared state threaded through a run's phases. Each
// phase reads its predecessor's output and writes exactly one field; the
// orchestrator validates the returned artifact before the next phase sees
// the state.
type PipelineState struct {
	RunID      string
	Prompt     string
	Options    models.RunOptions
	Blueprint  *models.Blueprint
	Strategies []models.Strategy
	Backtest   *models.BacktestResult
	Manifest   *models.PackageManifest
}

// Phase is one pluggable stage of the pipeline. Implementations return
// their artifact for ledger emission and validation; fixture bodies and
// real strategy engines are interchangeable behind this capability.
type Phase interface {
	// Tag identifies the phase within the closed phase ordering.
	Tag() models.Phase
	// Stage is the human-readable description used in status events.
	Stage() string
	// ArtifactName names the artifact this phase produces.
	ArtifactName() string
	// Run executes the phase against the shared state.
	Run(ctx context.Context, st *PipelineState) (artifact any, err error)
}
