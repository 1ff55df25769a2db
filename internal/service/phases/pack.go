package phases

import (
	"context"
	"fmt"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/usecase"
)

// Pack assembles the final sealed strategy package manifest.
type Pack struct{}

func NewPack() *Pack { return &Pack{} }

func (p *Pack) Tag() models.Phase { return models.PhasePack }

func (p *Pack) Stage() string {
	return "Packaging strategy artifacts into manifest"
}

func (p *Pack) ArtifactName() string { return "manifest" }

func (p *Pack) Run(ctx context.Context, st *usecase.PipelineState) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if st.Blueprint == nil {
		return nil, fmt.Errorf("pack: no blueprint to package")
	}
	if st.Backtest == nil {
		return nil, fmt.Errorf("pack: no backtest evidence to package")
	}

	manifest := &models.PackageManifest{
		Version:         "1.0.0",
		FormatVersion:   "1.0",
		StrategyID:      fmt.Sprintf("strat_%s", st.RunID),
		CreatedAt:       time.Now().UTC(),
		Blueprint:       *st.Blueprint,
		BacktestResults: []models.BacktestResult{*st.Backtest},
		Metadata: models.PackageMetadata{
			Prompt:      st.Prompt,
			Model:       "fixture",
			Temperature: st.Options.Temperature,
			Iterations:  st.Options.MaxIterations,
		},
	}
	if err := manifest.Seal(); err != nil {
		return nil, fmt.Errorf("pack: seal manifest: %w", err)
	}
	st.Manifest = manifest
	return manifest, nil
}
