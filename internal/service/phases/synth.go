package phases

import (
	"context"
	"fmt"

	"Heliox/internal/domain/models"
	"Heliox/internal/usecase"
)

// Synth generates candidate strategies from the blueprint.
type Synth struct{}

func NewSynth() *Synth { return &Synth{} }

func (s *Synth) Tag() models.Phase { return models.PhaseT0 }

func (s *Synth) Stage() string {
	return "Generating candidate strategies from blueprint"
}

func (s *Synth) ArtifactName() string { return "candidates" }

func (s *Synth) Run(ctx context.Context, st *usecase.PipelineState) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if st.Blueprint == nil {
		return nil, fmt.Errorf("synth: no blueprint from predecessor phase")
	}

	candidates := make([]models.Strategy, 0, len(st.Blueprint.Rules))
	for _, rule := range st.Blueprint.Rules {
		candidates = append(candidates, models.Strategy{
			Name:  fmt.Sprintf("%s/%s", st.Blueprint.Name, rule.ID),
			Rules: []string{rule.Condition},
		})
	}
	st.Strategies = candidates
	return candidates, nil
}
