// Package phases holds the built-in phase implementations. The bodies
// return static sample data standing in for real strategy computation;
// anything satisfying usecase.Phase can replace them without touching the
// orchestrator.
package phases

import (
	"context"
	"fmt"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/usecase"
)

// Architect designs the strategy blueprint from the run prompt.
type Architect struct{}

func NewArchitect() *Architect { return &Architect{} }

func (a *Architect) Tag() models.Phase { return models.PhaseBlueprint }

func (a *Architect) Stage() string {
	return "Analyzing requirements and creating blueprint"
}

func (a *Architect) ArtifactName() string { return "blueprint" }

func (a *Architect) Run(ctx context.Context, st *usecase.PipelineState) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bp := SampleBlueprint(st.RunID, time.Now().UTC())
	st.Blueprint = bp
	return bp, nil
}

// SampleBlueprint is the fixture blueprint used until a real design engine
// is plugged in.
func SampleBlueprint(runID string, now time.Time) *models.Blueprint {
	return &models.Blueprint{
		ID:          fmt.Sprintf("bp_%s", runID),
		Name:        "MA Crossover",
		Description: "Moving-average crossover with RSI confirmation",
		Version:     "1.0.0",
		CreatedAt:   now,
		Indicators: []models.Indicator{
			{Name: "fast_ma", Type: models.IndicatorMA, Params: map[string]any{"period": 10}, Timeframe: "1h"},
			{Name: "slow_ma", Type: models.IndicatorMA, Params: map[string]any{"period": 50}, Timeframe: "1h"},
			{Name: "rsi", Type: models.IndicatorRSI, Params: map[string]any{"period": 14}, Timeframe: "1h"},
		},
		Rules: []models.TradingRule{
			{ID: "r1", Condition: "fast_ma crosses_above slow_ma and rsi < 70", Action: models.ActionBuy, Size: 0.1, Priority: 5},
			{ID: "r2", Condition: "fast_ma crosses_below slow_ma", Action: models.ActionCloseLong, Size: 1, Priority: 5},
		},
		Constraints: models.RiskConstraints{
			MaxPositionSize: 0.25,
			StopLoss:        0.05,
			TakeProfit:      0.15,
			MaxDailyLoss:    0.03,
			MaxDrawdown:     0.2,
		},
		Assets:     []string{"BTC_USD", "ETH_USD"},
		Timeframes: []string{"1h", "4h"},
	}
}
