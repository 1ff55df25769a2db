package phases

import (
	"context"
	"fmt"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/usecase"
)

// Backtest runs the fast evaluation pass over the synthesized strategies.
type Backtest struct{}

func NewBacktest() *Backtest { return &Backtest{} }

func (b *Backtest) Tag() models.Phase { return models.PhaseT1 }

func (b *Backtest) Stage() string {
	return "Running fast backtest on synthetic data"
}

func (b *Backtest) ArtifactName() string { return "backtest_result" }

func (b *Backtest) Run(ctx context.Context, st *usecase.PipelineState) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(st.Strategies) == 0 {
		return nil, fmt.Errorf("backtest: no strategies from predecessor phase")
	}

	result := SampleBacktestResult(time.Now().UTC())
	st.Backtest = result
	return result, nil
}

// SampleBacktestResult is the fixture evaluation output: one simulated
// year ending at now.
func SampleBacktestResult(now time.Time) *models.BacktestResult {
	start := now.AddDate(-1, 0, 0)

	// Equity samples spread evenly over the period, ending 18% up.
	values := []float64{100000, 101500, 103200, 105000, 108000, 118000}
	curve := make([]models.EquityPoint, len(values))
	step := now.Sub(start) / time.Duration(len(values))
	peak := 0.0
	for i, v := range values {
		if v > peak {
			peak = v
		}
		curve[i] = models.EquityPoint{
			Timestamp: start.Add(time.Duration(i+1) * step),
			Value:     v,
			Drawdown:  (peak - v) / peak,
		}
	}

	trades := make([]models.Trade, 45)
	for i := range trades {
		entry := start.Add(time.Duration(i) * 7 * 24 * time.Hour)
		exit := entry.Add(36 * time.Hour)
		pnl := 400.0
		if i%3 == 2 {
			pnl = -250.0
		}
		trades[i] = models.Trade{
			ID:         fmt.Sprintf("t%03d", i+1),
			EntryTime:  entry,
			ExitTime:   &exit,
			Symbol:     "BTC_USD",
			Side:       models.TradeLong,
			Quantity:   0.5,
			EntryPrice: 40000 + float64(i)*100,
			ExitPrice:  40000 + float64(i)*100 + pnl/0.5,
			PnL:        pnl,
			PnLPercent: pnl / 100000,
		}
	}

	return &models.BacktestResult{
		Phase:          models.PhaseT1,
		PeriodStart:    start,
		PeriodEnd:      now,
		InitialCapital: 100000,
		FinalCapital:   118000,
		Metrics: models.BacktestMetrics{
			TotalReturn:      0.18,
			AnnualizedReturn: 0.18,
			SharpeRatio:      1.42,
			SortinoRatio:     1.95,
			CalmarRatio:      1.5,
			MaxDrawdown:      0.12,
			Volatility:       0.21,
			TotalTrades:      len(trades),
			WinRate:          0.62,
			ProfitFactor:     1.8,
			AvgWin:           400,
			AvgLoss:          -250,
			LargestWin:       1200,
			LargestLoss:      -600,
		},
		EquityCurve: curve,
		Trades:      trades,
	}
}
