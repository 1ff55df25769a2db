package validation

import (
	"testing"
	"time"

	"Heliox/internal/domain/models"
)

func sampleBacktest() *models.BacktestResult {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return &models.BacktestResult{
		Phase:          models.PhaseT1,
		PeriodStart:    start,
		PeriodEnd:      end,
		InitialCapital: 100000,
		FinalCapital:   118000,
		Metrics: models.BacktestMetrics{
			TotalReturn:  0.18,
			SharpeRatio:  1.4,
			MaxDrawdown:  0.12,
			TotalTrades:  60,
			WinRate:      0.55,
			ProfitFactor: 1.8,
		},
		EquityCurve: []models.EquityPoint{
			{Timestamp: start, Value: 100000},
			{Timestamp: start.AddDate(0, 6, 0), Value: 109000, Drawdown: 0.05},
			{Timestamp: end, Value: 118000, Drawdown: 0.02},
		},
	}
}

func TestValidateBacktestClean(t *testing.T) {
	res := ValidateBacktest(sampleBacktest())
	if !res.Valid {
		t.Fatalf("expected valid, errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", res.Warnings)
	}
}

func TestValidateBacktestSharpeRange(t *testing.T) {
	r := sampleBacktest()
	r.Metrics.SharpeRatio = 12
	if res := ValidateBacktest(r); res.Valid {
		t.Fatalf("sharpe 12 should fail")
	}
	r.Metrics.SharpeRatio = -6
	if res := ValidateBacktest(r); res.Valid {
		t.Fatalf("sharpe -6 should fail")
	}
	r.Metrics.SharpeRatio = 10
	if res := ValidateBacktest(r); !res.Valid {
		t.Fatalf("sharpe exactly 10 should pass, errors: %v", res.Errors)
	}
	r.Metrics.SharpeRatio = -5
	if res := ValidateBacktest(r); !res.Valid {
		t.Fatalf("sharpe exactly -5 should pass, errors: %v", res.Errors)
	}
}

func TestValidateBacktestDrawdownCap(t *testing.T) {
	r := sampleBacktest()
	r.Metrics.MaxDrawdown = 0.85
	res := ValidateBacktest(r)
	if res.Valid {
		t.Fatalf("85%% drawdown should fail")
	}
}

func TestValidateBacktestTradeSampleSize(t *testing.T) {
	r := sampleBacktest()
	r.Metrics.TotalTrades = 9
	res := ValidateBacktest(r)
	if res.Valid {
		t.Fatalf("9 trades should fail")
	}
	found := false
	for _, e := range res.Errors {
		if e == "insufficient trade sample size (< 10 trades)" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing sample size error, got %v", res.Errors)
	}

	r.Metrics.TotalTrades = 10
	res = ValidateBacktest(r)
	if !res.Valid {
		t.Fatalf("10 trades should pass, errors: %v", res.Errors)
	}
	// Still advisory below 50.
	if len(res.Warnings) == 0 {
		t.Fatalf("expected low trade count warning")
	}
}

func TestValidateBacktestSuspiciousMetricsAreWarnings(t *testing.T) {
	r := sampleBacktest()
	r.Metrics.WinRate = 0.97
	r.Metrics.ProfitFactor = 60
	res := ValidateBacktest(r)
	if !res.Valid {
		t.Fatalf("suspicious metrics should not fail validation, errors: %v", res.Errors)
	}
	if len(res.Warnings) < 2 {
		t.Fatalf("expected win rate and profit factor warnings, got %v", res.Warnings)
	}
}

func TestValidateBacktestEquityCurve(t *testing.T) {
	r := sampleBacktest()
	r.EquityCurve = r.EquityCurve[:1]
	if res := ValidateBacktest(r); res.Valid {
		t.Fatalf("single-point equity curve should fail")
	}

	r = sampleBacktest()
	r.EquityCurve[1].Value = -5
	if res := ValidateBacktest(r); res.Valid {
		t.Fatalf("negative equity value should fail")
	}

	r = sampleBacktest()
	r.EquityCurve[2].Timestamp = r.EquityCurve[1].Timestamp
	if res := ValidateBacktest(r); res.Valid {
		t.Fatalf("non-ascending timestamps should fail")
	}
}

func TestValidateBacktestPeriod(t *testing.T) {
	r := sampleBacktest()
	r.PeriodEnd = r.PeriodStart
	if res := ValidateBacktest(r); res.Valid {
		t.Fatalf("empty period should fail")
	}
}
