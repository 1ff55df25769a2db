package validation

import (
	"fmt"

	"Heliox/internal/domain/models"
)

// ValidateBacktest runs a backtest result through both tiers: structural
// shape and numeric sanity first, then the statistical-significance and
// plausibility rules.
func ValidateBacktest(r *models.BacktestResult) *Result {
	res := newResult()

	// Structural tier.
	if !r.Phase.Valid() {
		res.addError(fmt.Sprintf("unknown phase %q", r.Phase))
	}
	if !r.PeriodStart.Before(r.PeriodEnd) {
		res.addError("period start must precede period end")
	}
	if r.InitialCapital <= 0 || !finite(r.InitialCapital) {
		res.addError("initial capital must be positive and finite")
	}
	if r.FinalCapital <= 0 || !finite(r.FinalCapital) {
		res.addError("final capital must be positive and finite")
	}
	if r.Metrics.TotalTrades < 0 {
		res.addError("total trades must be >= 0")
	}
	if !ValidFraction(r.Metrics.WinRate) {
		res.addError(fmt.Sprintf("win rate %v outside [0,1]", r.Metrics.WinRate))
	}
	if !ValidFraction(r.Metrics.MaxDrawdown) {
		res.addError(fmt.Sprintf("max drawdown %v outside [0,1]", r.Metrics.MaxDrawdown))
	}

	// Business-rule tier: metrics plausibility.
	res.addErrors(backtestMetricErrors(r.Metrics))
	res.addErrors(equityCurveErrors(r.EquityCurve))

	// Suspicious-but-not-fatal signals.
	if r.Metrics.WinRate > 0.95 {
		res.addWarning("win rate suspiciously high (> 95%) - check for data issues")
	}
	if r.Metrics.ProfitFactor > 50 {
		res.addWarning("profit factor suspiciously high (> 50) - check for data issues")
	}

	// Advisory warnings.
	if r.Metrics.SharpeRatio < 0.5 {
		res.addWarning("low Sharpe ratio - strategy may not be profitable after risk adjustment")
	}
	if r.Metrics.MaxDrawdown > 0.2 {
		res.addWarning("high maximum drawdown - consider additional risk controls")
	}
	if r.Metrics.TotalTrades < 50 {
		res.addWarning("low trade count - results may not be statistically significant")
	}

	days := r.PeriodEnd.Sub(r.PeriodStart).Hours() / 24
	if days > 0 {
		res.Metadata["trade_density"] = float64(r.Metrics.TotalTrades) / days
	}
	res.Metadata["trade_count"] = r.Metrics.TotalTrades
	return res
}

func backtestMetricErrors(m models.BacktestMetrics) []string {
	var errs []string
	if m.SharpeRatio < -5 || m.SharpeRatio > 10 {
		errs = append(errs, "Sharpe ratio is outside reasonable range (-5 to 10)")
	}
	if m.MaxDrawdown > 0.8 {
		errs = append(errs, "maximum drawdown exceeds 80% - strategy may be too risky")
	}
	if m.TotalTrades < 10 {
		errs = append(errs, "insufficient trade sample size (< 10 trades)")
	}
	return errs
}

func equityCurveErrors(curve []models.EquityPoint) []string {
	var errs []string
	if len(curve) < 2 {
		errs = append(errs, "equity curve must have at least 2 data points")
	}

	nonPositive := 0
	for _, p := range curve {
		if p.Value <= 0 || !finite(p.Value) {
			nonPositive++
		}
	}
	if nonPositive > 0 {
		errs = append(errs, fmt.Sprintf("found %d negative or zero equity values", nonPositive))
	}

	for i := 1; i < len(curve); i++ {
		if !curve[i].Timestamp.After(curve[i-1].Timestamp) {
			errs = append(errs, fmt.Sprintf("equity curve timestamps not in ascending order at index %d", i))
			break
		}
	}
	return errs
}
