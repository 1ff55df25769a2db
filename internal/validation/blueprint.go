package validation

import (
	"fmt"
	"math"

	"Heliox/internal/domain/models"
)

// ValidateBlueprint runs a blueprint through both tiers. Risk-cap breaches
// are errors; high complexity is only a warning.
func ValidateBlueprint(bp *models.Blueprint) *Result {
	res := newResult()

	// Structural tier.
	if bp.ID == "" {
		res.addError("blueprint id is required")
	}
	if bp.Name == "" {
		res.addError("blueprint name is required")
	}
	if len(bp.Indicators) == 0 {
		res.addError("blueprint must declare at least one indicator")
	}
	if len(bp.Rules) == 0 {
		res.addError("blueprint must declare at least one trading rule")
	}
	for i, ind := range bp.Indicators {
		if !ind.Type.Valid() {
			res.addError(fmt.Sprintf("indicator %d has unknown type %q", i, ind.Type))
		}
		if ind.Timeframe != "" && !ValidTimeframe(ind.Timeframe) {
			res.addError(fmt.Sprintf("indicator %d has invalid timeframe %q", i, ind.Timeframe))
		}
	}
	for i, rule := range bp.Rules {
		if !rule.Action.Valid() {
			res.addError(fmt.Sprintf("rule %d has unknown action %q", i, rule.Action))
		}
		if !ValidFraction(rule.Size) {
			res.addError(fmt.Sprintf("rule %d position size %v outside [0,1]", i, rule.Size))
		}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"max_position_size", bp.Constraints.MaxPositionSize},
		{"stop_loss", bp.Constraints.StopLoss},
		{"max_daily_loss", bp.Constraints.MaxDailyLoss},
		{"max_drawdown", bp.Constraints.MaxDrawdown},
	} {
		if !ValidFraction(f.value) {
			res.addError(fmt.Sprintf("constraint %s %v outside [0,1]", f.name, f.value))
		}
	}
	for i, sym := range bp.Assets {
		if !ValidSymbol(sym) {
			res.addError(fmt.Sprintf("invalid symbol format at index %d: %s", i, sym))
		}
	}
	for i, tf := range bp.Timeframes {
		if !ValidTimeframe(tf) {
			res.addError(fmt.Sprintf("invalid timeframe at index %d: %s", i, tf))
		}
	}

	// Business-rule tier: risk caps.
	res.addErrors(riskConstraintErrors(bp.Constraints))

	// Complexity is advisory only.
	complexity := ComplexityScore(bp)
	if complexity > 8 {
		res.addWarning(fmt.Sprintf("strategy complexity is high (%d/10) - consider simplifying", complexity))
	}

	res.Metadata["complexity"] = complexity
	res.Metadata["indicator_count"] = len(bp.Indicators)
	res.Metadata["rule_count"] = len(bp.Rules)
	return res
}

func riskConstraintErrors(c models.RiskConstraints) []string {
	var errs []string
	if c.MaxPositionSize > 0.5 {
		errs = append(errs, "maximum position size should not exceed 50% of portfolio")
	}
	if c.StopLoss > 0.2 {
		errs = append(errs, "stop loss should not exceed 20%")
	}
	if c.MaxDailyLoss > 0.1 {
		errs = append(errs, "maximum daily loss should not exceed 10%")
	}
	if c.MaxDrawdown > 0.3 {
		errs = append(errs, "maximum drawdown should not exceed 30%")
	}
	return errs
}

// ComplexityScore rates a blueprint from 1 to 10 based on indicator, rule,
// timeframe and asset counts.
func ComplexityScore(bp *models.Blueprint) int {
	score := 1.0
	score += math.Min(float64(len(bp.Indicators))*0.5, 3)
	score += math.Min(float64(len(bp.Rules))*0.3, 2)
	if len(bp.Timeframes) > 1 {
		score += float64(len(bp.Timeframes)) * 0.2
	}
	if len(bp.Assets) > 1 {
		score += math.Min(float64(len(bp.Assets))*0.1, 1)
	}
	if score > 10 {
		score = 10
	}
	return int(math.Round(score))
}
