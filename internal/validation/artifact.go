package validation

import (
	"fmt"

	"Heliox/internal/domain/models"
)

// ValidateArtifact dispatches a phase output to the validator for its
// concrete type. Unknown types fail closed: the pipeline must never pass
// an unchecked artifact forward.
func ValidateArtifact(artifact any) *Result {
	switch v := artifact.(type) {
	case *models.Blueprint:
		return ValidateBlueprint(v)
	case *models.BacktestResult:
		return ValidateBacktest(v)
	case *models.Portfolio:
		return ValidatePortfolio(v)
	case *models.Order:
		return ValidateOrder(v)
	case *models.PackageManifest:
		return ValidateManifest(v)
	case []models.Strategy:
		return ValidateStrategies(v)
	default:
		res := newResult()
		res.addError(fmt.Sprintf("no validator registered for artifact type %T", artifact))
		return res
	}
}

// ValidateStrategies checks a synthesized strategy list.
func ValidateStrategies(list []models.Strategy) *Result {
	res := newResult()
	if len(list) == 0 {
		res.addError("synthesis produced no strategies")
	}
	for i, s := range list {
		if s.Name == "" {
			res.addError(fmt.Sprintf("strategy %d has no name", i))
		}
		if len(s.Rules) == 0 {
			res.addError(fmt.Sprintf("strategy %d has no rules", i))
		}
	}
	res.Metadata["strategy_count"] = len(list)
	return res
}

// ValidateManifest checks a sealed package manifest: embedded blueprint
// and backtests must themselves be valid and the checksum must match.
func ValidateManifest(m *models.PackageManifest) *Result {
	res := newResult()

	if m.StrategyID == "" {
		res.addError("manifest strategy id is required")
	}
	if m.Version == "" {
		res.addError("manifest version is required")
	}
	if len(m.BacktestResults) == 0 {
		res.addError("manifest must include at least one backtest result")
	}

	if bp := ValidateBlueprint(&m.Blueprint); !bp.Valid {
		for _, e := range bp.Errors {
			res.addError("blueprint: " + e)
		}
	}
	for i := range m.BacktestResults {
		if bt := ValidateBacktest(&m.BacktestResults[i]); !bt.Valid {
			for _, e := range bt.Errors {
				res.addError(fmt.Sprintf("backtest %d: %s", i, e))
			}
		}
	}

	if m.Checksum == "" {
		res.addError("manifest checksum is required")
	} else if ok, err := m.VerifyChecksum(); err != nil {
		res.addError(fmt.Sprintf("manifest checksum verification failed: %v", err))
	} else if !ok {
		res.addError("manifest checksum does not match contents")
	}

	return res
}
