package validation

import (
	"fmt"
	"math"

	"Heliox/internal/domain/models"
)

// allocationTolerance is how far the allocation sum may drift from 100%.
const allocationTolerance = 0.01

// ValidatePortfolio checks portfolio structure and allocation rules.
func ValidatePortfolio(p *models.Portfolio) *Result {
	res := newResult()

	// Structural tier.
	if p.ID == "" {
		res.addError("portfolio id is required")
	}
	if p.Name == "" {
		res.addError("portfolio name is required")
	}
	if len(p.Assets) == 0 {
		res.addError("portfolio must hold at least one asset")
	}
	if p.TotalValue <= 0 || !finite(p.TotalValue) {
		res.addError("portfolio total value must be positive and finite")
	}
	if p.RiskTolerance != "" && !p.RiskTolerance.Valid() {
		res.addError(fmt.Sprintf("unknown risk tolerance %q", p.RiskTolerance))
	}

	// Business-rule tier: allocation policy.
	total := 0.0
	for i, asset := range p.Assets {
		total += asset.AllocationPercent

		if asset.AllocationPercent <= 0 {
			res.addError(fmt.Sprintf("asset %d has non-positive allocation", i))
		}
		if asset.AllocationPercent > 50 {
			res.addError(fmt.Sprintf("asset %d allocation exceeds 50%% - concentration risk", i))
		}
		if asset.MaxAllocationPercent > 0 && asset.AllocationPercent > asset.MaxAllocationPercent {
			res.addError(fmt.Sprintf("asset %d allocation exceeds its maximum limit", i))
		}
	}

	if len(p.Assets) > 0 && math.Abs(total-100) > allocationTolerance {
		res.addError(fmt.Sprintf("portfolio allocation sums to %.2f%% instead of 100%%", total))
	}

	res.Metadata["allocation_total"] = total
	res.Metadata["asset_count"] = len(p.Assets)
	return res
}
