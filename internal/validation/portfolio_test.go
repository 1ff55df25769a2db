package validation

import (
	"testing"
	"time"

	"Heliox/internal/domain/models"
)

func samplePortfolio(allocations ...float64) *models.Portfolio {
	assets := make([]models.PortfolioAsset, len(allocations))
	for i, a := range allocations {
		assets[i] = models.PortfolioAsset{
			ID:                "asset-" + string(rune('a'+i)),
			Name:              "Strategy " + string(rune('A'+i)),
			PackageURI:        "pkg://strategies/sample",
			AllocationPercent: a,
			Status:            models.AssetActive,
			AddedAt:           time.Now().UTC(),
		}
	}
	return &models.Portfolio{
		ID:            "pf-1",
		Name:          "Core",
		Assets:        assets,
		BaseCurrency:  "USD",
		RiskTolerance: models.RiskTierBalanced,
		TotalValue:    250000,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func TestValidatePortfolioExactSum(t *testing.T) {
	res := ValidatePortfolio(samplePortfolio(40, 35, 25))
	if !res.Valid {
		t.Fatalf("expected valid, errors: %v", res.Errors)
	}
}

func TestValidatePortfolioWithinTolerance(t *testing.T) {
	// 0.005 off, inside the 0.01 tolerance.
	res := ValidatePortfolio(samplePortfolio(40, 35, 25.005))
	if !res.Valid {
		t.Fatalf("sum within tolerance should pass, errors: %v", res.Errors)
	}
}

func TestValidatePortfolioSumDrift(t *testing.T) {
	res := ValidatePortfolio(samplePortfolio(40, 35, 24.5))
	if res.Valid {
		t.Fatalf("sum of 99.5 should fail")
	}
	found := false
	for _, e := range res.Errors {
		if e == "portfolio allocation sums to 99.50% instead of 100%" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing sum error, got %v", res.Errors)
	}
}

func TestValidatePortfolioConcentration(t *testing.T) {
	res := ValidatePortfolio(samplePortfolio(60, 40))
	if res.Valid {
		t.Fatalf("60%% single asset should fail concentration check")
	}
}

func TestValidatePortfolioNonPositiveAllocation(t *testing.T) {
	p := samplePortfolio(50, 50)
	p.Assets[0].AllocationPercent = 0
	res := ValidatePortfolio(p)
	if res.Valid {
		t.Fatalf("zero allocation should fail")
	}
}

func TestValidatePortfolioMaxLimit(t *testing.T) {
	p := samplePortfolio(60, 40)
	p.Assets[0].AllocationPercent = 45
	p.Assets[1].AllocationPercent = 55 // also trips concentration
	p.Assets[0].MaxAllocationPercent = 30
	res := ValidatePortfolio(p)
	if res.Valid {
		t.Fatalf("allocation above per-asset maximum should fail")
	}
}

func TestValidatePortfolioStructural(t *testing.T) {
	p := samplePortfolio(100)
	p.ID = ""
	p.TotalValue = 0
	res := ValidatePortfolio(p)
	if res.Valid {
		t.Fatalf("missing id and zero value should fail")
	}
	if len(res.Errors) < 2 {
		t.Fatalf("expected both structural errors, got %v", res.Errors)
	}
}
