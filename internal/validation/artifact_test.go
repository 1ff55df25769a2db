package validation

import (
	"testing"
	"time"

	"Heliox/internal/domain/models"
)

func TestValidateArtifactDispatch(t *testing.T) {
	if res := ValidateArtifact(sampleBlueprint()); !res.Valid {
		t.Fatalf("blueprint dispatch failed: %v", res.Errors)
	}
	if res := ValidateArtifact(sampleBacktest()); !res.Valid {
		t.Fatalf("backtest dispatch failed: %v", res.Errors)
	}
	if res := ValidateArtifact(sampleOrder()); !res.Valid {
		t.Fatalf("order dispatch failed: %v", res.Errors)
	}
}

func TestValidateArtifactUnknownTypeFailsClosed(t *testing.T) {
	res := ValidateArtifact(42)
	if res.Valid {
		t.Fatalf("unknown artifact type must fail")
	}
	res = ValidateArtifact(nil)
	if res.Valid {
		t.Fatalf("nil artifact must fail")
	}
}

func TestValidateStrategies(t *testing.T) {
	res := ValidateStrategies([]models.Strategy{
		{Name: "s1", Rules: []string{"buy on cross"}},
	})
	if !res.Valid {
		t.Fatalf("expected valid, errors: %v", res.Errors)
	}

	if res := ValidateStrategies(nil); res.Valid {
		t.Fatalf("empty strategy list should fail")
	}
	if res := ValidateStrategies([]models.Strategy{{Name: "", Rules: nil}}); res.Valid {
		t.Fatalf("nameless, ruleless strategy should fail")
	}
}

func sampleManifest(t *testing.T) *models.PackageManifest {
	t.Helper()
	m := &models.PackageManifest{
		Version:         "1.0.0",
		FormatVersion:   "1",
		StrategyID:      "bp_test",
		CreatedAt:       time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
		Blueprint:       *sampleBlueprint(),
		BacktestResults: []models.BacktestResult{*sampleBacktest()},
		Metadata: models.PackageMetadata{
			Prompt:      "momentum strategy",
			Model:       "architect-v1",
			Temperature: 0.7,
			Iterations:  3,
		},
	}
	if err := m.Seal(); err != nil {
		t.Fatalf("seal: %v", err)
	}
	return m
}

func TestValidateManifest(t *testing.T) {
	res := ValidateManifest(sampleManifest(t))
	if !res.Valid {
		t.Fatalf("expected valid, errors: %v", res.Errors)
	}
}

func TestValidateManifestChecksumMismatch(t *testing.T) {
	m := sampleManifest(t)
	m.Metadata.Iterations = 99
	res := ValidateManifest(m)
	if res.Valid {
		t.Fatalf("tampered manifest should fail checksum")
	}
}

func TestValidateManifestMissingChecksum(t *testing.T) {
	m := sampleManifest(t)
	m.Checksum = ""
	res := ValidateManifest(m)
	if res.Valid {
		t.Fatalf("unsealed manifest should fail")
	}
}

func TestValidateManifestNestedFailure(t *testing.T) {
	m := sampleManifest(t)
	m.Blueprint.Constraints.StopLoss = 0.5
	if err := m.Seal(); err != nil {
		t.Fatalf("seal: %v", err)
	}
	res := ValidateManifest(m)
	if res.Valid {
		t.Fatalf("manifest with invalid blueprint should fail")
	}
}
