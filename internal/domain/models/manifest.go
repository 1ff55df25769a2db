package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// PackageMetadata records how a strategy package was produced.
type PackageMetadata struct {
	Prompt           string   `json:"prompt"`
	Model            string   `json:"model"`
	Temperature      float64  `json:"temperature"`
	Iterations       int      `json:"iterations"`
	TotalTimeSeconds int64    `json:"total_time_seconds"`
	Tags             []string `json:"tags,omitempty"`
}

// PackageManifest is the final artifact of the pipeline: a sealed bundle
// of the blueprint and its backtest evidence.
type PackageManifest struct {
	Version         string           `json:"version"`
	FormatVersion   string           `json:"format_version"`
	StrategyID      string           `json:"strategy_id"`
	CreatedAt       time.Time        `json:"created_at"`
	Blueprint       Blueprint        `json:"blueprint"`
	BacktestResults []BacktestResult `json:"backtest_results"`
	Metadata        PackageMetadata  `json:"metadata"`
	Checksum        string           `json:"checksum"`
}

// Seal computes and stores the manifest checksum over every field except
// the checksum itself.
func (m *PackageManifest) Seal() error {
	sum, err := m.digest()
	if err != nil {
		return err
	}
	m.Checksum = sum
	return nil
}

// VerifyChecksum reports whether the stored checksum matches the manifest
// contents.
func (m *PackageManifest) VerifyChecksum() (bool, error) {
	sum, err := m.digest()
	if err != nil {
		return false, err
	}
	return sum == m.Checksum, nil
}

func (m *PackageManifest) digest() (string, error) {
	clone := *m
	clone.Checksum = ""
	b, err := json.Marshal(&clone)
	if err != nil {
		return "", fmt.Errorf("manifest digest: %w", err)
	}
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:]), nil
}
