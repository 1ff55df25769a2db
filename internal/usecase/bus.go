package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"Heliox/internal/domain/models"
)

// Bus wraps the ledger with typed emit helpers, one per event variant.
type Bus struct {
	ledger *Ledger
}

// NewBus creates a bus over the ledger.
func NewBus(ledger *Ledger) *Bus {
	return &Bus{ledger: ledger}
}

// Status emits a status event for a stage starting or progressing.
func (b *Bus) Status(ctx context.Context, runID string, phase models.Phase, stage string, progress float64, msg string) (uint64, error) {
	return b.ledger.Append(ctx, runID, phase, models.EventStatus, models.StatusPayload{
		Stage:    stage,
		Progress: progress,
		Message:  msg,
	})
}

// Metric emits a single named measurement.
func (b *Bus) Metric(ctx context.Context, runID string, phase models.Phase, name string, value float64, unit, category string) (uint64, error) {
	return b.ledger.Append(ctx, runID, phase, models.EventMetric, models.MetricPayload{
		Name:     name,
		Value:    value,
		Unit:     unit,
		Category: category,
	})
}

// Artifact emits a validated phase output.
func (b *Bus) Artifact(ctx context.Context, runID string, phase models.Phase, name, kind string, data any) (uint64, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("bus artifact: marshal %s: %w", name, err)
	}
	return b.ledger.Append(ctx, runID, phase, models.EventArtifact, models.ArtifactPayload{
		Name: name,
		Kind: kind,
		Data: raw,
	})
}

// Error emits a structured failure record.
func (b *Bus) Error(ctx context.Context, runID string, phase models.Phase, code, msg string, details map[string]any) (uint64, error) {
	return b.ledger.Append(ctx, runID, phase, models.EventError, models.ErrorPayload{
		Code:    code,
		Message: msg,
		Phase:   phase,
		Details: details,
	})
}

// Final emits the closing event of a run.
func (b *Bus) Final(ctx context.Context, runID string, phase models.Phase, success bool, metrics map[string]float64, durationMS int64) (uint64, error) {
	return b.ledger.Append(ctx, runID, phase, models.EventFinal, models.FinalPayload{
		Success:    success,
		Metrics:    metrics,
		DurationMS: durationMS,
	})
}
