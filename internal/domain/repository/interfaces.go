package repository

import (
	"context"
	"errors"
	"time"

	"Heliox/internal/domain/models"
)

var (
	// ErrRunNotFound is returned when a run id is unknown to the store.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunExists is returned when creating a run whose id is taken.
	ErrRunExists = errors.New("run already exists")

	// ErrInvalidTransition is returned when a status change would leave
	// the lifecycle lattice.
	ErrInvalidTransition = errors.New("invalid run status transition")

	// ErrSeqConflict is returned when an event insert loses the race for
	// its (run_id, seq) slot. Callers re-read the max and retry.
	ErrSeqConflict = errors.New("event sequence conflict")
)

// RunStore persists run lifecycle state. Status updates must be atomic:
// the store compares the current status against the lattice inside the
// same operation that writes the new one, so two racing transitions can
// never both succeed.
type RunStore interface {
	Create(ctx context.Context, run *models.Run) error
	Get(ctx context.Context, runID string) (*models.Run, error)
	// Transition moves the run to status iff the lattice permits it from
	// the current status, recording started/finished timestamps as
	// appropriate. Returns the run as of the attempt and
	// ErrInvalidTransition on a refused move.
	Transition(ctx context.Context, runID string, to models.RunStatus, at time.Time) (*models.Run, error)
	// UpdateProgress records the current phase and progress fraction.
	UpdateProgress(ctx context.Context, runID string, phase models.Phase, progress float64) error
	// SetOutcome records the error message and summary metrics of a
	// finished run.
	SetOutcome(ctx context.Context, runID string, errMsg string, metrics map[string]float64) error
}

// EventStore persists the append-only ledger. Insert must enforce
// uniqueness of (run_id, seq); a collision yields ErrSeqConflict.
type EventStore interface {
	Insert(ctx context.Context, e *models.Event) error
	MaxSeq(ctx context.Context, runID string) (uint64, error)
	List(ctx context.Context, runID string, afterSeq uint64, limit int) ([]*models.Event, error)
	Progress(ctx context.Context, runID string) (count uint64, lastSeq uint64, err error)
}

// Publisher mirrors committed ledger events to downstream consumers.
type Publisher interface {
	PublishEvent(ctx context.Context, e *models.Event) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordRunStarted(riskTier string)
	RecordRunFinished(status string)
	RecordEventAppended(eventType string)
	RecordValidationFailure(entity string)
	RecordPhaseDuration(phase string, seconds float64)
	RecordError(kind string)
}
