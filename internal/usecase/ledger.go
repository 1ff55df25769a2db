package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/domain/repository"
	xlogger "Heliox/pkg/logger"
)

// maxAppendRetries bounds how often an append re-reads the max sequence
// after losing the (run_id, seq) slot to a concurrent writer.
const maxAppendRetries = 5

// Ledger is the append-only, per-run ordered event log. Sequence numbers
// are allocated read-max-then-insert; the store's uniqueness constraint on
// (run_id, seq) decides races and the loser retries with a fresh read, so
// numbers never collide and never skip.
type Ledger struct {
	events    repository.EventStore
	publisher repository.Publisher
	metrics   repository.Metrics
	logger    *xlogger.Logger
	now       func() time.Time
}

// NewLedger creates a ledger over the given event store. publisher may be
// nil when no downstream mirror is configured.
func NewLedger(events repository.EventStore, publisher repository.Publisher, metrics repository.Metrics, logger *xlogger.Logger) *Ledger {
	return &Ledger{
		events:    events,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Append validates, sequences and persists one event, returning its
// sequence number. A storage failure is returned to the caller; the event
// is never dropped silently.
func (l *Ledger) Append(ctx context.Context, runID string, phase models.Phase, t models.EventType, payload any) (uint64, error) {
	raw, err := models.EncodePayload(t, payload)
	if err != nil {
		return 0, err
	}

	var lastErr error
	for attempt := 0; attempt < maxAppendRetries; attempt++ {
		max, err := l.events.MaxSeq(ctx, runID)
		if err != nil {
			return 0, fmt.Errorf("ledger append: read max seq: %w", err)
		}

		e := &models.Event{
			RunID:     runID,
			Seq:       max + 1,
			Phase:     phase,
			Type:      t,
			Payload:   raw,
			Timestamp: l.now().UTC(),
		}
		if err := models.ValidateEvent(e); err != nil {
			return 0, fmt.Errorf("ledger append: %w", err)
		}

		err = l.events.Insert(ctx, e)
		if err == nil {
			if l.metrics != nil {
				l.metrics.RecordEventAppended(string(t))
			}
			l.mirror(ctx, e)
			return e.Seq, nil
		}
		if !errors.Is(err, repository.ErrSeqConflict) {
			return 0, fmt.Errorf("ledger append: %w", err)
		}
		lastErr = err
	}
	return 0, fmt.Errorf("ledger append: run %s contended beyond %d attempts: %w", runID, maxAppendRetries, lastErr)
}

// mirror forwards a committed event downstream. Failures are logged but do
// not fail the append; the ledger itself is the source of truth.
func (l *Ledger) mirror(ctx context.Context, e *models.Event) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishEvent(ctx, e); err != nil {
		if l.metrics != nil {
			l.metrics.RecordError("publish")
		}
		l.logger.Warn("event mirror publish failed",
			xlogger.String("run_id", e.RunID),
			xlogger.Uint64("seq", e.Seq),
			xlogger.Error(err))
	}
}

// List returns the run's events ordered by sequence ascending.
func (l *Ledger) List(ctx context.Context, runID string, afterSeq uint64, limit int) ([]*models.Event, error) {
	return l.events.List(ctx, runID, afterSeq, limit)
}

// Progress returns the event count and last sequence number for a run.
func (l *Ledger) Progress(ctx context.Context, runID string) (count uint64, lastSeq uint64, err error) {
	return l.events.Progress(ctx, runID)
}
