package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/domain/repository"
)

// SQLStore implements RunStore and EventStore over a database/sql handle.
// The events table carries a uniqueness key on (run_id, seq); sequence
// allocation happens inside a serializable transaction and a losing
// concurrent insert surfaces as ErrSeqConflict so the ledger can retry
// with a freshly read maximum. Isolation alone is not trusted to prevent
// the lost-update race; the unique key is the backstop.
type SQLStore struct {
	db         *sql.DB
	runsTable  string
	eventTable string
}

// NewSQLStore creates a store over db using the given table names.
func NewSQLStore(db *sql.DB, runsTable, eventsTable string) *SQLStore {
	return &SQLStore{db: db, runsTable: runsTable, eventTable: eventsTable}
}

// Schema returns the idempotent DDL for the run and event tables.
func Schema(database, runsTable, eventsTable string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id String,
			status String,
			risk_tier String,
			prompt String,
			current_phase String,
			progress Float64,
			error_message String,
			metrics String,
			created_at DateTime64(3),
			started_at Nullable(DateTime64(3)),
			finished_at Nullable(DateTime64(3))
		) ENGINE = ReplacingMergeTree ORDER BY id`, runsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id String,
			seq UInt64,
			phase String,
			type String,
			payload String,
			ts DateTime64(3)
		) ENGINE = ReplacingMergeTree ORDER BY (run_id, seq)`, eventsTable),
	}
}

func (s *SQLStore) Create(ctx context.Context, run *models.Run) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT count() FROM %s WHERE id = ?", s.runsTable), run.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("run exists check: %w", err)
	}
	if exists > 0 {
		return repository.ErrRunExists
	}

	return s.upsertRunTx(ctx, s.db, run)
}

func (s *SQLStore) Get(ctx context.Context, runID string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, status, risk_tier, prompt, current_phase, progress, error_message, metrics, created_at, started_at, finished_at
			FROM %s FINAL WHERE id = ?`, s.runsTable), runID)
	return scanRun(row)
}

func scanRun(row *sql.Row) (*models.Run, error) {
	var (
		run                  models.Run
		status, tier, phase  string
		metricsJSON          string
		startedAt, finishedA sql.NullTime
	)
	err := row.Scan(&run.ID, &status, &tier, &run.Prompt, &phase,
		&run.Progress, &run.ErrorMessage, &metricsJSON, &run.CreatedAt, &startedAt, &finishedA)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = models.RunStatus(status)
	run.RiskTier = models.RiskTier(tier)
	run.CurrentPhase = models.Phase(phase)
	if metricsJSON != "" {
		if err := json.Unmarshal([]byte(metricsJSON), &run.Metrics); err != nil {
			return nil, fmt.Errorf("decode run metrics: %w", err)
		}
	}
	if startedAt.Valid {
		t := startedAt.Time
		run.StartedAt = &t
	}
	if finishedA.Valid {
		t := finishedA.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func (s *SQLStore) Transition(ctx context.Context, runID string, to models.RunStatus, at time.Time) (*models.Run, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, status, risk_tier, prompt, current_phase, progress, error_message, metrics, created_at, started_at, finished_at
			FROM %s FINAL WHERE id = ?`, s.runsTable), runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	if !run.Status.CanTransition(to) {
		return run, repository.ErrInvalidTransition
	}

	run.Status = to
	switch {
	case to == models.RunStatusRunning:
		t := at
		run.StartedAt = &t
	case to.Terminal():
		t := at
		run.FinishedAt = &t
	}

	if err := s.upsertRunTx(ctx, tx, run); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return run, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// upsertRunTx writes the full run row; the ReplacingMergeTree key on id
// collapses older versions.
func (s *SQLStore) upsertRunTx(ctx context.Context, ex execer, run *models.Run) error {
	metricsJSON := ""
	if len(run.Metrics) > 0 {
		b, err := json.Marshal(run.Metrics)
		if err != nil {
			return fmt.Errorf("encode run metrics: %w", err)
		}
		metricsJSON = string(b)
	}
	_, err := ex.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s
			(id, status, risk_tier, prompt, current_phase, progress, error_message, metrics, created_at, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.runsTable),
		run.ID, string(run.Status), string(run.RiskTier), run.Prompt,
		string(run.CurrentPhase), run.Progress, run.ErrorMessage, metricsJSON,
		run.CreatedAt, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateProgress(ctx context.Context, runID string, phase models.Phase, progress float64) error {
	run, err := s.Get(ctx, runID)
	if err != nil {
		return err
	}
	run.CurrentPhase = phase
	run.Progress = progress
	return s.upsertRunTx(ctx, s.db, run)
}

func (s *SQLStore) SetOutcome(ctx context.Context, runID string, errMsg string, metrics map[string]float64) error {
	run, err := s.Get(ctx, runID)
	if err != nil {
		return err
	}
	run.ErrorMessage = errMsg
	if metrics != nil {
		run.Metrics = metrics
	}
	return s.upsertRunTx(ctx, s.db, run)
}

func (s *SQLStore) Insert(ctx context.Context, e *models.Event) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin event tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Re-check the slot inside the transaction. The (run_id, seq) key is
	// the final arbiter if two writers pass this check concurrently.
	var taken int
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT count() FROM %s WHERE run_id = ? AND seq = ?", s.eventTable),
		e.RunID, e.Seq).Scan(&taken)
	if err != nil {
		return fmt.Errorf("event slot check: %w", err)
	}
	if taken > 0 {
		return repository.ErrSeqConflict
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (run_id, seq, phase, type, payload, ts) VALUES (?, ?, ?, ?, ?, ?)", s.eventTable),
		e.RunID, e.Seq, string(e.Phase), string(e.Type), string(e.Payload), e.Timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrSeqConflict
		}
		return fmt.Errorf("insert event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrSeqConflict
		}
		return fmt.Errorf("commit event: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") ||
		strings.Contains(msg, "conflict")
}

func (s *SQLStore) MaxSeq(ctx context.Context, runID string) (uint64, error) {
	var max uint64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(seq), 0) FROM %s WHERE run_id = ?", s.eventTable),
		runID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return max, nil
}

func (s *SQLStore) List(ctx context.Context, runID string, afterSeq uint64, limit int) ([]*models.Event, error) {
	q := fmt.Sprintf(`SELECT run_id, seq, phase, type, payload, ts
		FROM %s WHERE run_id = ? AND seq > ? ORDER BY seq ASC`, s.eventTable)
	args := []any{runID, afterSeq}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		var (
			e              models.Event
			phase, typ, pl string
		)
		if err := rows.Scan(&e.RunID, &e.Seq, &phase, &typ, &pl, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Phase = models.Phase(phase)
		e.Type = models.EventType(typ)
		e.Payload = []byte(pl)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *SQLStore) Progress(ctx context.Context, runID string) (uint64, uint64, error) {
	var count, lastSeq uint64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT count(), COALESCE(MAX(seq), 0) FROM %s WHERE run_id = ?", s.eventTable),
		runID).Scan(&count, &lastSeq)
	if err != nil {
		return 0, 0, fmt.Errorf("event progress: %w", err)
	}
	return count, lastSeq, nil
}
