package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Heliox/internal/domain/models"
	domrepo "Heliox/internal/domain/repository"
)

func seedRun(t *testing.T, s *MemoryStore, id string) *models.Run {
	t.Helper()
	run := &models.Run{
		ID:        id,
		Status:    models.RunStatusPending,
		RiskTier:  models.RiskTierBalanced,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Create(context.Background(), run); err != nil {
		t.Fatalf("create: %v", err)
	}
	return run
}

func TestMemoryStoreCreateDuplicate(t *testing.T) {
	s := NewMemoryStore()
	seedRun(t, s, "tr_20250114_aaaaaa")
	err := s.Create(context.Background(), &models.Run{ID: "tr_20250114_aaaaaa"})
	if !errors.Is(err, domrepo.ErrRunExists) {
		t.Fatalf("expected ErrRunExists, got %v", err)
	}
}

func TestMemoryStoreGetCopies(t *testing.T) {
	s := NewMemoryStore()
	seedRun(t, s, "tr_20250114_aaaaaa")

	got, err := s.Get(context.Background(), "tr_20250114_aaaaaa")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Status = models.RunStatusFailed

	again, _ := s.Get(context.Background(), "tr_20250114_aaaaaa")
	if again.Status != models.RunStatusPending {
		t.Fatalf("store state mutated through returned copy")
	}

	if _, err := s.Get(context.Background(), "tr_20250114_zzzzzz"); !errors.Is(err, domrepo.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestMemoryStoreTransition(t *testing.T) {
	s := NewMemoryStore()
	seedRun(t, s, "tr_20250114_aaaaaa")
	ctx := context.Background()
	at := time.Now().UTC()

	run, err := s.Transition(ctx, "tr_20250114_aaaaaa", models.RunStatusRunning, at)
	if err != nil {
		t.Fatalf("transition to running: %v", err)
	}
	if run.StartedAt == nil || !run.StartedAt.Equal(at) {
		t.Fatalf("started_at not recorded")
	}

	// Illegal transition returns the run as of the attempt.
	run, err = s.Transition(ctx, "tr_20250114_aaaaaa", models.RunStatusRunning, at)
	if !errors.Is(err, domrepo.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if run == nil || run.Status != models.RunStatusRunning {
		t.Fatalf("expected run snapshot alongside the error")
	}

	run, err = s.Transition(ctx, "tr_20250114_aaaaaa", models.RunStatusComplete, at)
	if err != nil {
		t.Fatalf("transition to complete: %v", err)
	}
	if run.FinishedAt == nil {
		t.Fatalf("finished_at not recorded")
	}
}

func TestMemoryStoreInsertSeqConflict(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	e := &models.Event{RunID: "tr_20250114_aaaaaa", Seq: 1, Phase: models.PhaseBlueprint, Type: models.EventStatus}
	if err := s.Insert(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, e); !errors.Is(err, domrepo.ErrSeqConflict) {
		t.Fatalf("expected ErrSeqConflict, got %v", err)
	}

	max, err := s.MaxSeq(ctx, "tr_20250114_aaaaaa")
	if err != nil || max != 1 {
		t.Fatalf("max seq = %d, %v", max, err)
	}
}

func TestMemoryStoreListOrderAndLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, seq := range []uint64{3, 1, 2, 5, 4} {
		e := &models.Event{RunID: "tr_20250114_aaaaaa", Seq: seq, Type: models.EventStatus}
		if err := s.Insert(ctx, e); err != nil {
			t.Fatalf("insert seq %d: %v", seq, err)
		}
	}

	events, err := s.List(ctx, "tr_20250114_aaaaaa", 1, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []uint64{2, 3, 4} {
		if events[i].Seq != want {
			t.Fatalf("event %d seq = %d, want %d", i, events[i].Seq, want)
		}
	}

	count, last, err := s.Progress(ctx, "tr_20250114_aaaaaa")
	if err != nil || count != 5 || last != 5 {
		t.Fatalf("progress = %d/%d, %v", count, last, err)
	}
}

func TestMemoryStoreConcurrentRuns(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := []string{"tr_20250114_aaaaaa", "tr_20250114_bbbbbb", "tr_20250114_cccccc"}
	for _, id := range ids {
		wg.Add(1)
		go func(runID string) {
			defer wg.Done()
			for seq := uint64(1); seq <= 50; seq++ {
				e := &models.Event{RunID: runID, Seq: seq, Type: models.EventStatus}
				if err := s.Insert(ctx, e); err != nil {
					t.Errorf("insert %s/%d: %v", runID, seq, err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		count, last, err := s.Progress(ctx, id)
		if err != nil || count != 50 || last != 50 {
			t.Fatalf("%s progress = %d/%d, %v", id, count, last, err)
		}
	}
}
