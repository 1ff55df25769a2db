package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/domain/repository"
)

// MemoryStore implements RunStore and EventStore in process memory. It is
// the default backend for development and tests. A single mutex guards run
// state; per-run event slices keep appends for different runs from
// contending on anything beyond the map lookup.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]*models.Run
	events map[string][]*models.Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:   make(map[string]*models.Run),
		events: make(map[string][]*models.Event),
	}
}

func (s *MemoryStore) Create(_ context.Context, run *models.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return repository.ErrRunExists
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, runID string) (*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, repository.ErrRunNotFound
	}
	cp := *run
	return &cp, nil
}

func (s *MemoryStore) Transition(_ context.Context, runID string, to models.RunStatus, at time.Time) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, repository.ErrRunNotFound
	}
	if !run.Status.CanTransition(to) {
		cp := *run
		return &cp, repository.ErrInvalidTransition
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
	cp := *run
	return &cp, nil
}

func (s *MemoryStore) UpdateProgress(_ context.Context, runID string, phase models.Phase, progress float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return repository.ErrRunNotFound
	}
	run.CurrentPhase = phase
	run.Progress = progress
	return nil
}

func (s *MemoryStore) SetOutcome(_ context.Context, runID string, errMsg string, metrics map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return repository.ErrRunNotFound
	}
	run.ErrorMessage = errMsg
	if metrics != nil {
		run.Metrics = metrics
	}
	return nil
}

func (s *MemoryStore) Insert(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.events[e.RunID]
	for _, existing := range list {
		if existing.Seq == e.Seq {
			return repository.ErrSeqConflict
		}
	}
	cp := *e
	s.events[e.RunID] = append(list, &cp)
	return nil
}

func (s *MemoryStore) MaxSeq(_ context.Context, runID string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max uint64
	for _, e := range s.events[runID] {
		if e.Seq > max {
			max = e.Seq
		}
	}
	return max, nil
}

func (s *MemoryStore) List(_ context.Context, runID string, afterSeq uint64, limit int) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Event, 0, len(s.events[runID]))
	for _, e := range s.events[runID] {
		if e.Seq > afterSeq {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Progress(_ context.Context, runID string) (uint64, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lastSeq uint64
	for _, e := range s.events[runID] {
		if e.Seq > lastSeq {
			lastSeq = e.Seq
		}
	}
	return uint64(len(s.events[runID])), lastSeq, nil
}
