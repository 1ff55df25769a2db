package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/domain/repository"
	internalrepo "Heliox/internal/repository"
)

// stubPhase lets tests script arbitrary phase behavior.
type stubPhase struct {
	tag  models.Phase
	name string
	run  func(ctx context.Context, st *PipelineState) (any, error)
}

func (p *stubPhase) Tag() models.Phase   { return p.tag }
func (p *stubPhase) Stage() string       { return "stub " + string(p.tag) }
func (p *stubPhase) ArtifactName() string { return p.name }
func (p *stubPhase) Run(ctx context.Context, st *PipelineState) (any, error) {
	return p.run(ctx, st)
}

func validBlueprint(runID string) *models.Blueprint {
	return &models.Blueprint{
		ID:      "bp_" + runID,
		Name:    "MA Crossover",
		Version: "1.0.0",
		Indicators: []models.Indicator{
			{Name: "fast_ma", Type: models.IndicatorMA, Timeframe: "1h"},
		},
		Rules: []models.TradingRule{
			{ID: "r1", Condition: "cross", Action: models.ActionBuy, Size: 0.1},
		},
		Constraints: models.RiskConstraints{MaxPositionSize: 0.25, StopLoss: 0.05},
		Assets:      []string{"BTC_USD"},
		Timeframes:  []string{"1h"},
		CreatedAt:   time.Now().UTC(),
	}
}

func validBacktest() *models.BacktestResult {
	now := time.Now().UTC()
	start := now.AddDate(-1, 0, 0)
	return &models.BacktestResult{
		Phase:          models.PhaseT1,
		PeriodStart:    start,
		PeriodEnd:      now,
		InitialCapital: 100000,
		FinalCapital:   115000,
		Metrics: models.BacktestMetrics{
			SharpeRatio: 1.3,
			MaxDrawdown: 0.1,
			TotalTrades: 80,
			WinRate:     0.6,
		},
		EquityCurve: []models.EquityPoint{
			{Timestamp: start, Value: 100000},
			{Timestamp: now, Value: 115000},
		},
	}
}

type orchFixture struct {
	store    *internalrepo.MemoryStore
	registry *Registry
	ledger   *Ledger
	orch     *Orchestrator
}

func newOrchFixture(t *testing.T, timeout time.Duration, phases ...Phase) *orchFixture {
	t.Helper()
	store := internalrepo.NewMemoryStore()
	l := testLogger(t)
	registry := NewRegistry(store, nil, l)
	ledger := NewLedger(store, nil, nil, l)
	orch, err := NewOrchestrator(registry, ledger, phases, nil, l, timeout)
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	return &orchFixture{store: store, registry: registry, ledger: ledger, orch: orch}
}

func (f *orchFixture) startRun(t *testing.T) string {
	t.Helper()
	run, err := f.registry.CreateRun(context.Background(), "test prompt here", models.RiskTierBalanced)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := f.orch.StartRun(context.Background(), run.ID, models.RunOptions{}); err != nil {
		t.Fatalf("start run: %v", err)
	}
	return run.ID
}

func (f *orchFixture) lastErrorCode(t *testing.T, runID string) string {
	t.Helper()
	events, err := f.ledger.List(context.Background(), runID, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type != models.EventError {
			continue
		}
		p, err := models.DecodePayload(models.EventError, events[i].Payload)
		if err != nil {
			t.Fatalf("decode error payload: %v", err)
		}
		return p.(models.ErrorPayload).Code
	}
	t.Fatalf("no error event for %s", runID)
	return ""
}

func TestNewOrchestratorRejectsUnorderedPhases(t *testing.T) {
	l := testLogger(t)
	store := internalrepo.NewMemoryStore()
	registry := NewRegistry(store, nil, l)
	ledger := NewLedger(store, nil, nil, l)
	_, err := NewOrchestrator(registry, ledger, []Phase{
		&stubPhase{tag: models.PhaseT1},
		&stubPhase{tag: models.PhaseT0},
	}, nil, l, time.Minute)
	if err == nil {
		t.Fatalf("out-of-order phases must be rejected")
	}
}

func TestOrchestratorHappyPath(t *testing.T) {
	design := &stubPhase{tag: models.PhaseBlueprint, name: "blueprint",
		run: func(_ context.Context, st *PipelineState) (any, error) {
			bp := validBlueprint(st.RunID)
			st.Blueprint = bp
			return bp, nil
		}}
	evaluate := &stubPhase{tag: models.PhaseT1, name: "backtest_result",
		run: func(_ context.Context, st *PipelineState) (any, error) {
			bt := validBacktest()
			st.Backtest = bt
			return bt, nil
		}}

	f := newOrchFixture(t, time.Minute, design, evaluate)
	runID := f.startRun(t)
	f.orch.Wait()

	run, err := f.registry.GetRun(context.Background(), runID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != models.RunStatusComplete {
		t.Fatalf("status = %s, want COMPLETE (error=%q)", run.Status, run.ErrorMessage)
	}
	if run.Metrics["sharpe_ratio"] != 1.3 {
		t.Fatalf("summary metrics not recorded: %v", run.Metrics)
	}

	events, err := f.ledger.List(context.Background(), runID, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Per phase: status, artifact, metric. Plus the closing final event.
	wantTypes := []models.EventType{
		models.EventStatus, models.EventArtifact, models.EventMetric,
		models.EventStatus, models.EventArtifact, models.EventMetric,
		models.EventFinal,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d", len(wantTypes), len(events))
	}
	for i, e := range events {
		if e.Seq != uint64(i+1) {
			t.Fatalf("seq gap at %d: %d", i, e.Seq)
		}
		if e.Type != wantTypes[i] {
			t.Fatalf("event %d type = %s, want %s", i, e.Type, wantTypes[i])
		}
	}

	final, _ := models.DecodePayload(models.EventFinal, events[len(events)-1].Payload)
	if !final.(models.FinalPayload).Success {
		t.Fatalf("final event should report success")
	}
}

func TestOrchestratorStartRunConflicts(t *testing.T) {
	idle := &stubPhase{tag: models.PhaseBlueprint, name: "blueprint",
		run: func(_ context.Context, st *PipelineState) (any, error) {
			return validBlueprint(st.RunID), nil
		}}
	f := newOrchFixture(t, time.Minute, idle)

	if err := f.orch.StartRun(context.Background(), "tr_20250114_zzzzzz", models.RunOptions{}); !errors.Is(err, repository.ErrRunNotFound) {
		t.Fatalf("unknown run: got %v", err)
	}

	runID := f.startRun(t)
	err := f.orch.StartRun(context.Background(), runID, models.RunOptions{})
	if !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("second start should conflict, got %v", err)
	}
	f.orch.Wait()
}

func TestOrchestratorPhaseFailure(t *testing.T) {
	boom := &stubPhase{tag: models.PhaseBlueprint, name: "blueprint",
		run: func(_ context.Context, _ *PipelineState) (any, error) {
			return nil, fmt.Errorf("engine unavailable")
		}}
	f := newOrchFixture(t, time.Minute, boom)
	runID := f.startRun(t)
	f.orch.Wait()

	run, _ := f.registry.GetRun(context.Background(), runID)
	if run.Status != models.RunStatusFailed {
		t.Fatalf("status = %s, want FAILED", run.Status)
	}
	if run.ErrorMessage == "" {
		t.Fatalf("error message not recorded")
	}
	if code := f.lastErrorCode(t, runID); code != CodePhaseExecution {
		t.Fatalf("error code = %s", code)
	}
}

func TestOrchestratorValidationFailure(t *testing.T) {
	invalid := &stubPhase{tag: models.PhaseBlueprint, name: "blueprint",
		run: func(_ context.Context, st *PipelineState) (any, error) {
			bp := validBlueprint(st.RunID)
			bp.Constraints.MaxPositionSize = 0.9 // breaches the 50% cap
			return bp, nil
		}}
	f := newOrchFixture(t, time.Minute, invalid)
	runID := f.startRun(t)
	f.orch.Wait()

	run, _ := f.registry.GetRun(context.Background(), runID)
	if run.Status != models.RunStatusFailed {
		t.Fatalf("status = %s, want FAILED", run.Status)
	}
	if code := f.lastErrorCode(t, runID); code != CodeValidation {
		t.Fatalf("error code = %s", code)
	}
}

func TestOrchestratorPanicRecovery(t *testing.T) {
	panicky := &stubPhase{tag: models.PhaseBlueprint, name: "blueprint",
		run: func(_ context.Context, _ *PipelineState) (any, error) {
			panic("fixture exploded")
		}}
	f := newOrchFixture(t, time.Minute, panicky)
	runID := f.startRun(t)
	f.orch.Wait()

	run, _ := f.registry.GetRun(context.Background(), runID)
	if run.Status != models.RunStatusFailed {
		t.Fatalf("status = %s, want FAILED", run.Status)
	}
	if code := f.lastErrorCode(t, runID); code != CodePanic {
		t.Fatalf("error code = %s", code)
	}
}

func TestOrchestratorTimeout(t *testing.T) {
	slow := &stubPhase{tag: models.PhaseBlueprint, name: "blueprint",
		run: func(ctx context.Context, _ *PipelineState) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
	f := newOrchFixture(t, 30*time.Millisecond, slow)
	runID := f.startRun(t)
	f.orch.Wait()

	run, _ := f.registry.GetRun(context.Background(), runID)
	if run.Status != models.RunStatusFailed {
		t.Fatalf("status = %s, want FAILED", run.Status)
	}
	if code := f.lastErrorCode(t, runID); code != CodeTimeout {
		t.Fatalf("error code = %s", code)
	}
}

func TestOrchestratorCancellationBetweenPhases(t *testing.T) {
	var f *orchFixture
	first := &stubPhase{tag: models.PhaseBlueprint, name: "blueprint",
		run: func(ctx context.Context, st *PipelineState) (any, error) {
			// Simulates an out-of-band cancel arriving mid-pipeline.
			if _, err := f.registry.CancelRun(ctx, st.RunID); err != nil {
				return nil, err
			}
			bp := validBlueprint(st.RunID)
			st.Blueprint = bp
			return bp, nil
		}}
	second := &stubPhase{tag: models.PhaseT1, name: "backtest_result",
		run: func(_ context.Context, _ *PipelineState) (any, error) {
			t.Errorf("second phase must not run after cancellation")
			return nil, nil
		}}
	f = newOrchFixture(t, time.Minute, first, second)
	runID := f.startRun(t)
	f.orch.Wait()

	run, _ := f.registry.GetRun(context.Background(), runID)
	if run.Status != models.RunStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", run.Status)
	}
	if code := f.lastErrorCode(t, runID); code != CodeCancelled {
		t.Fatalf("error code = %s", code)
	}

	events, _ := f.ledger.List(context.Background(), runID, 0, 0)
	last := events[len(events)-1]
	if last.Type != models.EventFinal {
		t.Fatalf("last event = %s, want final", last.Type)
	}
	final, _ := models.DecodePayload(models.EventFinal, last.Payload)
	if final.(models.FinalPayload).Success {
		t.Fatalf("cancelled run must close with success=false")
	}
}
