package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/domain/repository"
	"Heliox/internal/validation"
	xlogger "Heliox/pkg/logger"
)

// Stable error codes carried in error event payloads.
const (
	CodePhaseExecution = "ERR_PHASE_EXECUTION"
	CodeValidation     = "ERR_VALIDATION"
	CodeCancelled      = "ERR_CANCELLED"
	CodeTimeout        = "ERR_TIMEOUT"
	CodePanic          = "ERR_PANIC"
	CodeLedger         = "ERR_LEDGER"
)

// Orchestrator drives the phase pipeline for runs. Each accepted run
// executes on its own supervised background goroutine; distinct runs share
// nothing but the ledger and registry.
type Orchestrator struct {
	registry *Registry
	ledger   *Ledger
	bus      *Bus
	phases   []Phase
	metrics  repository.Metrics
	logger   *xlogger.Logger

	// defaultTimeout caps total pipeline duration when the run options
	// carry no explicit bound.
	defaultTimeout time.Duration

	wg sync.WaitGroup
}

// NewOrchestrator creates an orchestrator executing the given phases in
// order. The phase list must be a subsequence of the canonical phase
// ordering.
func NewOrchestrator(
	registry *Registry,
	ledger *Ledger,
	phases []Phase,
	metrics repository.Metrics,
	logger *xlogger.Logger,
	defaultTimeout time.Duration,
) (*Orchestrator, error) {
	tags := make([]models.Phase, len(phases))
	for i, p := range phases {
		tags[i] = p.Tag()
	}
	if !models.OrderedSubsequence(tags) {
		return nil, fmt.Errorf("orchestrator: phases %v are not an ordered subsequence of the phase set", tags)
	}
	if defaultTimeout <= 0 {
		defaultTimeout = 30 * time.Minute
	}
	return &Orchestrator{
		registry:       registry,
		ledger:         ledger,
		bus:            NewBus(ledger),
		phases:         phases,
		metrics:        metrics,
		logger:         logger,
		defaultTimeout: defaultTimeout,
	}, nil
}

// Phases returns the planned phase tags in execution order.
func (o *Orchestrator) Phases() []models.Phase {
	tags := make([]models.Phase, len(o.phases))
	for i, p := range o.phases {
		tags[i] = p.Tag()
	}
	return tags
}

// StartRun accepts a pending run for background execution. It returns
// synchronously once the run is accepted: ErrRunNotFound for unknown ids,
// ErrInvalidTransition when the run is not PENDING. Failures after
// acceptance never propagate to the caller; they are observable only via
// run status and the ledger.
func (o *Orchestrator) StartRun(ctx context.Context, runID string, opts models.RunOptions) error {
	run, err := o.registry.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run.Status != models.RunStatusPending {
		return fmt.Errorf("%w: run %s is %s", repository.ErrInvalidTransition, runID, run.Status)
	}

	if _, err := o.registry.BeginRun(ctx, runID); err != nil {
		// Lost the begin race: report the conflict rather than retrying.
		return err
	}

	o.wg.Add(1)
	go o.execute(runID, run.Prompt, opts)
	return nil
}

// Wait blocks until every in-flight run finishes. Intended for shutdown
// and tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// execute runs the pipeline to completion on a detached context. Every
// failure path ends in an error event plus a FAILED transition; nothing is
// allowed to vanish into the goroutine.
func (o *Orchestrator) execute(runID, prompt string, opts models.RunOptions) {
	defer o.wg.Done()

	timeout := o.defaultTimeout
	if opts.TimeoutMinutes > 0 {
		timeout = time.Duration(opts.TimeoutMinutes) * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline panic",
				xlogger.String("run_id", runID),
				xlogger.Any("panic", r))
			o.failRun(ctx, runID, models.PhaseOrchestrator, CodePanic,
				fmt.Sprintf("pipeline panicked: %v", r),
				map[string]any{"stack": string(debug.Stack())})
		}
	}()

	start := time.Now()
	st := &PipelineState{RunID: runID, Prompt: prompt, Options: opts}

	for i, phase := range o.phases {
		tag := phase.Tag()

		// Out-of-band cancellation is honored at phase boundaries.
		if cancelled, err := o.checkCancelled(ctx, runID); err != nil {
			o.failRun(ctx, runID, tag, CodeLedger, err.Error(), nil)
			return
		} else if cancelled {
			o.abortCancelled(ctx, runID, tag, start)
			return
		}
		if ctx.Err() != nil {
			o.failRun(ctx, runID, tag, CodeTimeout,
				fmt.Sprintf("pipeline exceeded %s timeout", timeout), nil)
			return
		}

		progress := float64(i) / float64(len(o.phases))
		if _, err := o.bus.Status(ctx, runID, tag, phase.Stage(), progress, ""); err != nil {
			// A ledger that cannot append must abort the run loudly.
			o.failRun(ctx, runID, tag, CodeLedger, err.Error(), nil)
			return
		}
		_ = o.registry.RecordProgress(ctx, runID, tag, progress)

		phaseStart := time.Now()
		artifact, err := phase.Run(ctx, st)
		elapsed := time.Since(phaseStart)
		if o.metrics != nil {
			o.metrics.RecordPhaseDuration(string(tag), elapsed.Seconds())
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				o.failRun(ctx, runID, tag, CodeTimeout,
					fmt.Sprintf("pipeline exceeded %s timeout", timeout), nil)
				return
			}
			o.failRun(ctx, runID, tag, CodePhaseExecution, err.Error(), nil)
			return
		}

		// Validation failures are phase failures, never warnings to skip.
		if res := validation.ValidateArtifact(artifact); !res.Valid {
			if o.metrics != nil {
				o.metrics.RecordValidationFailure(fmt.Sprintf("%T", artifact))
			}
			o.failRun(ctx, runID, tag, CodeValidation,
				fmt.Sprintf("phase %s output failed validation", tag),
				map[string]any{"errors": res.Errors, "warnings": res.Warnings})
			return
		}

		if _, err := o.bus.Artifact(ctx, runID, tag, phase.ArtifactName(), artifactKind(artifact), artifact); err != nil {
			o.failRun(ctx, runID, tag, CodeLedger, err.Error(), nil)
			return
		}

		if _, err := o.bus.Metric(ctx, runID, tag, "phase_duration_ms", float64(elapsed.Milliseconds()), "ms", "performance"); err != nil {
			o.failRun(ctx, runID, tag, CodeLedger, err.Error(), nil)
			return
		}
	}

	o.completeRun(ctx, runID, st, start)
}

func (o *Orchestrator) checkCancelled(ctx context.Context, runID string) (bool, error) {
	run, err := o.registry.GetRun(ctx, runID)
	if err != nil {
		return false, fmt.Errorf("cancellation check: %w", err)
	}
	return run.Status == models.RunStatusCancelled, nil
}

func (o *Orchestrator) abortCancelled(ctx context.Context, runID string, tag models.Phase, start time.Time) {
	if _, err := o.bus.Error(ctx, runID, tag, CodeCancelled, "run cancelled before phase start", nil); err != nil {
		o.logger.Error("cancel event append failed",
			xlogger.String("run_id", runID), xlogger.Error(err))
	}
	if _, err := o.bus.Final(ctx, runID, models.PhaseOrchestrator, false, nil, time.Since(start).Milliseconds()); err != nil {
		o.logger.Error("final event append failed",
			xlogger.String("run_id", runID), xlogger.Error(err))
	}
	// The run is already terminal (CANCELLED); no registry transition.
	o.logger.Info("pipeline aborted on cancellation", xlogger.String("run_id", runID))
}

// failRun records the failure in the ledger and drives the registry to
// FAILED. Errors on this path can only be logged. Reporting runs on a
// fresh context so an expired pipeline deadline cannot swallow the error
// event.
func (o *Orchestrator) failRun(_ context.Context, runID string, tag models.Phase, code, msg string, details map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := o.bus.Error(ctx, runID, tag, code, msg, details); err != nil {
		o.logger.Error("error event append failed",
			xlogger.String("run_id", runID), xlogger.Error(err))
	}
	if err := o.registry.RecordOutcome(ctx, runID, msg, nil); err != nil {
		o.logger.Error("record outcome failed",
			xlogger.String("run_id", runID), xlogger.Error(err))
	}
	if _, err := o.registry.FinishRun(ctx, runID, OutcomeFailure); err != nil {
		o.logger.Error("finish run failed",
			xlogger.String("run_id", runID), xlogger.Error(err))
	}
	o.logger.Warn("pipeline failed",
		xlogger.String("run_id", runID),
		xlogger.String("phase", string(tag)),
		xlogger.String("code", code))
}

func (o *Orchestrator) completeRun(ctx context.Context, runID string, st *PipelineState, start time.Time) {
	summary := map[string]float64{}
	if st.Backtest != nil {
		summary["sharpe_ratio"] = st.Backtest.Metrics.SharpeRatio
		summary["max_drawdown"] = st.Backtest.Metrics.MaxDrawdown
		summary["total_trades"] = float64(st.Backtest.Metrics.TotalTrades)
		summary["win_rate"] = st.Backtest.Metrics.WinRate
	}

	if _, err := o.bus.Final(ctx, runID, models.PhaseOrchestrator, true, summary, time.Since(start).Milliseconds()); err != nil {
		o.failRun(ctx, runID, models.PhaseOrchestrator, CodeLedger, err.Error(), nil)
		return
	}
	if err := o.registry.RecordOutcome(ctx, runID, "", summary); err != nil {
		o.logger.Error("record outcome failed",
			xlogger.String("run_id", runID), xlogger.Error(err))
	}
	_ = o.registry.RecordProgress(ctx, runID, models.PhaseOrchestrator, 1)
	if _, err := o.registry.FinishRun(ctx, runID, OutcomeSuccess); err != nil {
		o.logger.Error("finish run failed",
			xlogger.String("run_id", runID), xlogger.Error(err))
		return
	}
	o.logger.Info("pipeline complete",
		xlogger.String("run_id", runID),
		xlogger.Duration("elapsed", time.Since(start)))
}

func artifactKind(artifact any) string {
	switch artifact.(type) {
	case *models.Blueprint:
		return "blueprint"
	case []models.Strategy:
		return "strategies"
	case *models.BacktestResult:
		return "backtest_result"
	case *models.PackageManifest:
		return "package_manifest"
	default:
		return "unknown"
	}
}
