package api

import (
	"errors"
	"time"

	"Heliox/internal/domain/models"
	domrepo "Heliox/internal/domain/repository"
	"Heliox/internal/usecase"
	"Heliox/pkg/cache"
	xhttp "Heliox/pkg/http"
	xlogger "Heliox/pkg/logger"

	"github.com/labstack/echo/v4"
)

// summaryCacheTTL bounds how stale a polled run summary may be.
const summaryCacheTTL = 2 * time.Second

// RunsHandler exposes the run orchestration endpoints over Echo.
type RunsHandler struct {
	logger       *xlogger.Logger
	registry     *usecase.Registry
	ledger       *usecase.Ledger
	orchestrator *usecase.Orchestrator
	cache        cache.Service
}

func NewRunsHandler(
	logger *xlogger.Logger,
	registry *usecase.Registry,
	ledger *usecase.Ledger,
	orchestrator *usecase.Orchestrator,
	cacheSvc cache.Service,
) *RunsHandler {
	return &RunsHandler{
		logger:       logger,
		registry:     registry,
		ledger:       ledger,
		orchestrator: orchestrator,
		cache:        cacheSvc,
	}
}

func (h *RunsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/v1")
	g.POST("/runs", h.CreateRun)
	g.POST("/orchestrate", h.Orchestrate)
	g.GET("/runs/:id", h.GetRun)
	g.GET("/runs/:id/events", h.ListEvents)
	g.POST("/runs/:id/cancel", h.CancelRun)
	g.GET("/runs/:id/stream", h.StreamEvents)
}

func (h *RunsHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]any{
		"ok":      true,
		"service": "orchestrator",
	})
}

// CreateRun registers a new PENDING run.
func (h *RunsHandler) CreateRun(c echo.Context) error {
	req := &models.CreateRunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	run, err := h.registry.CreateRun(c.Request().Context(), req.Prompt, models.RiskTier(req.RiskTier))
	if err != nil {
		h.logger.Error("create run failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not create run").WithError(err))
	}

	return xhttp.CreatedResponse(c, models.CreateRunResponse{
		RunID:         run.ID,
		Status:        run.Status,
		CreatedAt:     run.CreatedAt,
		PhasesPlanned: h.orchestrator.Phases(),
	})
}

// Orchestrate accepts a pending run for background execution.
func (h *RunsHandler) Orchestrate(c echo.Context) error {
	req := &models.OrchestrateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !models.ValidTraceID(req.RunID) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_FORMAT",
			Field:   "run_id",
			Message: "run_id does not match the trace id format",
		}})
	}

	opts := models.RunOptions{}
	if req.Options != nil {
		opts = *req.Options
	}

	err := h.orchestrator.StartRun(c.Request().Context(), req.RunID, opts)
	switch {
	case err == nil:
		return xhttp.AcceptedResponse(c, models.OrchestrateResponse{
			Accepted: true,
			RunID:    req.RunID,
			Message:  "orchestration started in background",
		})
	case errors.Is(err, domrepo.ErrRunNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("run %s not found", req.RunID))
	case errors.Is(err, domrepo.ErrInvalidTransition):
		return xhttp.AppErrorResponse(c, xhttp.ConflictErrorf("run %s already processed", req.RunID))
	default:
		h.logger.Error("orchestrate failed",
			xlogger.String("run_id", req.RunID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage error").WithError(err))
	}
}

// GetRun returns the pollable run summary including ledger aggregation.
func (h *RunsHandler) GetRun(c echo.Context) error {
	runID := c.Param("id")

	if h.cache != nil {
		var cached models.RunStatusResponse
		if err := h.cache.Get(c.Request().Context(), summaryKey(runID), &cached); err == nil {
			return xhttp.SuccessResponse(c, cached)
		}
	}

	run, err := h.registry.GetRun(c.Request().Context(), runID)
	if errors.Is(err, domrepo.ErrRunNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("run %s not found", runID))
	}
	if err != nil {
		h.logger.Error("get run failed", xlogger.String("run_id", runID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage error").WithError(err))
	}

	count, lastSeq, err := h.ledger.Progress(c.Request().Context(), runID)
	if err != nil {
		h.logger.Error("run progress failed", xlogger.String("run_id", runID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage error").WithError(err))
	}

	resp := models.RunStatusResponse{
		RunID:        run.ID,
		Status:       run.Status,
		CurrentPhase: run.CurrentPhase,
		Progress:     run.Progress,
		ErrorMessage: run.ErrorMessage,
		Metrics:      run.Metrics,
		CreatedAt:    run.CreatedAt,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		EventCount:   count,
		LastSeq:      lastSeq,
	}

	if h.cache != nil {
		_ = h.cache.Set(c.Request().Context(), summaryKey(runID), resp, summaryCacheTTL)
	}
	return xhttp.SuccessResponse(c, resp)
}

// ListEvents returns the run's ledger slice ordered by sequence.
func (h *RunsHandler) ListEvents(c echo.Context) error {
	runID := c.Param("id")
	req := &models.ListEventsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if _, err := h.registry.GetRun(c.Request().Context(), runID); err != nil {
		if errors.Is(err, domrepo.ErrRunNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("run %s not found", runID))
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage error").WithError(err))
	}

	events, err := h.ledger.List(c.Request().Context(), runID, req.After, req.Limit)
	if err != nil {
		h.logger.Error("list events failed", xlogger.String("run_id", runID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage error").WithError(err))
	}

	// Optional emitted-after filter, RFC3339 or unix seconds.
	if s := c.QueryParam("since"); s != "" {
		if since, ok := xhttp.ParseTime(s); ok {
			kept := events[:0]
			for _, e := range events {
				if !e.Timestamp.Before(since) {
					kept = append(kept, e)
				}
			}
			events = kept
		}
	}
	return xhttp.ListResponse(c, events, int64(len(events)))
}

// CancelRun marks a pending or running run as CANCELLED.
func (h *RunsHandler) CancelRun(c echo.Context) error {
	runID := c.Param("id")

	run, err := h.registry.CancelRun(c.Request().Context(), runID)
	switch {
	case err == nil:
		if h.cache != nil {
			_ = h.cache.Delete(c.Request().Context(), summaryKey(runID))
		}
		return xhttp.SuccessResponse(c, map[string]any{
			"run_id": runID,
			"status": run.Status,
		})
	case errors.Is(err, domrepo.ErrRunNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("run %s not found", runID))
	case errors.Is(err, domrepo.ErrInvalidTransition):
		return xhttp.AppErrorResponse(c, xhttp.ConflictErrorf("run %s is already %s", runID, run.Status))
	default:
		h.logger.Error("cancel run failed", xlogger.String("run_id", runID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage error").WithError(err))
	}
}

func summaryKey(runID string) string {
	return cache.GenerateKey("run_summary", runID)
}
