package api

import (
	"errors"
	"net/http"
	"time"

	domrepo "Heliox/internal/domain/repository"
	xhttp "Heliox/pkg/http"
	xlogger "Heliox/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Dashboards are served from other origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	streamPollInterval = 500 * time.Millisecond
	streamWriteWait    = 10 * time.Second
)

// StreamEvents pushes a run's ledger events over a websocket: the backlog
// first, then new events as they are appended, closing once the run is
// terminal and fully drained. An optional ?after=<seq> query parameter
// skips the backlog up to and including that sequence number.
func (h *RunsHandler) StreamEvents(c echo.Context) error {
	runID := c.Param("id")
	after := xhttp.ParseIntDefault(c.QueryParam("after"), 0)
	if after < 0 {
		after = 0
	}

	if _, err := h.registry.GetRun(c.Request().Context(), runID); err != nil {
		if errors.Is(err, domrepo.ErrRunNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return c.NoContent(http.StatusInternalServerError)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			xlogger.String("run_id", runID), xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx := c.Request().Context()
	lastSeq := uint64(after)
	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	for {
		events, err := h.ledger.List(ctx, runID, lastSeq, 0)
		if err != nil {
			h.logger.Error("stream ledger read failed",
				xlogger.String("run_id", runID), xlogger.Error(err))
			return nil
		}
		for _, e := range events {
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(e); err != nil {
				return nil
			}
			lastSeq = e.Seq
		}

		run, err := h.registry.GetRun(ctx, runID)
		if err != nil {
			return nil
		}
		if run.Status.Terminal() && len(events) == 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(run.Status)),
				time.Now().Add(streamWriteWait))
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
