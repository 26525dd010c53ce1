package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/progress"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/commit_changes"
)

const streamBuffer = 64

// StartCommitRequest optionally names the run.
type StartCommitRequest struct {
	RunID string `json:"runId"`
}

// StartCommitResponse acknowledges a started run.
type StartCommitResponse struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
}

// ProgressResponse is the progress state with display helpers.
type ProgressResponse struct {
	domain.ProgressState
	Percent      float64  `json:"percent"`
	ShownErrors  []string `json:"shownErrors"`
	HiddenErrors int      `json:"hiddenErrors"`
	ErrorCount   int      `json:"errorCount"`
	Running      bool     `json:"running"`
}

func (h *Handler) startCommit(c *gin.Context) {
	var req StartCommitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	runID, err := h.commitChanges.Start(c.Request.Context(), &commit_changes.Request{RunID: req.RunID})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, StartCommitResponse{RunID: runID, Status: "accepted"})
}

func (h *Handler) cancelCommit(c *gin.Context) {
	if err := h.commitChanges.Cancel(); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

func (h *Handler) resetProgress(c *gin.Context) {
	if err := h.commitChanges.Reset(); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.progressResponse(c.Request.Context(), domain.DefaultDisplayErrors))
}

func (h *Handler) progress(c *gin.Context) {
	limit := domain.DefaultDisplayErrors
	if raw := c.Query("errors"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "errors must be a non-negative integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.progressResponse(c.Request.Context(), limit))
}

func (h *Handler) progressResponse(ctx context.Context, limit int) ProgressResponse {
	res := h.getProgress.Execute(ctx, limit)
	shown := res.ShownErrors
	if shown == nil {
		shown = []string{}
	}
	return ProgressResponse{
		ProgressState: res.State,
		Percent:       res.Percent,
		ShownErrors:   shown,
		HiddenErrors:  res.HiddenErrors,
		ErrorCount:    res.ErrorCount,
		Running:       h.commitChanges.Running(),
	}
}

// progressStream sends the current state, then every progress event as
// server-sent events until the run has been reconciled or the client leaves.
// A tracker that is not processing yields a single event.
func (h *Handler) progressStream(c *gin.Context) {
	events, unsubscribe := h.tracker.Subscribe(streamBuffer)
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	snapshot := h.tracker.Snapshot()
	c.SSEvent("progress", progress.Event{Kind: "snapshot", State: snapshot})
	c.Writer.Flush()
	if snapshot.Status != domain.StatusProcessing {
		return
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("progress", event)
			c.Writer.Flush()
			if event.Kind == progress.EventReconciled && event.State.Status.Terminal() {
				return
			}
		}
	}
}
