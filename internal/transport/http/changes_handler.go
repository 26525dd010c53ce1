package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/discard_changes"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/register_change"
)

// RegisterChangeRequest is one edit from the admin console.
type RegisterChangeRequest struct {
	EntityKey string            `json:"entityKey"`
	CardType  string            `json:"cardType" binding:"required"`
	EntityID  int64             `json:"entityId"`
	Fields    map[string]string `json:"fields"`
	Label     string            `json:"label"`
}

// RegisterChangeResponse describes the pending set after an edit.
type RegisterChangeResponse struct {
	EntityKey         string `json:"entityKey"`
	Registered        bool   `json:"registered"`
	PendingEntities   int    `json:"pendingEntities"`
	HasPendingChanges bool   `json:"hasPendingChanges"`
}

// ChangesResponse is the pending set and its plan summary.
type ChangesResponse struct {
	Entries           []domain.DirtyEntry `json:"entries"`
	HasPendingChanges bool                `json:"hasPendingChanges"`
	Total             int                 `json:"total"`
	Summary           string              `json:"summary"`
}

// PendingResponse is returned after discarding.
type PendingResponse struct {
	HasPendingChanges bool `json:"hasPendingChanges"`
}

func (h *Handler) registerChangeHandler(c *gin.Context) {
	var req RegisterChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.registerChange.Execute(c.Request.Context(), &register_change.Request{
		EntityKey: req.EntityKey,
		CardType:  req.CardType,
		EntityID:  req.EntityID,
		Fields:    req.Fields,
		Label:     req.Label,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, RegisterChangeResponse{
		EntityKey:         resp.EntityKey,
		Registered:        resp.Registered,
		PendingEntities:   resp.PendingEntities,
		HasPendingChanges: resp.HasPendingChanges,
	})
}

func (h *Handler) listChanges(c *gin.Context) {
	res := h.getChanges.Execute(c.Request.Context())

	entries := res.Entries
	if entries == nil {
		entries = []domain.DirtyEntry{}
	}
	c.JSON(http.StatusOK, ChangesResponse{
		Entries:           entries,
		HasPendingChanges: res.HasPendingChanges,
		Total:             res.Total,
		Summary:           res.Summary,
	})
}

func (h *Handler) discardChange(c *gin.Context) {
	h.discard(c, c.Param("key"))
}

func (h *Handler) discardAll(c *gin.Context) {
	h.discard(c, "")
}

func (h *Handler) discard(c *gin.Context, key string) {
	pending, err := h.discardChanges.Execute(c.Request.Context(), &discard_changes.Request{EntityKey: key})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PendingResponse{HasPendingChanges: pending})
}
