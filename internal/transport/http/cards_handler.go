package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/get_cards"
)

// CardsResponse is the reconciled card set.
type CardsResponse struct {
	Cards          *domain.CardSet `json:"cards"`
	RefreshedAt    *time.Time      `json:"refreshedAt,omitempty"`
	ReconcileError string          `json:"reconcileError,omitempty"`
}

func (h *Handler) cards(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	res := h.getCards.Execute(c.Request.Context(), &get_cards.Request{Refresh: refresh})

	resp := CardsResponse{Cards: res.Cards, ReconcileError: res.ReconcileError}
	if !res.RefreshedAt.IsZero() {
		resp.RefreshedAt = &res.RefreshedAt
	}
	c.JSON(http.StatusOK, resp)
}

// storeUpdate serves the raw write contract. Field failures are a 200 with
// success false; store failures are a 5xx so remote callers see a transport
// error.
func (h *Handler) storeUpdate(c *gin.Context) {
	var req contracts.WriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, contracts.WriteResult{Success: false, Error: err.Error()})
		return
	}

	res, err := h.store.UpdateFields(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("store update failed", "card_type", req.CardType, "id", req.ID, "error", err)
		c.JSON(http.StatusBadGateway, contracts.WriteResult{Success: false, Error: "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// storeData serves the raw read contract.
func (h *Handler) storeData(c *gin.Context) {
	res, err := h.store.LoadAll(c.Request.Context())
	if err != nil {
		h.log.Error("store read failed", "error", err)
		c.JSON(http.StatusBadGateway, contracts.ReadResult{Success: false, Error: "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, res)
}
