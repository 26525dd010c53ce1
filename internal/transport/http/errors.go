package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// mapDomainErrorToHTTP converts domain errors to HTTP status codes.
func mapDomainErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownCardType),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidFieldValue),
		errors.Is(err, domain.ErrEmptyEntityKey),
		errors.Is(err, domain.ErrInvalidEntityID):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, domain.ErrEntityKeyConflict):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrCardNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrCommitInProgress):
		return http.StatusConflict, "a commit run is already in progress"

	case errors.Is(err, domain.ErrNoActiveRun):
		return http.StatusConflict, "no commit run is in progress"

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	code, msg := mapDomainErrorToHTTP(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.JSON(code, ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
