package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
	"artpay-checkout/internal/observability"
)

type errorResponse struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Errors     []errorDetail `json:"errors"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		StatusCode: status,
		Message:    message,
		Errors:     []errorDetail{{Code: code, Message: message}},
	})
}

// writeError maps service errors onto HTTP responses. Anything unrecognised
// came from a collaborator and is reported as a generic 502.
func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "ResourceNotFound", "The resource could not be found.")
	case errors.Is(err, domain.ErrAlreadyProcessing):
		abortWithError(c, http.StatusConflict, "ConcurrentModification", "A checkout is already in progress for this session.")
	case errors.Is(err, domain.ErrAlreadyExists):
		abortWithError(c, http.StatusConflict, "DuplicateValue", "The resource already exists.")
	case errors.Is(err, domain.ErrInvalidMode), errors.Is(err, domain.ErrInvalidFavourite):
		abortWithError(c, http.StatusBadRequest, "InvalidInput", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		abortWithError(c, http.StatusConflict, "InvalidOperation", "The session cannot make that change now.")
	default:
		_ = c.Error(err)
		h.logger.Error("request failed",
			zap.String("request_id", observability.RequestID(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		abortWithError(c, http.StatusBadGateway, "General", "Processing failed, please try again.")
	}
}
