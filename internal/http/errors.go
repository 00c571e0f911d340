package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pos/internal/domain"
)

const (
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidPrice       = "invalid_price"
	codeValidation         = "validation_error"
	codeNotFound           = "not_found"
	codeInsufficientStock  = "insufficient_stock"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}

// writeServiceError maps a service error onto status and code. Internal
// failures are logged and not echoed to the client.
func writeServiceError(c *gin.Context, err error) {
	status, code := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		writeError(c, status, code, "internal error")
		return
	}
	writeError(c, status, code, err.Error())
}

func mapErrorToStatus(err error) (int, string) {
	var stock *domain.InsufficientStockError
	switch {
	case errors.As(err, &stock), errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, codeInsufficientStock
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	default:
		return http.StatusInternalServerError, codeInternalError
	}
}
