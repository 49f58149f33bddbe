package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/http/middleware"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. Every error
// class gets a distinct code so clients can branch on cause.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	case domain.IsSeatUnavailable(err):
		respondError(c, http.StatusConflict, "seat_unavailable", err.Error())
	case domain.IsInvalidState(err):
		respondError(c, http.StatusConflict, "invalid_state", err.Error())
	case domain.IsWindowClosed(err):
		respondError(c, http.StatusUnprocessableEntity, "window_closed", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	case domain.IsDependency(err):
		respondError(c, http.StatusServiceUnavailable, "dependency_failure", "a backing service failed, please retry")
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
