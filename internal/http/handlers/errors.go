package handlers

import (
	"errors"
	"net/http"

	"budgetflow/internal/domain"
	"budgetflow/internal/http/middleware"
	"budgetflow/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	var (
		verr domain.ValidationError
		terr domain.InvalidTransitionError
	)
	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), gin.H{"field": verr.Field})
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusForbidden, "unauthorized", err.Error(), nil)
	case errors.As(err, &terr):
		respondError(c, http.StatusConflict, "invalid_transition", err.Error(), gin.H{"from": terr.From, "to": terr.To})
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		utils.Logger().WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("unhandled error")
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
