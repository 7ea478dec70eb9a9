package handlers

import (
	"net/http"

	"carrental/internal/domain"
	"carrental/internal/http/middleware"
	"carrental/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClearAuth bool   `json:"clearAuth,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success:   false,
		Message:   message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
		ClearAuth: status == http.StatusUnauthorized,
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, code, err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusBadRequest, code, err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, code, err.Error())
	case domain.IsPermission(err):
		respondError(c, http.StatusForbidden, code, err.Error())
	case domain.IsAuth(err):
		respondError(c, http.StatusUnauthorized, code, err.Error())
	case domain.IsInternal(err):
		utils.LogError(middleware.GetRequestID(c), "http", c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, code, err.Error())
	default:
		utils.LogError(middleware.GetRequestID(c), "http", c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, domain.CodeStorageFailure, "Internal server error")
	}
}
