package handlers

import (
	"net/http"
	"strconv"

	"carrental/internal/domain"
	"carrental/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, domain.CodeInvalidPayload, "Request body is required")
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeInvalidPayload, "Invalid request payload")
		return false
	}
	return true
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, domain.CodeInvalidID, "Invalid booking id")
		return 0, false
	}
	return id, true
}

// currentUser reads the id set by RequireAuth; a missing id means the route was mounted
// without it and is treated as unauthenticated.
func currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.AbortUnauthorized(c, "Authentication failed")
	}
	return id, ok
}

func respondOK(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}
