package handlers

import (
	"context"
	"net/http"
	"time"

	"carrental/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok", "message": "car rental backend is running"})
}

// DBCheck pings the database with a short deadline.
func (h Handler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusServiceUnavailable, domain.CodeStorageFailure, "Database is not connected")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		respondError(c, http.StatusServiceUnavailable, domain.CodeStorageFailure, "Database ping failed")
		return
	}
	stats := h.DB.Stats()
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "database connection OK",
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
	})
}
