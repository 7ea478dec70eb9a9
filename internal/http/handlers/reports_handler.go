package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHostSummary reports booking counts per status and settled revenue for the caller as host.
func (h Handler) GetHostSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sum, err := h.bookings(c).HostSummary(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", sum)
}
