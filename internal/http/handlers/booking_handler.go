package handlers

import (
	"net/http"

	"carrental/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status string `json:"status"`
}

// CreateBooking handles POST /api/bookings.
func (h Handler) CreateBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in models.CreateBookingInput
	if !BindJSONOrError(c, &in) {
		return
	}

	res, err := h.bookings(c).CreateBooking(c.Request.Context(), userID, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Booking created successfully", res)
}

// GetMyBookings handles GET /api/bookings/my-bookings.
func (h Handler) GetMyBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.bookings(c).ListForUser(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

// GetBooking handles GET /api/bookings/:id.
func (h Handler) GetBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	d, err := h.bookings(c).GetForUser(c.Request.Context(), userID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", d)
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status.
func (h Handler) UpdateBookingStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	res, err := h.bookings(c).UpdateStatus(c.Request.Context(), userID, id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking status updated to "+string(res.Status), res)
}

// CancelBooking handles DELETE /api/bookings/:id.
func (h Handler) CancelBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	res, err := h.bookings(c).Cancel(c.Request.Context(), userID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking cancelled successfully", res)
}

// GetSavedCards handles GET /api/cards.
func (h Handler) GetSavedCards(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cards, err := h.bookings(c).ListCards(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(cards), "data": cards})
}
