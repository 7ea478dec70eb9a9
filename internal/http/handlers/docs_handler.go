package handlers

import (
	"net/http"

	"carrental/internal/http/middleware"
	"carrental/internal/services"

	"github.com/gin-gonic/gin"
)

// GetBookingReceiptPDF returns the booking receipt inline.
func (h Handler) GetBookingReceiptPDF(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	svc := services.DocsService{
		DB:        h.DB,
		RequestID: middleware.GetRequestID(c),
		Now:       h.Now,
	}
	pdfBytes, filename, err := svc.GenerateReceipt(c.Request.Context(), userID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
