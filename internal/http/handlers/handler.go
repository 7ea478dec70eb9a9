package handlers

import (
	"database/sql"
	"time"

	"carrental/internal/http/middleware"
	"carrental/internal/services"

	"github.com/gin-gonic/gin"
)

// Handler carries the dependencies shared by every endpoint. Services are built per request so
// each one logs with the caller's request id.
type Handler struct {
	DB         *sql.DB
	Tokens     services.TokenService
	CardSecret []byte
	Now        func() time.Time
}

func (h Handler) bookings(c *gin.Context) services.BookingService {
	return services.BookingService{
		DB:         h.DB,
		CardSecret: h.CardSecret,
		RequestID:  middleware.GetRequestID(c),
		Now:        h.Now,
	}
}
