package api

import (
	"database/sql"
	stdhttp "net/http"
	"time"

	intconfig "carrental/internal/config"
	h "carrental/internal/http/handlers"
	"carrental/internal/http/middleware"
	"carrental/internal/services"
	"carrental/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Deps are the process-wide resources the router hands to handlers.
type Deps struct {
	DB    *sql.DB
	Redis *redis.Client
	Now   func() time.Time
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.Metrics(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Log.WithError(err).Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"message": "Route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	tokens := services.TokenService{Secret: []byte(env.JWTSecret), TTL: env.JWTTTL, Now: deps.Now}
	hd := h.Handler{
		DB:         deps.DB,
		Tokens:     tokens,
		CardSecret: []byte(env.CardFingerprintSecret),
		Now:        deps.Now,
	}

	// a nil *redis.Client must not reach the middleware as a non-nil interface
	var idem redis.Cmdable
	if deps.Redis != nil {
		idem = deps.Redis
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.GET("/db-check", hd.DBCheck)

		auth := api.Group("/auth")
		auth.POST("/login", hd.Login)

		authed := api.Group("", middleware.RequireAuth(tokens))

		bookings := authed.Group("/bookings")
		bookings.POST("", middleware.Idempotency(idem, env.IdempotencyTTL), hd.CreateBooking)
		bookings.GET("/my-bookings", hd.GetMyBookings)
		bookings.GET("/host-summary", hd.GetHostSummary)
		bookings.GET("/:id", hd.GetBooking)
		bookings.GET("/:id/receipt", hd.GetBookingReceiptPDF)
		bookings.PATCH("/:id/status", hd.UpdateBookingStatus)
		bookings.DELETE("/:id", hd.CancelBooking)

		authed.GET("/cards", hd.GetSavedCards)
	}

	return r
}
