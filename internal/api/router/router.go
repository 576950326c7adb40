package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ajuteixeira/book-sala/config"
	"github.com/ajuteixeira/book-sala/internal/api/handler"
	"github.com/ajuteixeira/book-sala/internal/api/middleware"
	"github.com/ajuteixeira/book-sala/pkg/jwt"
	"github.com/ajuteixeira/book-sala/pkg/redis"
)

// Setup builds and returns the Gin engine.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// auth endpoints that need no token, rate limited against
		// credential stuffing
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// everything below requires a valid access token
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			rooms := authorized.Group("/rooms")
			{
				rooms.GET("", h.Room.List)
				rooms.GET("/available", h.Room.Available)
				rooms.GET("/:id", h.Room.Get)
				rooms.POST("", middleware.RoleAuth("admin"), h.Room.Create)
				rooms.PUT("/:id", middleware.RoleAuth("admin"), h.Room.Update)
				rooms.DELETE("/:id", middleware.RoleAuth("admin"), h.Room.Delete)
			}

			reservations := authorized.Group("/reservations")
			{
				reservations.GET("", h.Reservation.List)
				reservations.GET("/history", h.Reservation.History)
				reservations.POST("", h.Reservation.Create)
				reservations.PUT("/:id", h.Reservation.Update)
				reservations.DELETE("/:id", h.Reservation.Cancel)
				reservations.POST("/complete-past", middleware.RoleAuth("admin"), h.Reservation.CompletePast)
			}

			export := authorized.Group("/export")
			{
				export.GET("/reservations", middleware.RoleAuth("admin"), h.Export.ExportReservations)
				export.GET("/calendar.ics", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
