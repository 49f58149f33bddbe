package api

import (
	"log"
	stdhttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	intconfig "github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/config"
	h "github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/http/handlers"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/http/middleware"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     env.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.Auth(env)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		api.POST("/auth/register", h.Register(env))
		api.POST("/auth/login", h.Login(env))
		api.GET("/auth/me", auth, h.Me)

		api.GET("/locations", h.ListLocations)

		rides := api.Group("/rides")
		rides.GET("", h.ListRides)
		rides.GET("/:id", h.GetRide)
		rides.POST("", auth, middleware.RequireRoles("driver", "admin"), h.CreateRide)
		rides.PUT("/:id", auth, h.UpdateRide)
		rides.PUT("/:id/status", auth, h.SetRideStatus)
		rides.DELETE("/:id", auth, h.DeleteRide)

		bookings := api.Group("/bookings", auth)
		bookings.POST("", h.CreateBooking)
		bookings.GET("/mine", h.ListMyBookings)
		bookings.GET("/driver", middleware.RequireRoles("driver", "admin"), h.ListDriverBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/receipt", h.GetBookingReceipt)
		bookings.PUT("/:id/cancel", h.CancelBooking)
		bookings.PUT("/:id/confirm", h.ConfirmBooking)
		bookings.PUT("/:id/reject", h.RejectBooking)
		bookings.PUT("/:id/complete", h.CompleteBooking)

		admin := api.Group("/admin", auth, middleware.RequireRoles("admin"))
		admin.GET("/users", h.AdminListUsers)
		admin.PUT("/users/:id/status", h.AdminSetUserStatus)
		admin.GET("/bookings", h.AdminListBookings)
		admin.GET("/stats", h.AdminStats)
		admin.POST("/reconcile-seat-releases", h.AdminReconcileSeatReleases)
		admin.DELETE("/rides/:id", h.DeleteRide)
	}

	return r
}
