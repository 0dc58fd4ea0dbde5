// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// Deps carries everything route registration needs: the handlers plus
// the shared Redis client for rate limiting and response caching.  A
// nil Redis client disables both transparently.
type Deps struct {
	Auth         *handler.AuthHandler
	Reservations *handler.ReservationHandler
	AdminTables  *handler.AdminTableHandler
	AdminHours   *handler.AdminHoursHandler
	AdminReports *handler.AdminReportHandler

	JWTSecret string
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration, login and the protected /v1/me
// echo endpoint.
func RegisterAuth(e *echo.Echo, d Deps) {
	g := e.Group("/v1/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)

	auth := e.Group("/v1", middleware.JWTAuth(d.JWTSecret))
	auth.GET("/me", d.Auth.Me)
}

// RegisterReservations registers the customer-facing reservation
// lifecycle under /v1.  Mutating endpoints run behind the Redis token
// bucket; the listing endpoint is cached briefly.
func RegisterReservations(e *echo.Echo, d Deps) {
	limited := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	cached := middleware.NewRedisCache(d.Cache, d.Redis)

	g := e.Group("/v1", middleware.JWTAuth(d.JWTSecret))

	g.POST("/reservations", d.Reservations.Create, limited)
	g.POST("/waitlist", d.Reservations.Join, limited)
	g.DELETE("/reservations/:id", d.Reservations.Cancel, limited)
	g.POST("/reservations/:id/checkin", d.Reservations.CheckIn, limited)
	g.GET("/reservations/:id/bill", d.Reservations.Bill)
	g.POST("/bills/:id/pay", d.Reservations.Pay, limited)

	g.GET("/reservations", d.Reservations.List, cached)
	g.GET("/reservations/code/:code", d.Reservations.ByCode)
}

// RegisterAdmin registers the ADMIN-only management surface: the table
// pool, opening hours plus date overrides, and monthly reports.
func RegisterAdmin(e *echo.Echo, d Deps) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Tables ----
	g.POST("/tables", d.AdminTables.Create)
	g.GET("/tables", d.AdminTables.List)
	g.PATCH("/tables/:id", d.AdminTables.Resize)
	g.DELETE("/tables/:id", d.AdminTables.Delete)

	// ---- Opening hours ----
	g.GET("/hours", d.AdminHours.ListWeekly)
	g.PUT("/hours/:weekday", d.AdminHours.PutWeekly)
	g.GET("/overrides", d.AdminHours.ListOverrides)
	g.PUT("/overrides/:date", d.AdminHours.PutOverride)
	g.DELETE("/overrides/:date", d.AdminHours.DeleteOverride)

	// ---- Reports ----
	g.GET("/reports", d.AdminReports.List)
}
