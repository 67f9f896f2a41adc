package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Unauthenticated
// operations (register, login, refresh, logout) live under
// /api/v1.0/auth; /api/v1.0/me requires a valid access token. Logout
// takes a refresh token in the body rather than a JWT so that an
// expired session can still be terminated.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/v1.0/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/api/v1.0",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STUDENT", "ADMIN"),
	)
	auth.GET("/me", a.Me)
	auth.POST("/logout-all", a.LogoutAll)
}

// RegisterStudent registers student-scoped endpoints under
// /api/v1.0/student. All routes require a valid JWT; admins may use
// them too (an admin is a superset of a student for booking purposes).
// The read-only browse endpoints additionally sit behind the Redis
// response cache; writes never do.
func RegisterStudent(e *echo.Echo, b *handler.BookingHandler, br *handler.BrowseHandler,
	jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group(
		"/api/v1.0/student",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STUDENT", "ADMIN"),
	)

	// ---- Lifecycle ----
	g.POST("/bookings", b.Book)
	g.POST("/bookings/:booking_id/cancel", b.Cancel)
	g.POST("/seats/:seat_id/check-in", b.CheckIn)
	g.POST("/seats/:seat_id/temporary-leave", b.Leave)
	g.POST("/seats/:seat_id/release", b.Release)

	// ---- Queries ----
	g.GET("/bookings", b.History)
	g.GET("/bookings/current", b.Current)

	// ---- Browse (cached) ----
	cached := g.Group("", middleware.NewRedisCache(cacheCfg, rdb))
	cached.GET("/rooms", br.ListRooms)
	cached.GET("/rooms/:room_id/seats", br.RoomSeats)
	cached.GET("/seats/search", br.SearchSeats)
}

// RegisterAdmin registers ADMIN-scoped inventory endpoints under
// /api/v1.0/admin. All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AuthHandler, rm *handler.AdminRoomHandler, st *handler.AdminSeatHandler, jwtSecret string) {
	g := e.Group(
		"/api/v1.0/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Students ----
	g.GET("/students", a.ListStudents)

	// ---- Rooms ----
	g.GET("/rooms", rm.List)
	g.POST("/rooms", rm.Create)
	g.PUT("/rooms/:room_id", rm.Update)
	g.PATCH("/rooms/:room_id", rm.Update)
	g.DELETE("/rooms/:room_id", rm.Delete)

	// ---- Seats ----
	g.POST("/seats", st.Create)
	g.PUT("/seats/:seat_id", st.Update)
	g.PATCH("/seats/:seat_id", st.Update)
	g.DELETE("/seats/:seat_id", st.Delete)
}
