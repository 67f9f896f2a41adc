package router

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/lifecycle"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// registerAll wires every route group the way cmd/server does, with
// repositories that never touch a live database. Registration must not
// require external services.
func registerAll(t *testing.T) *echo.Echo {
	t.Helper()
	students := repository.NewStudentRepo(nil)
	tokens := repository.NewTokenRepo(nil)
	rooms := repository.NewRoomRepo(nil)
	seats := repository.NewSeatRepo(nil)
	bookings := repository.NewBookingRepo(nil)
	engine := lifecycle.New(repository.NewLifecycleStore(nil))

	auth := handler.NewAuthHandler(config.Config{JWTSecret: "secret"}, students, tokens)
	booking := handler.NewBookingHandler(engine, students, bookings, rooms, seats)
	browse := handler.NewBrowseHandler(rooms, seats, bookings)
	adminRooms := handler.NewAdminRoomHandler(rooms)
	adminSeats := handler.NewAdminSeatHandler(engine, seats, rooms)

	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, auth, "secret")
	RegisterStudent(e, booking, browse, "secret", config.LoadCacheConfig(), nil)
	RegisterAdmin(e, auth, adminRooms, adminSeats, "secret")
	return e
}

func routeSet(e *echo.Echo) map[string]bool {
	set := make(map[string]bool)
	for _, r := range e.Routes() {
		set[r.Method+" "+r.Path] = true
	}
	return set
}

func TestAllRouteGroupsRegister(t *testing.T) {
	routes := routeSet(registerAll(t))

	expected := []string{
		http.MethodGet + " /healthz",
		http.MethodPost + " /api/v1.0/auth/register",
		http.MethodPost + " /api/v1.0/auth/login",
		http.MethodPost + " /api/v1.0/auth/refresh",
		http.MethodPost + " /api/v1.0/auth/logout",
		http.MethodGet + " /api/v1.0/me",
		http.MethodPost + " /api/v1.0/student/bookings",
		http.MethodPost + " /api/v1.0/student/bookings/:booking_id/cancel",
		http.MethodPost + " /api/v1.0/student/seats/:seat_id/check-in",
		http.MethodPost + " /api/v1.0/student/seats/:seat_id/temporary-leave",
		http.MethodPost + " /api/v1.0/student/seats/:seat_id/release",
		http.MethodGet + " /api/v1.0/student/bookings",
		http.MethodGet + " /api/v1.0/student/bookings/current",
		http.MethodGet + " /api/v1.0/student/rooms",
		http.MethodGet + " /api/v1.0/student/rooms/:room_id/seats",
		http.MethodGet + " /api/v1.0/student/seats/search",
		http.MethodGet + " /api/v1.0/admin/students",
		http.MethodPost + " /api/v1.0/admin/rooms",
		http.MethodDelete + " /api/v1.0/admin/rooms/:room_id",
		http.MethodPost + " /api/v1.0/admin/seats",
		http.MethodPut + " /api/v1.0/admin/seats/:seat_id",
		http.MethodDelete + " /api/v1.0/admin/seats/:seat_id",
	}
	for _, want := range expected {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
