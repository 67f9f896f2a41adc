package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/lifecycle"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// AdminSeatHandler manages the seat inventory. All routes require the
// ADMIN role. Status changes run through the lifecycle engine so the
// stored seat status stays a faithful view of the active booking.
type AdminSeatHandler struct {
	Engine *lifecycle.Engine
	Seats  *repository.SeatRepo
	Rooms  *repository.RoomRepo
}

// NewAdminSeatHandler wires the lifecycle engine and repositories.
func NewAdminSeatHandler(e *lifecycle.Engine, s *repository.SeatRepo, r *repository.RoomRepo) *AdminSeatHandler {
	if e == nil || s == nil || r == nil {
		panic("nil dependency passed to NewAdminSeatHandler")
	}
	return &AdminSeatHandler{Engine: e, Seats: s, Rooms: r}
}

// seatReq uses pointers for the optional fields so that a PATCH body
// omitting a field is distinguishable from one setting its zero value.
type seatReq struct {
	RoomID            uint64 `json:"room_id"`
	SeatName          string `json:"seat_name"`
	HasSocket         *bool  `json:"has_socket"`
	Status            string `json:"status"`
	MaxBookingMinutes uint32 `json:"max_booking_minutes"`
}

// seatStatusFromReq validates an operator-supplied status. Only the
// operator states are settable directly; OCCUPIED and TEMPORARY_LEAVE
// are derived from bookings.
func seatStatusFromReq(s string) (model.SeatStatus, error) {
	switch model.SeatStatus(s) {
	case "":
		return "", nil
	case model.SeatAvailable, model.SeatUnavailable:
		return model.SeatStatus(s), nil
	default:
		return "", fault.New(fault.Invalid, "status must be AVAILABLE or UNAVAILABLE")
	}
}

// Create adds a seat to a room. Seat names are unique per room; a
// duplicate yields 409.
func (h *AdminSeatHandler) Create(c echo.Context) error {
	var req seatReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, fault.New(fault.Invalid, "invalid request body"))
	}
	req.SeatName = strings.TrimSpace(req.SeatName)
	if req.RoomID == 0 || req.SeatName == "" {
		return writeError(c, fault.New(fault.Invalid, "room_id and seat_name are required"))
	}
	status, err := seatStatusFromReq(req.Status)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, req.RoomID); err != nil {
		return writeError(c, err)
	}
	seat := &model.Seat{
		RoomID:            req.RoomID,
		SeatName:          req.SeatName,
		SeatNumber:        req.SeatName,
		Status:            status,
		MaxBookingMinutes: req.MaxBookingMinutes,
	}
	if req.HasSocket != nil {
		seat.HasSocket = *req.HasSocket
	}
	if err := h.Seats.Create(ctx, seat); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": seat.ID})
}

// Update rewrites a seat's descriptive fields; omitted fields keep
// their current value. A status of UNAVAILABLE takes the seat out of
// service; AVAILABLE returns it, with the stored status recomputed from
// the seat's active booking so an occupied seat never reads AVAILABLE.
func (h *AdminSeatHandler) Update(c echo.Context) error {
	seatID, err := pathID(c, "seat_id")
	if err != nil {
		return writeError(c, err)
	}
	var req seatReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, fault.New(fault.Invalid, "invalid request body"))
	}
	req.SeatName = strings.TrimSpace(req.SeatName)
	status, err := seatStatusFromReq(req.Status)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seat, err := h.Seats.GetByID(ctx, seatID)
	if err != nil {
		return writeError(c, err)
	}
	if req.SeatName != "" {
		seat.SeatName = req.SeatName
		seat.SeatNumber = req.SeatName
	}
	if req.HasSocket != nil {
		seat.HasSocket = *req.HasSocket
	}
	if req.MaxBookingMinutes != 0 {
		seat.MaxBookingMinutes = req.MaxBookingMinutes
	}
	if err := h.Seats.Update(ctx, seat); err != nil {
		return writeError(c, err)
	}
	if status != "" {
		if _, err := h.Engine.SetSeatAvailability(ctx, seatID, status == model.SeatAvailable); err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": seat.ID})
}

// Delete removes a seat and every booking referencing it.
func (h *AdminSeatHandler) Delete(c echo.Context) error {
	seatID, err := pathID(c, "seat_id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Seats.Delete(ctx, seatID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
