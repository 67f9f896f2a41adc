package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// AdminRoomHandler manages the room inventory. All routes require the
// ADMIN role.
type AdminRoomHandler struct {
	Rooms *repository.RoomRepo
}

// NewAdminRoomHandler wires the room repository.
func NewAdminRoomHandler(r *repository.RoomRepo) *AdminRoomHandler {
	if r == nil {
		panic("nil repository passed to NewAdminRoomHandler")
	}
	return &AdminRoomHandler{Rooms: r}
}

type roomReq struct {
	Name      string `json:"name"`
	Type      uint8  `json:"type"`
	Capacity  uint32 `json:"capacity"`
	Location  string `json:"location"`
	OpenTime  string `json:"open_time"`  // "HH:MM"
	CloseTime string `json:"close_time"` // "HH:MM"
	Status    uint8  `json:"status"`
}

// parseClock parses an "HH:MM" wall-clock string. The date part is a
// fixed epoch day; only the clock component is meaningful.
func parseClock(s string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fault.New(fault.Invalid, "times must be in HH:MM format")
	}
	return t, nil
}

func (req *roomReq) toModel() (*model.Room, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fault.New(fault.Invalid, "name is required")
	}
	open, err := parseClock(req.OpenTime)
	if err != nil {
		return nil, err
	}
	closeAt, err := parseClock(req.CloseTime)
	if err != nil {
		return nil, err
	}
	if !closeAt.After(open) {
		return nil, fault.New(fault.Invalid, "close_time must be after open_time")
	}
	return &model.Room{
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		Capacity:  req.Capacity,
		Location:  req.Location,
		OpenTime:  open,
		CloseTime: closeAt,
		Status:    model.RoomStatus(req.Status),
	}, nil
}

// Create adds a new room.
func (h *AdminRoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, fault.New(fault.Invalid, "invalid request body"))
	}
	room, err := req.toModel()
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Create(ctx, room); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": room.ID})
}

// Update rewrites a room's fields.
func (h *AdminRoomHandler) Update(c echo.Context) error {
	roomID, err := pathID(c, "room_id")
	if err != nil {
		return writeError(c, err)
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, fault.New(fault.Invalid, "invalid request body"))
	}
	room, err := req.toModel()
	if err != nil {
		return writeError(c, err)
	}
	room.ID = roomID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Update(ctx, room); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": room.ID})
}

// Delete removes a room, its seats and their bookings.
func (h *AdminRoomHandler) Delete(c echo.Context) error {
	roomID, err := pathID(c, "room_id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, roomID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns all rooms, for the admin inventory screen.
func (h *AdminRoomHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	views := make([]roomView, 0, len(rooms))
	for _, m := range rooms {
		views = append(views, roomView{
			ID:        m.ID,
			Name:      m.Name,
			Type:      m.Type,
			Capacity:  m.Capacity,
			Location:  m.Location,
			OpenTime:  m.OpenTime.Format("15:04"),
			CloseTime: m.CloseTime.Format("15:04"),
			Status:    uint8(m.Status),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": views})
}
