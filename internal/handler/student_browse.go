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

// BrowseHandler serves the read-only discovery endpoints: room list with
// availability, seats of a room with today's reservation windows, and
// seat search. These routes sit behind the response cache.
type BrowseHandler struct {
	Rooms    *repository.RoomRepo
	Seats    *repository.SeatRepo
	Bookings *repository.BookingRepo
}

// NewBrowseHandler wires the read-side repositories.
func NewBrowseHandler(r *repository.RoomRepo, s *repository.SeatRepo, b *repository.BookingRepo) *BrowseHandler {
	if r == nil || s == nil || b == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{Rooms: r, Seats: s, Bookings: b}
}

type roomView struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	Type           uint8  `json:"type"`
	Capacity       uint32 `json:"capacity"`
	Location       string `json:"location"`
	OpenTime       string `json:"open_time"`
	CloseTime      string `json:"close_time"`
	Status         uint8  `json:"status"`
	TotalSeats     uint32 `json:"total_seats"`
	AvailableSeats uint32 `json:"available_seats"`
}

type windowView struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    int       `json:"booking_status"`
}

type seatView struct {
	ID                uint64           `json:"id"`
	RoomID            uint64           `json:"room_id"`
	SeatName          string           `json:"seat_name"`
	SeatNumber        string           `json:"seat_number"`
	HasSocket         bool             `json:"has_socket"`
	Status            model.SeatStatus `json:"status"`
	MaxBookingMinutes uint32           `json:"max_booking_minutes"`
	OrderingList      []windowView     `json:"ordering_list,omitempty"`
}

func seatViewOf(s *model.Seat) seatView {
	return seatView{
		ID:                s.ID,
		RoomID:            s.RoomID,
		SeatName:          s.SeatName,
		SeatNumber:        s.SeatNumber,
		HasSocket:         s.HasSocket,
		Status:            s.Status,
		MaxBookingMinutes: s.MaxBookingMinutes,
	}
}

// ListRooms lists every room with its total and currently available
// seat counts.
func (h *BrowseHandler) ListRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Rooms.ListWithAvailableSeats(ctx)
	if err != nil {
		return writeError(c, err)
	}
	views := make([]roomView, 0, len(list))
	for _, a := range list {
		views = append(views, roomView{
			ID:             a.Room.ID,
			Name:           a.Room.Name,
			Type:           a.Room.Type,
			Capacity:       a.Room.Capacity,
			Location:       a.Room.Location,
			OpenTime:       a.Room.OpenTime.Format("15:04"),
			CloseTime:      a.Room.CloseTime.Format("15:04"),
			Status:         uint8(a.Room.Status),
			TotalSeats:     a.TotalSeats,
			AvailableSeats: a.AvailableSeats,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": views})
}

// RoomSeats lists the seats of a room; each seat carries today's
// reservation windows so clients can render the day timeline.
func (h *BrowseHandler) RoomSeats(c echo.Context) error {
	roomID, err := pathID(c, "room_id")
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, roomID); err != nil {
		return writeError(c, err)
	}
	seats, err := h.Seats.GetByRoom(ctx, roomID)
	if err != nil {
		return writeError(c, err)
	}

	views := make([]seatView, 0, len(seats))
	for i := range seats {
		v := seatViewOf(&seats[i])
		today, err := h.Bookings.TodayBySeat(ctx, seats[i].ID)
		if err != nil {
			return writeError(c, err)
		}
		for _, b := range today {
			v.OrderingList = append(v.OrderingList, windowView{
				StartTime: b.StartTime,
				EndTime:   b.EndTime,
				Status:    b.Status.Code(),
			})
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": views})
}

// SearchSeats finds seats whose number or room name contains the query
// string.
func (h *BrowseHandler) SearchSeats(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return writeError(c, fault.New(fault.Invalid, "query parameter q is required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Seats.Search(ctx, query)
	if err != nil {
		return writeError(c, err)
	}
	views := make([]seatView, 0, len(seats))
	for i := range seats {
		views = append(views, seatViewOf(&seats[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": views})
}
