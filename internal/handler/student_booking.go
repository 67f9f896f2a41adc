package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/lifecycle"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/study-room-reservation/internal/service"
)

// BookingHandler exposes the seat lifecycle to students: book, check in,
// temporary leave, release, cancel, plus the read-only history and
// current-booking views.
type BookingHandler struct {
	Engine   *lifecycle.Engine
	Students *repository.StudentRepo
	Bookings *repository.BookingRepo
	Rooms    *repository.RoomRepo
	Seats    *repository.SeatRepo
}

// NewBookingHandler wires the lifecycle engine and repositories.
func NewBookingHandler(e *lifecycle.Engine, s *repository.StudentRepo, b *repository.BookingRepo,
	rm *repository.RoomRepo, st *repository.SeatRepo) *BookingHandler {
	if e == nil || s == nil || b == nil || rm == nil || st == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: e, Students: s, Bookings: b, Rooms: rm, Seats: st}
}

type bookReq struct {
	SeatID    uint64    `json:"seat_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// bookingView is the wire shape of a booking. booking_status carries the
// legacy integer code (0 cancelled, 1 reserved, 2 checked in,
// 3 temporary leave, 4 completed) expected by existing clients.
type bookingView struct {
	BookingID     uint64    `json:"booking_id"`
	RoomID        uint64    `json:"room_id"`
	SeatID        uint64    `json:"seat_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	BookingStatus int       `json:"booking_status"`
}

func viewOf(b *model.Booking) bookingView {
	return bookingView{
		BookingID:     b.ID,
		RoomID:        b.RoomID,
		SeatID:        b.SeatID,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		BookingStatus: b.Status.Code(),
	}
}

// requester loads the authenticated student for the eligibility check.
func (h *BookingHandler) requester(c echo.Context) (*model.Student, error) {
	id, err := getUserID(c)
	if err != nil {
		return nil, fault.New(fault.Forbidden, "unauthorized")
	}
	return h.Students.GetByID(c.Request().Context(), id)
}

// Book reserves a seat for the request window. On success the new
// booking is returned and a booking.created event is published in the
// background; publish failures are logged, never surfaced.
func (h *BookingHandler) Book(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, fault.New(fault.Invalid, "invalid request body"))
	}
	if req.SeatID == 0 {
		return writeError(c, fault.New(fault.Invalid, "seat_id is required"))
	}
	student, err := h.requester(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booking, err := h.Engine.Book(ctx, student, req.SeatID, req.StartTime, req.EndTime)
	if err != nil {
		return writeError(c, err)
	}

	ev := queue.BookingCreatedEvent{
		BookingID:  booking.ID,
		StudentID:  booking.StudentID,
		RoomID:     booking.RoomID,
		SeatID:     booking.SeatID,
		StartTime:  booking.StartTime.UTC().Format(time.RFC3339),
		EndTime:    booking.EndTime.UTC().Format(time.RFC3339),
		ReservedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pcancel()
		// Names are best-effort enrichment for the event log.
		if room, err := h.Rooms.GetByID(pctx, booking.RoomID); err == nil {
			ev.RoomName = room.Name
		}
		if seat, err := h.Seats.GetByID(pctx, booking.SeatID); err == nil {
			ev.SeatName = seat.SeatName
		}
		_ = queue_publisher.PublishBookingCreated(pctx, ev)
	}()

	return c.JSON(http.StatusCreated, viewOf(booking))
}

// CheckIn marks the student's current reservation on the seat as
// CHECKED_IN.
func (h *BookingHandler) CheckIn(c echo.Context) error {
	return h.transition(c, h.Engine.CheckIn)
}

// Leave marks the student's checked-in booking as TEMPORARY_LEAVE, so
// the seat shows as on leave without freeing it.
func (h *BookingHandler) Leave(c echo.Context) error {
	return h.transition(c, h.Engine.TemporaryLeave)
}

// Release completes the student's booking on the seat and frees it.
func (h *BookingHandler) Release(c echo.Context) error {
	return h.transition(c, h.Engine.Release)
}

func (h *BookingHandler) transition(c echo.Context, op func(context.Context, *model.Student, uint64) (*model.Booking, error)) error {
	seatID, err := pathID(c, "seat_id")
	if err != nil {
		return writeError(c, err)
	}
	student, err := h.requester(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booking, err := op(ctx, student, seatID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(booking))
}

// Cancel cancels the student's reservation before check-in and frees
// the seat.
func (h *BookingHandler) Cancel(c echo.Context) error {
	bookingID, err := pathID(c, "booking_id")
	if err != nil {
		return writeError(c, err)
	}
	student, err := h.requester(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booking, err := h.Engine.Cancel(ctx, student, bookingID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(booking))
}

// History returns every booking of the student, newest start time first.
func (h *BookingHandler) History(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Bookings.HistoryByStudent(ctx, studentID)
	if err != nil {
		return writeError(c, err)
	}
	views := make([]bookingView, 0, len(list))
	for i := range list {
		views = append(views, viewOf(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": views})
}

// Current returns the student's active booking, if any.
func (h *BookingHandler) Current(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booking, err := h.Bookings.CurrentByStudent(ctx, studentID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(booking))
}
