// Package lifecycle implements the seat/booking state machine: booking
// admission (eligibility + overlap conflict), check-in, temporary leave,
// release and cancellation. The engine is storage-agnostic; it talks to
// a Store and requires every state-changing operation to run inside the
// store's per-seat atomic boundary so that the pair (seat status, set of
// non-terminal bookings) is read and written as one unit.
package lifecycle

import (
	"context"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// Store is the persistence surface the engine needs. Lookups return a
// fault.NotFound error when the record is absent, except
// ActiveBookingBySeat which returns (nil, nil) because an idle seat is
// not an error.
type Store interface {
	// SeatByID loads a seat. Inside InSeatTx the row is locked for the
	// duration of the transaction.
	SeatByID(ctx context.Context, seatID uint64) (*model.Seat, error)
	// RoomByID loads a room.
	RoomByID(ctx context.Context, roomID uint64) (*model.Room, error)
	// SetSeatStatus writes the derived seat status.
	SetSeatStatus(ctx context.Context, seatID uint64, status model.SeatStatus) error
	// CreateBooking inserts a booking and populates its ID.
	CreateBooking(ctx context.Context, b *model.Booking) error
	// OverlappingBookings returns the seat's non-terminal bookings whose
	// half-open window intersects [start, end). Terminal bookings are
	// history and never returned.
	OverlappingBookings(ctx context.Context, seatID uint64, start, end time.Time) ([]model.Booking, error)
	// LatestBookingForSeat returns the student's most recent booking for
	// the seat, ordered by start time descending regardless of status.
	LatestBookingForSeat(ctx context.Context, studentID, seatID uint64) (*model.Booking, error)
	// ActiveBookingBySeat returns the seat's most recent non-terminal
	// booking (start time descending), or (nil, nil) when the seat has
	// none. Non-terminal bookings never overlap, but a seat may carry
	// several for disjoint future windows.
	ActiveBookingBySeat(ctx context.Context, seatID uint64) (*model.Booking, error)
	// BookingByIDForStudent returns a booking only when it belongs to the
	// student.
	BookingByIDForStudent(ctx context.Context, bookingID, studentID uint64) (*model.Booking, error)
	// SetBookingStatus writes a booking status transition.
	SetBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error
}

// Atomic extends Store with the per-seat exclusive boundary. InSeatTx
// runs fn so that at most one state-changing operation per seat is in
// flight at a time; when fn returns an error every write made inside fn
// is rolled back. Operations on different seats are independent.
type Atomic interface {
	Store
	InSeatTx(ctx context.Context, seatID uint64, fn func(Store) error) error
}

// Engine applies lifecycle transitions. All methods return fault-tagged
// errors; transient store failures are surfaced unchanged and never
// retried here.
type Engine struct {
	store Atomic
}

// New constructs an Engine on top of the given store.
func New(store Atomic) *Engine {
	if store == nil {
		panic("nil store passed to lifecycle.New")
	}
	return &Engine{store: store}
}

// Book admits a new reservation for the student on the seat over
// [start, end). Preconditions, checked in order inside the seat
// transaction: the seat exists, the seat and its room are not
// operator-disabled, the room is open to the student's type, the window
// is sane and within the seat's duration cap, and no non-terminal
// booking overlaps the window. On success the booking is created as
// RESERVED and the seat becomes OCCUPIED.
func (e *Engine) Book(ctx context.Context, student *model.Student, seatID uint64, start, end time.Time) (*model.Booking, error) {
	if !end.After(start) {
		return nil, fault.New(fault.Invalid, "end time must be after start time")
	}
	var booking *model.Booking
	err := e.store.InSeatTx(ctx, seatID, func(s Store) error {
		seat, err := s.SeatByID(ctx, seatID)
		if err != nil {
			return err
		}
		if seat.Status == model.SeatUnavailable {
			return fault.New(fault.Conflict, "seat is not available")
		}
		room, err := s.RoomByID(ctx, seat.RoomID)
		if err != nil {
			return err
		}
		if room.Status != model.RoomAvailable {
			return fault.New(fault.Conflict, "room is not available")
		}
		if !room.OpenToType(student.Type) {
			return fault.New(fault.Forbidden, "this room is not open to you")
		}
		maxMin := seat.MaxBookingMinutes
		if maxMin == 0 {
			maxMin = model.DefaultMaxBookingMinutes
		}
		if end.Sub(start) > time.Duration(maxMin)*time.Minute {
			return fault.New(fault.Invalid, "booking exceeds the seat limit of %d minutes", maxMin)
		}
		overlapping, err := s.OverlappingBookings(ctx, seatID, start, end)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return fault.New(fault.Conflict, "seat is already booked for this time")
		}
		booking = &model.Booking{
			StudentID: student.ID,
			SeatID:    seat.ID,
			RoomID:    seat.RoomID,
			StartTime: start,
			EndTime:   end,
			Status:    model.BookingReserved,
		}
		if err := s.CreateBooking(ctx, booking); err != nil {
			return err
		}
		return recomputeSeat(ctx, s, seat)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CheckIn marks the student's current booking for the seat as
// CHECKED_IN. Valid from RESERVED and, as re-entry, from
// TEMPORARY_LEAVE. The seat becomes OCCUPIED.
func (e *Engine) CheckIn(ctx context.Context, student *model.Student, seatID uint64) (*model.Booking, error) {
	return e.transition(ctx, student, seatID, model.BookingCheckedIn)
}

// TemporaryLeave marks the student's current booking for the seat as
// TEMPORARY_LEAVE. The seat mirrors the state so other students can see
// the occupant intends to return.
func (e *Engine) TemporaryLeave(ctx context.Context, student *model.Student, seatID uint64) (*model.Booking, error) {
	return e.transition(ctx, student, seatID, model.BookingTemporaryLeave)
}

// Release ends the student's current booking for the seat normally. The
// booking becomes COMPLETED and the seat reverts to AVAILABLE. Calling
// Release again once the booking is terminal reports NotFound, so a
// double release cannot change state.
func (e *Engine) Release(ctx context.Context, student *model.Student, seatID uint64) (*model.Booking, error) {
	return e.transition(ctx, student, seatID, model.BookingCompleted)
}

// transition applies a status change to the student's most recent
// booking for the seat. The most-recent lookup orders by start time
// descending, so when a student has stacked several historical bookings
// for one seat the latest reservation wins.
func (e *Engine) transition(ctx context.Context, student *model.Student, seatID uint64, to model.BookingStatus) (*model.Booking, error) {
	var booking *model.Booking
	err := e.store.InSeatTx(ctx, seatID, func(s Store) error {
		seat, err := s.SeatByID(ctx, seatID)
		if err != nil {
			return err
		}
		b, err := s.LatestBookingForSeat(ctx, student.ID, seatID)
		if err != nil {
			if fault.KindOf(err) == fault.NotFound {
				return fault.New(fault.NotFound, "student has not booked this seat")
			}
			return err
		}
		if b.Status.Terminal() {
			return fault.New(fault.NotFound, "student has not booked this seat")
		}
		if err := s.SetBookingStatus(ctx, b.ID, to); err != nil {
			return err
		}
		b.Status = to
		booking = b
		return recomputeSeat(ctx, s, seat)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel withdraws a booking before use. Only RESERVED bookings can be
// cancelled; a checked-in occupant must release instead. The seat status
// is recomputed so that cancelling the active booking frees the seat
// immediately.
func (e *Engine) Cancel(ctx context.Context, student *model.Student, bookingID uint64) (*model.Booking, error) {
	// Resolve the seat first; the state change itself re-reads the
	// booking under the seat lock.
	peek, err := e.store.BookingByIDForStudent(ctx, bookingID, student.ID)
	if err != nil {
		if fault.KindOf(err) == fault.NotFound {
			return nil, fault.New(fault.NotFound, "booking not found")
		}
		return nil, err
	}
	var booking *model.Booking
	err = e.store.InSeatTx(ctx, peek.SeatID, func(s Store) error {
		b, err := s.BookingByIDForStudent(ctx, bookingID, student.ID)
		if err != nil {
			return err
		}
		switch b.Status {
		case model.BookingReserved:
			// cancellable
		case model.BookingCheckedIn, model.BookingTemporaryLeave:
			return fault.New(fault.Conflict, "booking is in use, release the seat instead")
		default:
			return fault.New(fault.Conflict, "booking is already finished")
		}
		if err := s.SetBookingStatus(ctx, b.ID, model.BookingCancelled); err != nil {
			return err
		}
		b.Status = model.BookingCancelled
		booking = b
		seat, err := s.SeatByID(ctx, b.SeatID)
		if err != nil {
			return err
		}
		return recomputeSeat(ctx, s, seat)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// SetSeatAvailability flips the operator flag on a seat. Disabling
// writes UNAVAILABLE regardless of bookings. Re-enabling recomputes the
// stored status from the seat's active booking, so a seat that was
// booked while out of service comes back as OCCUPIED or TEMPORARY_LEAVE
// rather than a blind AVAILABLE.
func (e *Engine) SetSeatAvailability(ctx context.Context, seatID uint64, available bool) (*model.Seat, error) {
	var seat *model.Seat
	err := e.store.InSeatTx(ctx, seatID, func(s Store) error {
		var err error
		seat, err = s.SeatByID(ctx, seatID)
		if err != nil {
			return err
		}
		if !available {
			if seat.Status == model.SeatUnavailable {
				return nil
			}
			if err := s.SetSeatStatus(ctx, seatID, model.SeatUnavailable); err != nil {
				return err
			}
			seat.Status = model.SeatUnavailable
			return nil
		}
		if seat.Status != model.SeatUnavailable {
			return nil
		}
		if err := s.SetSeatStatus(ctx, seatID, model.SeatAvailable); err != nil {
			return err
		}
		seat.Status = model.SeatAvailable
		return recomputeSeat(ctx, s, seat)
	})
	if err != nil {
		return nil, err
	}
	return seat, nil
}

// recomputeSeat rewrites the seat status as a materialized view of the
// seat's active booking. An operator-disabled seat stays UNAVAILABLE no
// matter what the bookings say.
func recomputeSeat(ctx context.Context, s Store, seat *model.Seat) error {
	if seat.Status == model.SeatUnavailable {
		return nil
	}
	active, err := s.ActiveBookingBySeat(ctx, seat.ID)
	if err != nil {
		return err
	}
	status := model.SeatAvailable
	if active != nil {
		switch active.Status {
		case model.BookingTemporaryLeave:
			status = model.SeatTemporaryLeave
		default:
			status = model.SeatOccupied
		}
	}
	if status == seat.Status {
		return nil
	}
	if err := s.SetSeatStatus(ctx, seat.ID, status); err != nil {
		return err
	}
	seat.Status = status
	return nil
}
