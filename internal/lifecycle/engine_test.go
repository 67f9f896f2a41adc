package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// fixture wires an engine over a fresh memory store with one open room
// (type 0) containing one available seat.
type fixture struct {
	store  *MemoryStore
	engine *Engine
	room   *model.Room
	seat   *model.Seat
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMemoryStore()
	room := store.AddRoom(model.Room{Name: "R1", Type: 0, Capacity: 10, Status: model.RoomAvailable})
	seat := store.AddSeat(model.Seat{RoomID: room.ID, SeatName: "A1", SeatNumber: "A1", MaxBookingMinutes: 120})
	return &fixture{store: store, engine: New(store), room: room, seat: seat}
}

func student(id uint64, typ uint8) *model.Student {
	return &model.Student{ID: id, Username: "s", Type: typ}
}

func (f *fixture) seatStatus(t *testing.T) model.SeatStatus {
	t.Helper()
	s, err := f.store.SeatByID(context.Background(), f.seat.ID)
	require.NoError(t, err)
	return s.Status
}

func TestBookCreatesReservation(t *testing.T) {
	f := newFixture(t)
	start := time.Now().Truncate(time.Hour)
	b, err := f.engine.Book(context.Background(), student(1, 1), f.seat.ID, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, model.BookingReserved, b.Status)
	assert.NotZero(t, b.ID)
	assert.Equal(t, f.room.ID, b.RoomID)
	assert.Equal(t, model.SeatOccupied, f.seatStatus(t))
}

func TestBookOverlapIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, student(1, 1), f.seat.ID, start, start.Add(2*time.Hour))
	require.NoError(t, err)

	// B's window [T+1h, T+3h) overlaps A's [T, T+2h).
	_, err = f.engine.Book(ctx, student(2, 1), f.seat.ID, start.Add(time.Hour), start.Add(3*time.Hour))
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	// The seat still belongs to A and only A's booking exists.
	assert.Equal(t, model.SeatOccupied, f.seatStatus(t))
	active, err := f.store.ActiveBookingBySeat(ctx, f.seat.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, uint64(1), active.StudentID)
}

func TestBookAdjacentWindowsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, student(1, 1), f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)
	// Half-open windows: [T, T+1h) and [T+1h, T+2h) touch but do not
	// overlap.
	_, err = f.engine.Book(ctx, student(2, 1), f.seat.ID, start.Add(time.Hour), start.Add(2*time.Hour))
	assert.NoError(t, err)
}

func TestBookConflictIsNotDayScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// A booking that crosses midnight must still block a next-day
	// request that overlaps it.
	tonight := time.Date(2026, 3, 14, 23, 0, 0, 0, time.Local)
	_, err := f.engine.Book(ctx, student(1, 1), f.seat.ID, tonight, tonight.Add(2*time.Hour))
	require.NoError(t, err)

	nextDay := time.Date(2026, 3, 15, 0, 30, 0, 0, time.Local)
	_, err = f.engine.Book(ctx, student(2, 1), f.seat.ID, nextDay, nextDay.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))
}

func TestBookIneligibleStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.store.AddRoom(model.Room{Name: "grad only", Type: 2, Status: model.RoomAvailable})
	seat := f.store.AddSeat(model.Seat{RoomID: room.ID, SeatName: "B1", SeatNumber: "B1"})

	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, student(1, 1), seat.ID, start, start.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, fault.Forbidden, fault.KindOf(err))

	// No booking was created and the seat stayed free.
	active, err := f.store.ActiveBookingBySeat(ctx, seat.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// The matching type passes the gate.
	_, err = f.engine.Book(ctx, student(2, 2), seat.ID, start, start.Add(time.Hour))
	assert.NoError(t, err)
}

func TestBookSeatNotFound(t *testing.T) {
	f := newFixture(t)
	start := time.Now()
	_, err := f.engine.Book(context.Background(), student(1, 1), 999, start, start.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestBookUnavailableSeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SetSeatStatus(ctx, f.seat.ID, model.SeatUnavailable))
	start := time.Now()
	_, err := f.engine.Book(ctx, student(1, 1), f.seat.ID, start, start.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))
}

func TestBookInvalidWindow(t *testing.T) {
	f := newFixture(t)
	start := time.Now()
	_, err := f.engine.Book(context.Background(), student(1, 1), f.seat.ID, start, start)
	require.Error(t, err)
	assert.Equal(t, fault.Invalid, fault.KindOf(err))
}

func TestBookExceedsSeatDurationLimit(t *testing.T) {
	f := newFixture(t)
	start := time.Now()
	_, err := f.engine.Book(context.Background(), student(1, 1), f.seat.ID, start, start.Add(3*time.Hour))
	require.Error(t, err)
	assert.Equal(t, fault.Invalid, fault.KindOf(err))
}

func TestLifecycleCheckInLeaveRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := student(1, 1)
	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, a, f.seat.ID, start, start.Add(2*time.Hour))
	require.NoError(t, err)

	b, err := f.engine.CheckIn(ctx, a, f.seat.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCheckedIn, b.Status)
	assert.Equal(t, model.SeatOccupied, f.seatStatus(t))

	b, err = f.engine.TemporaryLeave(ctx, a, f.seat.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingTemporaryLeave, b.Status)
	assert.Equal(t, model.SeatTemporaryLeave, f.seatStatus(t))

	// Re-entry from temporary leave.
	b, err = f.engine.CheckIn(ctx, a, f.seat.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCheckedIn, b.Status)
	assert.Equal(t, model.SeatOccupied, f.seatStatus(t))

	b, err = f.engine.Release(ctx, a, f.seat.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, b.Status)
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t))

	// The freed window is bookable again by someone else.
	_, err = f.engine.Book(ctx, student(3, 1), f.seat.ID, start, start.Add(2*time.Hour))
	assert.NoError(t, err)
}

func TestReleaseWhileOnLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := student(1, 1)
	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, a, f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)
	_, err = f.engine.CheckIn(ctx, a, f.seat.ID)
	require.NoError(t, err)
	_, err = f.engine.TemporaryLeave(ctx, a, f.seat.ID)
	require.NoError(t, err)

	b, err := f.engine.Release(ctx, a, f.seat.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, b.Status)
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t))
}

func TestReleaseTwiceReportsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := student(1, 1)
	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, a, f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)
	_, err = f.engine.Release(ctx, a, f.seat.ID)
	require.NoError(t, err)

	// The second release finds no non-terminal booking and must not
	// change anything.
	_, err = f.engine.Release(ctx, a, f.seat.ID)
	require.Error(t, err)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t))
}

func TestCheckInWithoutBooking(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CheckIn(context.Background(), student(7, 1), f.seat.ID)
	require.Error(t, err)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
	assert.Contains(t, err.Error(), "has not booked")
}

func TestCancelReservedFreesSeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := student(1, 1)
	start := time.Now().Truncate(time.Hour)
	created, err := f.engine.Book(ctx, a, f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	b, err := f.engine.Cancel(ctx, a, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, b.Status)
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t))

	// The same window is immediately bookable by another student.
	_, err = f.engine.Book(ctx, student(2, 1), f.seat.ID, start, start.Add(time.Hour))
	assert.NoError(t, err)
}

func TestCancelAfterCheckInIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := student(1, 1)
	start := time.Now().Truncate(time.Hour)
	created, err := f.engine.Book(ctx, a, f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)
	_, err = f.engine.CheckIn(ctx, a, f.seat.ID)
	require.NoError(t, err)

	_, err = f.engine.Cancel(ctx, a, created.ID)
	require.Error(t, err)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))
	assert.Equal(t, model.SeatOccupied, f.seatStatus(t))
}

func TestCancelSomeoneElsesBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Truncate(time.Hour)
	created, err := f.engine.Book(ctx, student(1, 1), f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	_, err = f.engine.Cancel(ctx, student(2, 1), created.ID)
	require.Error(t, err)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestMostRecentBookingWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := student(1, 1)
	start := time.Now().Truncate(time.Hour)

	// An older, already completed booking for the same seat.
	old, err := f.engine.Book(ctx, a, f.seat.ID, start.Add(-3*time.Hour), start.Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = f.engine.Release(ctx, a, f.seat.ID)
	require.NoError(t, err)

	fresh, err := f.engine.Book(ctx, a, f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	// Check-in must pick the later reservation, not the stale one.
	b, err := f.engine.CheckIn(ctx, a, f.seat.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, b.ID)
	assert.NotEqual(t, old.ID, b.ID)
}

func TestConcurrentBookSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Truncate(time.Hour)

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.Book(ctx, student(uint64(i+1), 1), f.seat.ID, start, start.Add(time.Hour))
		}(i)
	}
	wg.Wait()

	success, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case fault.KindOf(err) == fault.Conflict:
			conflicts++
		default:
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, n-1, conflicts)

	// Exactly one non-terminal booking exists for the seat.
	overlapping, err := f.store.OverlappingBookings(ctx, f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, overlapping, 1)
	assert.Equal(t, model.SeatOccupied, f.seatStatus(t))
}

func TestDisableSeatOverridesBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, student(1, 1), f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	s, err := f.engine.SetSeatAvailability(ctx, f.seat.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.SeatUnavailable, s.Status)
	assert.Equal(t, model.SeatUnavailable, f.seatStatus(t))
}

func TestReenableSeatRestoresDerivedStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := student(1, 1)
	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, a, f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	_, err = f.engine.SetSeatAvailability(ctx, f.seat.ID, false)
	require.NoError(t, err)

	// Re-enabling must surface the still-active reservation, not a
	// blind AVAILABLE.
	s, err := f.engine.SetSeatAvailability(ctx, f.seat.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.SeatOccupied, s.Status)
	assert.Equal(t, model.SeatOccupied, f.seatStatus(t))
}

func TestReenableSeatOnLeaveKeepsLeaveStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := student(1, 1)
	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, a, f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)
	_, err = f.engine.CheckIn(ctx, a, f.seat.ID)
	require.NoError(t, err)
	_, err = f.engine.TemporaryLeave(ctx, a, f.seat.ID)
	require.NoError(t, err)

	_, err = f.engine.SetSeatAvailability(ctx, f.seat.ID, false)
	require.NoError(t, err)
	s, err := f.engine.SetSeatAvailability(ctx, f.seat.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.SeatTemporaryLeave, s.Status)
}

func TestReenableIdleSeatBecomesAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.SetSeatAvailability(ctx, f.seat.ID, false)
	require.NoError(t, err)

	s, err := f.engine.SetSeatAvailability(ctx, f.seat.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, s.Status)
	assert.Equal(t, model.SeatAvailable, f.seatStatus(t))
}

func TestFailedBookLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Now().Truncate(time.Hour)
	_, err := f.engine.Book(ctx, student(1, 1), f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	_, err = f.engine.Book(ctx, student(2, 1), f.seat.ID, start, start.Add(time.Hour))
	require.Error(t, err)

	// Only the winner's booking remains; the seat status was untouched
	// by the failed attempt.
	overlapping, err := f.store.OverlappingBookings(ctx, f.seat.ID, start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, overlapping, 1)
	assert.Equal(t, uint64(1), overlapping[0].StudentID)
}
