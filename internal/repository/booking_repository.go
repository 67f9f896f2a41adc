package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// BookingRepo provides the read-side booking queries. Lifecycle writes
// go through the lifecycle store instead so they stay inside the
// per-seat transaction boundary.
type BookingRepo struct{ DB *sql.DB }

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = `id, student_id, seat_id, room_id, start_time, end_time, status, created_at, updated_at`

// HistoryByStudent returns every booking of a student, newest start time
// first.
func (r *BookingRepo) HistoryByStudent(ctx context.Context, studentID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE student_id = ? ORDER BY start_time DESC`
	return r.queryBookings(ctx, q, studentID)
}

// CurrentByStudent returns the student's most recent non-terminal
// booking, or a NotFound fault when there is none.
func (r *BookingRepo) CurrentByStudent(ctx context.Context, studentID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE student_id = ?
	             AND status IN ('RESERVED','CHECKED_IN','TEMPORARY_LEAVE')
	           ORDER BY start_time DESC
	           LIMIT 1`
	list, err := r.queryBookings(ctx, q, studentID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fault.New(fault.NotFound, "no active booking")
	}
	return &list[0], nil
}

// localDayBounds returns the half-open window [start of day, start of
// next day) around t in the server's local zone.
func localDayBounds(t time.Time) (time.Time, time.Time) {
	local := t.Local()
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 0, 1)
}

// TodayBySeat returns the seat's non-terminal bookings that overlap the
// current local day. This feeds the seat-detail view only; booking
// admission uses the lifecycle store's global overlap check.
func (r *BookingRepo) TodayBySeat(ctx context.Context, seatID uint64) ([]model.Booking, error) {
	dayStart, dayEnd := localDayBounds(time.Now())
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE seat_id = ?
	             AND status IN ('RESERVED','CHECKED_IN','TEMPORARY_LEAVE')
	             AND start_time < ? AND ? < end_time
	           ORDER BY start_time`
	return r.queryBookings(ctx, q, seatID, dayEnd.UTC(), dayStart.UTC())
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.StudentID, &b.SeatID, &b.RoomID,
			&b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
