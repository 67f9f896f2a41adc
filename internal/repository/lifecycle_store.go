package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/lifecycle"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting the lifecycle queries run either standalone or inside the
// per-seat transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// LifecycleStore implements lifecycle.Atomic on MySQL. InSeatTx opens a
// transaction and takes a FOR UPDATE row lock on the seat, which is the
// per-seat exclusive boundary: a concurrent writer on the same seat
// waits on the row lock and then observes the committed state, so the
// overlap check and both writes act as one unit. Different seats lock
// different rows and proceed in parallel.
type LifecycleStore struct {
	db *sql.DB
	lifecycleQueries
}

// NewLifecycleStore constructs a LifecycleStore with the given DB handle.
func NewLifecycleStore(db *sql.DB) *LifecycleStore {
	return &LifecycleStore{db: db, lifecycleQueries: lifecycleQueries{q: db}}
}

// InSeatTx implements lifecycle.Atomic.
func (s *LifecycleStore) InSeatTx(ctx context.Context, seatID uint64, fn func(lifecycle.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Lock the seat row for the duration of the transaction. A missing
	// seat is not an error here; fn reports NotFound itself.
	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM seats WHERE id = ? FOR UPDATE`, seatID).Scan(&locked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err := fn(lifecycleQueries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// lifecycleQueries holds the lifecycle.Store queries over a querier.
type lifecycleQueries struct {
	q querier
}

// SeatByID implements lifecycle.Store.
func (l lifecycleQueries) SeatByID(ctx context.Context, seatID uint64) (*model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE id = ? LIMIT 1`
	return scanSeatRow(l.q.QueryRowContext(ctx, q, seatID))
}

// RoomByID implements lifecycle.Store.
func (l lifecycleQueries) RoomByID(ctx context.Context, roomID uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? LIMIT 1`
	return scanRoomRow(l.q.QueryRowContext(ctx, q, roomID))
}

// SetSeatStatus implements lifecycle.Store.
func (l lifecycleQueries) SetSeatStatus(ctx context.Context, seatID uint64, status model.SeatStatus) error {
	const q = `UPDATE seats SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := l.q.ExecContext(ctx, q, status, seatID)
	return err
}

// CreateBooking implements lifecycle.Store.
func (l lifecycleQueries) CreateBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (student_id, seat_id, room_id, start_time, end_time, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := l.q.ExecContext(ctx, q, b.StudentID, b.SeatID, b.RoomID,
		b.StartTime.UTC(), b.EndTime.UTC(), b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// OverlappingBookings implements lifecycle.Store. The overlap predicate
// is the half-open interval rule (s1 < e2 AND s2 < e1) restricted to
// non-terminal statuses; no day scoping.
func (l lifecycleQueries) OverlappingBookings(ctx context.Context, seatID uint64, start, end time.Time) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE seat_id = ?
	             AND status IN ('RESERVED','CHECKED_IN','TEMPORARY_LEAVE')
	             AND start_time < ? AND ? < end_time`
	rows, err := l.q.QueryContext(ctx, q, seatID, end.UTC(), start.UTC())
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

func scanBookingRow(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.StudentID, &b.SeatID, &b.RoomID,
		&b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "booking not found")
		}
		return nil, err
	}
	return &b, nil
}

// LatestBookingForSeat implements lifecycle.Store. Ordering by start
// time descending keeps the most recent reservation first when a
// student has stacked several bookings for one seat.
func (l lifecycleQueries) LatestBookingForSeat(ctx context.Context, studentID, seatID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE student_id = ? AND seat_id = ?
	           ORDER BY start_time DESC
	           LIMIT 1`
	return scanBookingRow(l.q.QueryRowContext(ctx, q, studentID, seatID))
}

// ActiveBookingBySeat implements lifecycle.Store.
func (l lifecycleQueries) ActiveBookingBySeat(ctx context.Context, seatID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE seat_id = ? AND status IN ('RESERVED','CHECKED_IN','TEMPORARY_LEAVE')
	           ORDER BY start_time DESC
	           LIMIT 1`
	b, err := scanBookingRow(l.q.QueryRowContext(ctx, q, seatID))
	if err != nil {
		if fault.KindOf(err) == fault.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// BookingByIDForStudent implements lifecycle.Store.
func (l lifecycleQueries) BookingByIDForStudent(ctx context.Context, bookingID, studentID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? AND student_id = ? LIMIT 1`
	return scanBookingRow(l.q.QueryRowContext(ctx, q, bookingID, studentID))
}

// SetBookingStatus implements lifecycle.Store.
func (l lifecycleQueries) SetBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := l.q.ExecContext(ctx, q, status, bookingID)
	return err
}
