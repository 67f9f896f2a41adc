package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// SeatRepo provides access to the seats table.
type SeatRepo struct{ DB *sql.DB }

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{DB: db} }

const seatColumns = `id, room_id, seat_name, seat_number, has_socket, status, max_booking_minutes, created_at, updated_at`

func scanSeatRow(row *sql.Row) (*model.Seat, error) {
	var s model.Seat
	err := row.Scan(&s.ID, &s.RoomID, &s.SeatName, &s.SeatNumber, &s.HasSocket,
		&s.Status, &s.MaxBookingMinutes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "seat not found")
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a seat. Seat names are unique within a room; a
// duplicate yields a Conflict fault.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	if s.Status == "" {
		s.Status = model.SeatAvailable
	}
	if s.MaxBookingMinutes == 0 {
		s.MaxBookingMinutes = model.DefaultMaxBookingMinutes
	}
	const q = `INSERT INTO seats (room_id, seat_name, seat_number, has_socket, status, max_booking_minutes)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, q, s.RoomID, s.SeatName, s.SeatNumber, s.HasSocket, s.Status, s.MaxBookingMinutes)
	if err != nil {
		if isDuplicate(err) {
			return fault.New(fault.Conflict, "seat already exists in this room")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a seat by id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE id = ? LIMIT 1`
	return scanSeatRow(r.DB.QueryRowContext(ctx, q, id))
}

// GetByRoom retrieves all seats of a room ordered by seat number.
func (r *SeatRepo) GetByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE room_id = ? ORDER BY seat_number`
	return r.querySeats(ctx, q, roomID)
}

// Update rewrites the descriptive seat fields. The status column is
// deliberately left alone: it is a derived value owned by the lifecycle
// engine, and operator enable/disable goes through the engine too so
// the stored status never drifts from the active booking.
func (r *SeatRepo) Update(ctx context.Context, s *model.Seat) error {
	const q = `UPDATE seats
	           SET seat_name = ?, seat_number = ?, has_socket = ?, max_booking_minutes = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, s.SeatName, s.SeatNumber, s.HasSocket, s.MaxBookingMinutes, s.ID)
	if err != nil {
		if isDuplicate(err) {
			return fault.New(fault.Conflict, "seat already exists in this room")
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a seat and, as a cascade, every booking that
// references it. Both deletes run in one transaction.
func (r *SeatRepo) Delete(ctx context.Context, seatID uint64) error {
	if _, err := r.GetByID(ctx, seatID); err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE seat_id = ?`, seatID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE id = ?`, seatID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Search returns seats whose seat number or room name matches the query
// text, ordered by room then seat number.
func (r *SeatRepo) Search(ctx context.Context, query string) ([]model.Seat, error) {
	const q = `SELECT s.id, s.room_id, s.seat_name, s.seat_number, s.has_socket, s.status, s.max_booking_minutes, s.created_at, s.updated_at
	           FROM seats s
	           JOIN rooms r ON r.id = s.room_id
	           WHERE s.seat_number LIKE ? OR r.name LIKE ?
	           ORDER BY s.room_id, s.seat_number`
	pattern := "%" + query + "%"
	return r.querySeats(ctx, q, pattern, pattern)
}

func (r *SeatRepo) querySeats(ctx context.Context, q string, args ...interface{}) ([]model.Seat, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.RoomID, &s.SeatName, &s.SeatNumber, &s.HasSocket,
			&s.Status, &s.MaxBookingMinutes, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
