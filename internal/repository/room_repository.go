package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// RoomRepo provides access to the rooms table.
type RoomRepo struct{ DB *sql.DB }

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = `id, name, type, capacity, location, open_time, close_time, status, created_at, updated_at`

func scanRoomRow(row *sql.Row) (*model.Room, error) {
	var r model.Room
	err := row.Scan(&r.ID, &r.Name, &r.Type, &r.Capacity, &r.Location,
		&r.OpenTime, &r.CloseTime, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.New(fault.NotFound, "room not found")
		}
		return nil, err
	}
	return &r, nil
}

// Create inserts a room. A duplicate room name yields a Conflict fault.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (name, type, capacity, location, open_time, close_time, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, q, room.Name, room.Type, room.Capacity, room.Location,
		room.OpenTime.UTC(), room.CloseTime.UTC(), room.Status)
	if err != nil {
		if isDuplicate(err) {
			return fault.New(fault.Conflict, "room already exists")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// GetByID fetches a room by id.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? LIMIT 1`
	return scanRoomRow(r.DB.QueryRowContext(ctx, q, id))
}

// Update rewrites the mutable room fields.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	const q = `UPDATE rooms
	           SET name = ?, type = ?, capacity = ?, location = ?, open_time = ?, close_time = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, room.Name, room.Type, room.Capacity, room.Location,
		room.OpenTime.UTC(), room.CloseTime.UTC(), room.Status, room.ID)
	if err != nil {
		if isDuplicate(err) {
			return fault.New(fault.Conflict, "room already exists")
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also 0 when nothing changed, so confirm the
		// row exists before reporting NotFound.
		if _, err := r.GetByID(ctx, room.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a room together with its seats and their bookings. The
// cascade runs in one transaction so a partial delete never survives.
func (r *RoomRepo) Delete(ctx context.Context, roomID uint64) error {
	if _, err := r.GetByID(ctx, roomID); err != nil {
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
	if _, err := tx.ExecContext(ctx,
		`DELETE b FROM bookings b JOIN seats s ON s.id = b.seat_id WHERE s.room_id = ?`, roomID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, roomID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// List returns all rooms ordered by id.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Room
	for rows.Next() {
		var m model.Room
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.Capacity, &m.Location,
			&m.OpenTime, &m.CloseTime, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RoomAvailability pairs a room with the number of its seats currently
// in the AVAILABLE state and the total seat count.
type RoomAvailability struct {
	Room           model.Room
	TotalSeats     uint32
	AvailableSeats uint32
}

// ListWithAvailableSeats returns all rooms annotated with seat counts in
// a single query. Seat status is the derived lifecycle field, so the
// count reflects live occupancy.
func (r *RoomRepo) ListWithAvailableSeats(ctx context.Context) ([]RoomAvailability, error) {
	const q = `SELECT ` + `r.id, r.name, r.type, r.capacity, r.location, r.open_time, r.close_time, r.status, r.created_at, r.updated_at,
	                  COUNT(s.id),
	                  COALESCE(SUM(s.status = 'AVAILABLE'), 0)
	           FROM rooms r
	           LEFT JOIN seats s ON s.room_id = r.id
	           GROUP BY r.id
	           ORDER BY r.id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RoomAvailability
	for rows.Next() {
		var a RoomAvailability
		if err := rows.Scan(&a.Room.ID, &a.Room.Name, &a.Room.Type, &a.Room.Capacity, &a.Room.Location,
			&a.Room.OpenTime, &a.Room.CloseTime, &a.Room.Status, &a.Room.CreatedAt, &a.Room.UpdatedAt,
			&a.TotalSeats, &a.AvailableSeats); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
