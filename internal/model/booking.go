package model

import "time"

// BookingStatus enumerates the lifecycle state of a booking. RESERVED,
// CHECKED_IN and TEMPORARY_LEAVE are non-terminal and keep the seat
// occupied; COMPLETED and CANCELLED are terminal and impose no seat
// conflict.
type BookingStatus string

// Booking status values as stored in bookings.status.
const (
    BookingReserved       BookingStatus = "RESERVED"
    BookingCheckedIn      BookingStatus = "CHECKED_IN"
    BookingTemporaryLeave BookingStatus = "TEMPORARY_LEAVE"
    BookingCompleted      BookingStatus = "COMPLETED"
    BookingCancelled      BookingStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
    return s == BookingCompleted || s == BookingCancelled
}

// Code returns the legacy integer code for the status, used in API
// responses for compatibility with existing clients
// (0 cancelled, 1 reserved, 2 checked in, 3 temporary leave, 4 completed).
func (s BookingStatus) Code() int {
    switch s {
    case BookingCancelled:
        return 0
    case BookingReserved:
        return 1
    case BookingCheckedIn:
        return 2
    case BookingTemporaryLeave:
        return 3
    case BookingCompleted:
        return 4
    }
    return -1
}

// Booking records a student's reservation of a seat for a time window.
// The room reference is denormalized from the seat for cheap history
// queries. Bookings are created once and mutated only through status
// transitions; they are deleted only as a cascade when their seat is
// deleted. This struct corresponds to a row in the `bookings` table.
//
// Fields:
//  ID        – primary key identifier.
//  StudentID – student who made the booking.
//  SeatID    – booked seat.
//  RoomID    – room of the booked seat (denormalized).
//  StartTime – window start (inclusive).
//  EndTime   – window end (exclusive, must be after StartTime).
//  Status    – lifecycle state (see BookingStatus).
//  CreatedAt – timestamp when the booking was created.
//  UpdatedAt – timestamp of last update.
type Booking struct {
    ID        uint64        // bookings.id
    StudentID uint64        // bookings.student_id
    SeatID    uint64        // bookings.seat_id
    RoomID    uint64        // bookings.room_id
    StartTime time.Time     // bookings.start_time
    EndTime   time.Time     // bookings.end_time
    Status    BookingStatus // bookings.status
    CreatedAt time.Time     // bookings.created_at
    UpdatedAt time.Time     // bookings.updated_at
}

// Overlaps reports whether the booking's half-open window [StartTime,
// EndTime) intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
    return b.StartTime.Before(end) && start.Before(b.EndTime)
}
