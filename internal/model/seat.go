package model

import "time"

// SeatStatus enumerates the lifecycle state of a seat. The value is
// derived: it must always agree with the seat's current active booking
// (AVAILABLE when there is none). UNAVAILABLE is operator controlled and
// independent of bookings.
type SeatStatus string

// Seat status values as stored in seats.status.
const (
    SeatAvailable      SeatStatus = "AVAILABLE"
    SeatOccupied       SeatStatus = "OCCUPIED"
    SeatTemporaryLeave SeatStatus = "TEMPORARY_LEAVE"
    SeatUnavailable    SeatStatus = "UNAVAILABLE"
)

// DefaultMaxBookingMinutes is the per-booking duration cap applied to a
// seat when none is configured.
const DefaultMaxBookingMinutes = 120

// Seat describes a bookable seat inside a room. Seat names are unique
// within their room. This struct corresponds to a row in the `seats`
// table.
//
// Fields:
//  ID                – primary key identifier.
//  RoomID            – room that owns this seat.
//  SeatName          – display name, unique per room.
//  SeatNumber        – seat number label, mirrors SeatName in the
//                      current schema.
//  HasSocket         – whether the seat has a power socket.
//  Status            – derived lifecycle state (see SeatStatus).
//  MaxBookingMinutes – longest booking window allowed for this seat.
//  CreatedAt         – timestamp when the seat was created.
//  UpdatedAt         – timestamp of last update.
type Seat struct {
    ID                uint64     // seats.id
    RoomID            uint64     // seats.room_id
    SeatName          string     // seats.seat_name
    SeatNumber        string     // seats.seat_number
    HasSocket         bool       // seats.has_socket
    Status            SeatStatus // seats.status
    MaxBookingMinutes uint32     // seats.max_booking_minutes
    CreatedAt         time.Time  // seats.created_at
    UpdatedAt         time.Time  // seats.updated_at
}
