// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a seat reservation is successfully
// created. It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
    BookingID  uint64 `json:"booking_id"`
    StudentID  uint64 `json:"student_id"`
    RoomID     uint64 `json:"room_id"`
    RoomName   string `json:"room_name"`
    SeatID     uint64 `json:"seat_id"`
    SeatName   string `json:"seat_name"`
    StartTime  string `json:"start_time"`
    EndTime    string `json:"end_time"`
    ReservedAt string `json:"reserved_at"`
}
