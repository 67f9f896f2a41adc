package model

import "time"

// RoomStatus enumerates the operator-controlled availability of a room.
type RoomStatus uint8

// Room status values. The integer codes mirror the rooms.status column
// (0 available, 1 unavailable).
const (
    RoomAvailable   RoomStatus = 0
    RoomUnavailable RoomStatus = 1
)

// Room represents a study room that contains bookable seats. A room of
// type 0 is open to every student category; a non-zero type restricts
// the room to students whose type matches. This struct corresponds to a
// row in the `rooms` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique room name.
//  Type      – 0 open to all, otherwise the required student type.
//  Capacity  – number of seats the room is built for.
//  Location  – human readable location (building/floor).
//  OpenTime  – daily opening time.
//  CloseTime – daily closing time.
//  Status    – operator availability flag.
//  CreatedAt – timestamp when the room was created.
//  UpdatedAt – timestamp of last update.
type Room struct {
    ID        uint64     // rooms.id
    Name      string     // rooms.name
    Type      uint8      // rooms.type
    Capacity  uint32     // rooms.capacity
    Location  string     // rooms.location
    OpenTime  time.Time  // rooms.open_time
    CloseTime time.Time  // rooms.close_time
    Status    RoomStatus // rooms.status
    CreatedAt time.Time  // rooms.created_at
    UpdatedAt time.Time  // rooms.updated_at
}

// OpenToType reports whether a student of the given type may book seats
// in this room. Type 0 rooms accept every student type.
func (r *Room) OpenToType(studentType uint8) bool {
    return r.Type == 0 || r.Type == studentType
}
