package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

func TestRoomReqValidation(t *testing.T) {
	req := roomReq{Name: "Quiet Hall", Type: 0, Capacity: 40, OpenTime: "08:00", CloseTime: "22:00"}
	room, err := req.toModel()
	require.NoError(t, err)
	assert.Equal(t, "Quiet Hall", room.Name)
	assert.Equal(t, 8, room.OpenTime.Hour())
	assert.Equal(t, 22, room.CloseTime.Hour())
}

func TestRoomReqRejectsBadClock(t *testing.T) {
	req := roomReq{Name: "Hall", OpenTime: "8 o'clock", CloseTime: "22:00"}
	_, err := req.toModel()
	require.Error(t, err)
	assert.Equal(t, fault.Invalid, fault.KindOf(err))
}

func TestRoomReqRejectsInvertedHours(t *testing.T) {
	req := roomReq{Name: "Hall", OpenTime: "22:00", CloseTime: "08:00"}
	_, err := req.toModel()
	require.Error(t, err)
	assert.Equal(t, fault.Invalid, fault.KindOf(err))
}

func TestRoomReqRequiresName(t *testing.T) {
	req := roomReq{Name: "  ", OpenTime: "08:00", CloseTime: "22:00"}
	_, err := req.toModel()
	require.Error(t, err)
	assert.Equal(t, fault.Invalid, fault.KindOf(err))
}

func TestSeatStatusFromReq(t *testing.T) {
	status, err := seatStatusFromReq("AVAILABLE")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, status)

	status, err = seatStatusFromReq("UNAVAILABLE")
	require.NoError(t, err)
	assert.Equal(t, model.SeatUnavailable, status)

	// Derived states cannot be set by operators.
	_, err = seatStatusFromReq("OCCUPIED")
	require.Error(t, err)
	assert.Equal(t, fault.Invalid, fault.KindOf(err))
}
