package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlapsHalfOpen(t *testing.T) {
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	b := &Booking{StartTime: base, EndTime: base.Add(2 * time.Hour)}

	assert.True(t, b.Overlaps(base.Add(time.Hour), base.Add(3*time.Hour)), "partial overlap")
	assert.True(t, b.Overlaps(base.Add(-time.Hour), base.Add(time.Hour)), "overlap from the left")
	assert.True(t, b.Overlaps(base.Add(30*time.Minute), base.Add(time.Hour)), "contained window")
	assert.False(t, b.Overlaps(base.Add(2*time.Hour), base.Add(3*time.Hour)), "windows that touch do not overlap")
	assert.False(t, b.Overlaps(base.Add(-time.Hour), base), "windows that touch do not overlap")
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, BookingReserved.Terminal())
	assert.False(t, BookingCheckedIn.Terminal())
	assert.False(t, BookingTemporaryLeave.Terminal())
	assert.True(t, BookingCompleted.Terminal())
	assert.True(t, BookingCancelled.Terminal())
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 0, BookingCancelled.Code())
	assert.Equal(t, 1, BookingReserved.Code())
	assert.Equal(t, 2, BookingCheckedIn.Code())
	assert.Equal(t, 3, BookingTemporaryLeave.Code())
	assert.Equal(t, 4, BookingCompleted.Code())
}
