package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalDayBounds(t *testing.T) {
	now := time.Date(2026, 7, 3, 15, 42, 7, 0, time.Local)
	start, end := localDayBounds(now)

	assert.Equal(t, time.Date(2026, 7, 3, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2026, 7, 4, 0, 0, 0, 0, time.Local), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestLocalDayBoundsMidnight(t *testing.T) {
	midnight := time.Date(2026, 7, 3, 0, 0, 0, 0, time.Local)
	start, end := localDayBounds(midnight)

	assert.True(t, start.Equal(midnight), "midnight belongs to the starting day")
	assert.True(t, end.After(midnight))
}
