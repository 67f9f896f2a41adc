package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-room-reservation/internal/fault"
)

func performWriteError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, writeError(c, err))
	return rec
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fault.New(fault.NotFound, "seat not found"), http.StatusNotFound},
		{fault.New(fault.Forbidden, "this room is not open to you"), http.StatusForbidden},
		{fault.New(fault.Conflict, "seat is already booked for this time"), http.StatusConflict},
		{fault.New(fault.Invalid, "end time must be after start time"), http.StatusBadRequest},
		{errors.New("broken pipe"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := performWriteError(t, tc.err)
		assert.Equal(t, tc.status, rec.Code)
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := performWriteError(t, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestWriteErrorExposesClientMessage(t *testing.T) {
	rec := performWriteError(t, fault.New(fault.NotFound, "student has not booked this seat"))
	assert.Contains(t, rec.Body.String(), "student has not booked this seat")
}
