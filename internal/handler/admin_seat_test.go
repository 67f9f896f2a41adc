package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindSeatReq(t *testing.T, body string) seatReq {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var out seatReq
	require.NoError(t, c.Bind(&out))
	return out
}

func TestSeatReqOmittedSocketStaysUnset(t *testing.T) {
	// A body that does not mention has_socket must not read as an
	// explicit false, or a rename would silently clear the flag.
	req := bindSeatReq(t, `{"seat_name":"A2"}`)
	assert.Nil(t, req.HasSocket)
}

func TestSeatReqExplicitSocketFalseBinds(t *testing.T) {
	req := bindSeatReq(t, `{"has_socket":false}`)
	require.NotNil(t, req.HasSocket)
	assert.False(t, *req.HasSocket)

	req = bindSeatReq(t, `{"has_socket":true}`)
	require.NotNil(t, req.HasSocket)
	assert.True(t, *req.HasSocket)
}
