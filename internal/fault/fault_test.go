package fault

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(New(NotFound, "seat not found")))
	assert.Equal(t, Conflict, KindOf(New(Conflict, "seat is not available")))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.Equal(t, Internal, KindOf(sql.ErrConnDone))
}

func TestWrapPreservesKind(t *testing.T) {
	inner := New(Forbidden, "this room is not open to you")
	wrapped := Wrap(inner, Internal, "book seat")
	require.Error(t, wrapped)
	assert.Equal(t, Forbidden, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, wrapped))

	var fe *Error
	require.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, "book seat", fe.Msg)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, Internal, "ignored"))
}

func TestMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "internal server error", Message(errors.New("dsn: secret")))
	assert.Equal(t, "internal server error", Message(Wrap(sql.ErrConnDone, Internal, "query failed")))
	assert.Equal(t, "booking not found", Message(New(NotFound, "booking not found")))
}
