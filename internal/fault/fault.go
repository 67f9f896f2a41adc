// Package fault carries typed errors between the repository/lifecycle
// layers and the HTTP handlers. Each error has a Kind that the handler
// layer maps to a transport status code, so precondition failures travel
// through ordinary return values instead of ad-hoc sentinel comparisons.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the boundary layer.
type Kind uint8

const (
	// Internal is an unexpected failure. Handlers must not expose its
	// message to clients.
	Internal Kind = iota
	// NotFound reports an absent seat, room, booking or student, or the
	// absence of a qualifying booking for an operation.
	NotFound
	// Forbidden reports an eligibility or ownership violation.
	Forbidden
	// Conflict reports state that blocks the operation: an overlapping
	// booking, an unavailable seat, or a duplicate name on creation.
	Conflict
	// Invalid reports a malformed or out-of-range request.
	Invalid
)

// String returns the kind's name for logs.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case Invalid:
		return "invalid"
	default:
		return "internal"
	}
}

// Error is a failure tagged with a Kind. The message is client-visible
// for every kind except Internal.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged error with a formatted message.
func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error. It returns nil when err is nil. When
// err is already tagged, the original kind is preserved and only the
// message is extended, so a NotFound from a repository does not get
// re-tagged as Internal on its way up.
func Wrap(err error, k Kind, msg string) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return &Error{Kind: fe.Kind, Msg: msg, Err: err}
	}
	return &Error{Kind: k, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain. Untagged errors are
// Internal.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// Message returns the client-visible message for an error. Internal
// errors collapse to a generic message so no details leak.
func Message(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Kind != Internal {
		return fe.Msg
	}
	return "internal server error"
}
