package zymkey

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindOperationFailed is a negative status from a single device call.
	KindOperationFailed Kind = iota + 1
	// KindDeviceUnavailable means there is no usable session: the open call
	// failed or the client was closed.
	KindDeviceUnavailable
	// KindInvalidArgument is a caller error caught before any native call.
	KindInvalidArgument
)

var (
	ErrOperationFailed   = errors.New("zymkey: operation failed")
	ErrDeviceUnavailable = errors.New("zymkey: device unavailable")
	ErrInvalidArgument   = errors.New("zymkey: invalid argument")
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindOperationFailed:
		return "operation failed"
	case KindDeviceUnavailable:
		return "device unavailable"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindDeviceUnavailable:
		return ErrDeviceUnavailable
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return ErrOperationFailed
	}
}

// Error is the structured failure returned by every Client method. Op names the
// native call (or the API method for argument errors) and Code carries the
// native status, zero when no native call was made.
type Error struct {
	Kind Kind
	Op   string
	Code int
	Msg  string
}

// Error implements error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := fmt.Sprintf("zymkey: %s: %s", e.Op, e.Kind)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Code != 0 {
		s += fmt.Sprintf(" (status %d)", e.Code)
	}
	return s
}

// Unwrap lets errors.Is match the Kind sentinels.
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var zkErr *Error
	if errors.As(err, &zkErr) {
		return zkErr.Kind
	}
	return 0
}

// IsTimeout reports whether err is a native timeout.
func IsTimeout(err error) bool {
	var zkErr *Error
	return errors.As(err, &zkErr) && zkErr.Code == StatusTimedOut
}

func check(op string, ret int) error {
	if ret < 0 {
		return &Error{Kind: KindOperationFailed, Op: op, Code: ret}
	}
	return nil
}

func invalidArg(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func unavailable(op string, code int, msg string) error {
	return &Error{Kind: KindDeviceUnavailable, Op: op, Code: code, Msg: msg}
}
