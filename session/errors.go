package session

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks by callers.
	ErrConnect      = errors.New("session: connect failed")
	ErrTransmit     = errors.New("session: host rejected call")
	ErrNotConnected = errors.New("session: not connected")
	ErrRateLimited  = errors.New("session: event rate limit exceeded")
)

// OpError wraps a sentinel with the failing operation and its cause.
type OpError struct {
	Sentinel error
	Op       string
	Err      error
}

func (e *OpError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Sentinel)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

func opError(sentinel error, op string, err error) error {
	return &OpError{Sentinel: sentinel, Op: op, Err: err}
}
