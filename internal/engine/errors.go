package engine

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors classify every failure the engine reports.
var (
	ErrConnection     = errors.New("display connection failed")
	ErrParse          = errors.New("unparsable key sequence")
	ErrInvalidButton  = errors.New("invalid mouse button")
	ErrTargetNotFound = errors.New("target not found")
	ErrDispatch       = errors.New("dispatch failed")
	ErrNoTarget       = errors.New("no target window")
)

// Status is the numeric result code exposed at the binding boundary.
type Status int

const (
	StatusOK             Status = 0
	StatusFailure        Status = 1
	StatusConnection     Status = 2
	StatusParse          Status = 3
	StatusInvalidButton  Status = 4
	StatusTargetNotFound Status = 5
	StatusDispatch       Status = 6
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailure:
		return "failure"
	case StatusConnection:
		return "connection_error"
	case StatusParse:
		return "parse_error"
	case StatusInvalidButton:
		return "invalid_button"
	case StatusTargetNotFound:
		return "target_not_found"
	case StatusDispatch:
		return "dispatch_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StatusOf maps an error to its status code. A nil error is StatusOK.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrConnection):
		return StatusConnection
	case errors.Is(err, ErrParse):
		return StatusParse
	case errors.Is(err, ErrInvalidButton):
		return StatusInvalidButton
	case errors.Is(err, ErrTargetNotFound):
		return StatusTargetNotFound
	case errors.Is(err, ErrDispatch):
		return StatusDispatch
	default:
		return StatusFailure
	}
}

// Indeterminate reports whether the failed operation may already have taken
// effect on the server. Such errors must not be retried blindly.
func Indeterminate(err error) bool {
	return errors.Is(err, ErrDispatch) || errors.Is(err, context.DeadlineExceeded)
}

func dispatchError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrDispatch, err)
}
