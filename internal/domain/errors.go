package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

func (e ValidationError) Unwrap() error { return e.Err }

type ForbiddenError struct {
	Msg string
	Err error
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "forbidden"
}

func (e ForbiddenError) Unwrap() error { return e.Err }

// SeatUnavailableError signals that the conditional seat decrement matched
// zero rows: the ride sold out, or a concurrent booking won the remaining
// seats first.
type SeatUnavailableError struct {
	RideID    int64
	Requested int
}

func (e SeatUnavailableError) Error() string {
	if e.Requested > 0 {
		return fmt.Sprintf("ride %d has fewer than %d seats available", e.RideID, e.Requested)
	}
	return "seats not available"
}

// InvalidStateError signals a transition from a terminal or incompatible
// status, e.g. cancelling an already cancelled booking.
type InvalidStateError struct {
	Resource string
	Status   string
}

func (e InvalidStateError) Error() string {
	if e.Resource != "" && e.Status != "" {
		return fmt.Sprintf("%s in status %q does not allow this operation", e.Resource, e.Status)
	}
	return "operation not allowed in current status"
}

// WindowClosedError signals a cancellation attempted on or after the
// journey date.
type WindowClosedError struct {
	JourneyDate string
}

func (e WindowClosedError) Error() string {
	if e.JourneyDate != "" {
		return fmt.Sprintf("cancellation window closed: journey date %s has been reached", e.JourneyDate)
	}
	return "cancellation window closed"
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// DependencyError wraps storage failures; the only class callers may retry.
type DependencyError struct {
	Op  string
	Err error
}

func (e DependencyError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("dependency failure during %s", e.Op)
	}
	return "dependency failure"
}

func (e DependencyError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsSeatUnavailable(err error) bool {
	var target SeatUnavailableError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target InvalidStateError
	return errors.As(err, &target)
}

func IsWindowClosed(err error) bool {
	var target WindowClosedError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsDependency(err error) bool {
	var target DependencyError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
