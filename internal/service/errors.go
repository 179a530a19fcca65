// Package service implements the application use cases on top of the
// repositories: the booking coordinator and status machine, event and user
// management, and authentication.  Every failure it returns is an *Error
// whose Kind tells the transport layer how to respond.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/event-ticketing/internal/repository"
)

// ErrorKind classifies a failure independently of where it came from.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidQuantity
	KindInvalidInput
	KindEventNotFound
	KindNotFound
	KindEventNotActive
	KindInsufficientInventory
	KindConflict
	KindForbidden
	KindUnauthorized
	// KindTransient covers lock wait timeouts, deadlocks, lost connections
	// and expired deadlines.  The request may succeed if retried.
	KindTransient
)

var kindNames = map[ErrorKind]string{
	KindInternal:              "internal",
	KindInvalidQuantity:       "invalid quantity",
	KindInvalidInput:          "invalid input",
	KindEventNotFound:         "event not found",
	KindNotFound:              "not found",
	KindEventNotActive:        "event not active",
	KindInsufficientInventory: "insufficient inventory",
	KindConflict:              "conflict",
	KindForbidden:             "forbidden",
	KindUnauthorized:          "unauthorized",
	KindTransient:             "temporarily unavailable",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by every service operation.
type Error struct {
	Kind ErrorKind
	Op   string // operation name, e.g. "booking.create"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Validation failures raised before storage is touched.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidStatus   = errors.New("unknown booking status")
	ErrBadCredentials  = errors.New("invalid email or password")
)

func newError(op string, kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func invalid(op, msg string) *Error {
	return newError(op, KindInvalidInput, errors.New(msg))
}

// classify wraps err in an *Error, deriving the kind from repository
// sentinels and driver conditions.  Errors that already carry a kind are
// returned unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return newError(op, kindFor(err), err)
}

func kindFor(err error) ErrorKind {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return KindEventNotFound
	case errors.Is(err, repository.ErrEventNotActive):
		return KindEventNotActive
	case errors.Is(err, repository.ErrInsufficientInventory):
		return KindInsufficientInventory
	case errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrUsernameExists),
		errors.Is(err, repository.ErrDuplicateCode),
		errors.Is(err, repository.ErrConflict):
		return KindConflict
	case errors.Is(err, repository.ErrForbidden):
		return KindForbidden
	case errors.Is(err, repository.ErrTokenInvalid):
		return KindUnauthorized
	case errors.Is(err, context.Canceled), repository.IsTransient(err):
		return KindTransient
	default:
		return KindInternal
	}
}

// rejection reports whether k is an expected business outcome rather than
// a failure of the system.
func rejection(k ErrorKind) bool {
	switch k {
	case KindInternal, KindTransient:
		return false
	}
	return true
}
