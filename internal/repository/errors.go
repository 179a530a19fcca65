// Package repository holds the MySQL data access layer.  The sentinel
// values below let services tell storage outcomes apart without looking
// at driver errors: the inventory rejections returned by EventRepo.Reserve,
// missing rows, and uniqueness or foreign-key conflicts.
package repository

import "errors"

// Inventory rejections raised while the event row is locked.  The caller's
// transaction must be rolled back when any of them is returned.
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrEventNotActive        = errors.New("event not active")
	ErrInsufficientInventory = errors.New("insufficient tickets available")
)

// ErrNoTransaction is returned by operations that take row locks when the
// context carries no transaction.  A locking read in autocommit mode would
// release the lock before the decrement.
var ErrNoTransaction = errors.New("operation requires a transaction")

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrTokenInvalid    = errors.New("refresh token invalid or expired")
)

// Uniqueness violations (MySQL 1062) mapped by index name.
var (
	ErrDuplicateCode  = errors.New("booking code already exists")
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as updating another organizer's event.
// Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete cannot proceed because other rows
// still reference the record, for example an event that has bookings.
// Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")
