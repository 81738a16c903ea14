package usecase

import (
	"errors"
	"fmt"

	"gym-booking/pkg/utils"
)

// ErrorKind groups failures the way callers need to branch on them
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindPrecondition    ErrorKind = "precondition"
)

// Error is a typed outcome of a service operation. Code is stable and meant for clients.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrUnauthenticated    = newError(KindUnauthenticated, "unauthenticated", "authentication required")
	ErrInvalidCredentials = newError(KindUnauthenticated, "invalid_credentials", "invalid email or password")

	ErrForbidden        = newError(KindForbidden, "forbidden", "permission denied")
	ErrCannotDeleteSelf = newError(KindForbidden, "cannot_delete_self", "admins cannot delete their own account")
	ErrOwnerProtected   = newError(KindForbidden, "owner_protected", "the box owner cannot be deleted")
	ErrAdminRoleLocked  = newError(KindForbidden, "admin_role_locked", "an admin's role cannot be changed")

	ErrClassNotFound       = newError(KindNotFound, "class_not_found", "class not found")
	ErrReservationNotFound = newError(KindNotFound, "reservation_not_found", "reservation not found")
	ErrUserNotFound        = newError(KindNotFound, "user_not_found", "user not found")
	ErrRecordNotFound      = newError(KindNotFound, "record_not_found", "personal record not found")
	ErrBoxNotFound         = newError(KindNotFound, "box_not_configured", "box has not been set up")

	ErrClassFull       = newError(KindConflict, "class_full", "class is full")
	ErrAlreadyReserved = newError(KindConflict, "already_reserved", "you already have a reservation for this class")
	ErrActiveBooking   = newError(KindConflict, "active_booking_exists", "you already have an active booking")
	ErrEmailTaken      = newError(KindConflict, "email_taken", "email already registered")
	ErrBoxExists       = newError(KindConflict, "box_already_configured", "box is already set up")

	ErrCheckInWindowExpired = newError(KindPrecondition, "check_in_window_expired", "check-in window has expired")
	ErrNotBooked            = newError(KindPrecondition, "reservation_not_booked", "reservation is not in BOOKED status")
	ErrBookingNotOpen       = newError(KindPrecondition, "booking_not_open", "booking for this class is not open yet")
	ErrBookingClosed        = newError(KindPrecondition, "booking_closed", "booking for this class has closed")
	ErrEnrollmentInactive   = newError(KindPrecondition, "enrollment_inactive", "membership enrollment is inactive")
)

// NewValidationError wraps validator output
func NewValidationError(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "validation_failed",
		Message: fmt.Sprintf("validation failed: %s", utils.FormatValidationErrors(fields)),
		Fields:  fields,
	}
}

func invalidField(field, message string) *Error {
	return NewValidationError(map[string]string{field: message})
}

// KindOf returns the kind of a typed error, or "" for internal failures
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the client code of a typed error
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
