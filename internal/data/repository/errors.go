package repository

import "errors"

var (
	ErrNotFound             = errors.New("record not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrBoxExists            = errors.New("box already configured")
	ErrDuplicateReservation = errors.New("reservation already exists for user and class")
	ErrActiveBookingExists  = errors.New("user already holds an active booking")
	ErrClassFull            = errors.New("class is full")
)

// scanner is satisfied by both pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

