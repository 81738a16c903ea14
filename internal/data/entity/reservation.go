package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationBooked    ReservationStatus = "BOOKED"
	ReservationCheckedIn ReservationStatus = "CHECKED_IN"
	ReservationNoShow    ReservationStatus = "NO_SHOW"
)

// Reservation keeps a copy of the class date/time taken at booking time.
// ClassDate/ClassTime may be nil on records written before the copy existed.
type Reservation struct {
	BaseSimple
	UserID      uuid.UUID         `db:"user_id"`
	ClassID     uuid.UUID         `db:"class_id"`
	Status      ReservationStatus `db:"status"`
	ClassDate   *string           `db:"class_date"`
	ClassTime   *string           `db:"class_time"`
	CheckedInAt *time.Time        `db:"checked_in_at"`
	NoShowAt    *time.Time        `db:"no_show_at"`
}

// RosterEntry is a reservation joined with the member holding it
type RosterEntry struct {
	Reservation
	MemberName  string `db:"member_name"`
	MemberEmail string `db:"member_email"`
}

// HistoryCursor is the keyset position of the last item of a history page
type HistoryCursor struct {
	ClassDate string
	ID        uuid.UUID
}
