// Package schedule holds the wall-clock rules shared by booking, check-in and
// the no-show sweeper. Class date and time are naive local values of the gym;
// they are interpreted in the configured Location.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"gym-booking/pkg/utils"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var ErrMissingSchedule = errors.New("class date or time missing")

type Policy struct {
	Location            *time.Location
	ClassDuration       time.Duration
	CheckInGrace        time.Duration
	BookingOpensBefore  time.Duration
	BookingClosesBefore time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Location:            time.Local,
		ClassDuration:       60 * time.Minute,
		CheckInGrace:        15 * time.Minute,
		BookingOpensBefore:  12 * time.Hour,
		BookingClosesBefore: 15 * time.Minute,
	}
}

// NewPolicy builds a Policy from config, falling back to the defaults for zero durations
func NewPolicy(cfg utils.ScheduleConfig) (Policy, error) {
	p := DefaultPolicy()

	if cfg.Timezone != "" && cfg.Timezone != "Local" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Policy{}, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		p.Location = loc
	}
	if cfg.ClassDuration > 0 {
		p.ClassDuration = cfg.ClassDuration
	}
	if cfg.CheckInGrace > 0 {
		p.CheckInGrace = cfg.CheckInGrace
	}
	if cfg.BookingOpensBefore > 0 {
		p.BookingOpensBefore = cfg.BookingOpensBefore
	}
	if cfg.BookingClosesBefore > 0 {
		p.BookingClosesBefore = cfg.BookingClosesBefore
	}

	return p, nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// ClassStart combines a YYYY-MM-DD date and an HH:MM time into an instant
func (p Policy) ClassStart(date, clock string) (time.Time, error) {
	if date == "" || clock == "" {
		return time.Time{}, ErrMissingSchedule
	}
	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, p.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse class start %s %s: %w", date, clock, err)
	}
	return start, nil
}

// StartOf is ClassStart for optional (denormalized) fields
func (p Policy) StartOf(date, clock *string) (time.Time, error) {
	if date == nil || clock == nil {
		return time.Time{}, ErrMissingSchedule
	}
	return p.ClassStart(*date, *clock)
}

func (p Policy) ClassEnd(start time.Time) time.Time {
	return start.Add(p.ClassDuration)
}

func (p Policy) CheckInDeadline(start time.Time) time.Time {
	return start.Add(p.CheckInGrace)
}

// CanSelfCheckIn is the authoritative deadline rule: now <= start + grace
func (p Policy) CanSelfCheckIn(start, now time.Time) bool {
	return !now.After(p.CheckInDeadline(start))
}

// IsCheckInOpen is the advisory window now in [start, start + grace], used for display only
func (p Policy) IsCheckInOpen(start, now time.Time) bool {
	return !now.Before(start) && !now.After(p.CheckInDeadline(start))
}

// IsNoShow reports whether a still-booked reservation has missed its check-in deadline.
// The error is ErrMissingSchedule or a parse error for malformed records.
func (p Policy) IsNoShow(date, clock *string, now time.Time) (bool, error) {
	start, err := p.StartOf(date, clock)
	if err != nil {
		return false, err
	}
	return now.After(p.CheckInDeadline(start)), nil
}

// IsActiveBooking reports whether a booked reservation still blocks new bookings.
// Missing or unparsable fields count as active.
func (p Policy) IsActiveBooking(date, clock *string, now time.Time) bool {
	start, err := p.StartOf(date, clock)
	if err != nil {
		return true
	}
	return now.Before(p.ClassEnd(start))
}

// IsClassOver reports whether the class has ended. Missing fields count as over.
func (p Policy) IsClassOver(date, clock *string, now time.Time) bool {
	start, err := p.StartOf(date, clock)
	if err != nil {
		return true
	}
	return !now.Before(p.ClassEnd(start))
}

type BookingState string

const (
	BookingNotOpen BookingState = "pending"
	BookingOpen    BookingState = "open"
	BookingClosed  BookingState = "closed"
)

func (p Policy) BookingWindow(start time.Time) (opensAt, closesAt time.Time) {
	return start.Add(-p.BookingOpensBefore), start.Add(-p.BookingClosesBefore)
}

func (p Policy) BookingStateAt(start, now time.Time) BookingState {
	opensAt, closesAt := p.BookingWindow(start)
	switch {
	case now.Before(opensAt):
		return BookingNotOpen
	case now.After(closesAt):
		return BookingClosed
	default:
		return BookingOpen
	}
}

// Today is the current calendar day at the gym
func (p Policy) Today(now time.Time) string {
	return now.In(p.location()).Format(DateLayout)
}

func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
