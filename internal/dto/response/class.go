package response

import (
	"time"

	"gym-booking/internal/data/entity"
)

type ClassResponse struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	CoachName *string                 `json:"coach_name,omitempty"`
	Date      string                  `json:"date"`
	Time      string                  `json:"time"`
	Capacity  int                     `json:"capacity"`
	Booked    int                     `json:"booked"`
	CreatedBy string                  `json:"created_by"`
	Sessions  []entity.WorkoutSegment `json:"sessions"`
	UpdatedAt time.Time               `json:"updated_at"`
}

type ClassUpdateResponse struct {
	Class                ClassResponse `json:"class"`
	ReservationsResynced int64         `json:"reservations_resynced"`
}

type ClassDeleteResponse struct {
	ReservationsRemoved int64 `json:"reservations_removed"`
}

// CheckInWindowResponse carries the advisory timing of a class for display
type CheckInWindowResponse struct {
	ClassID         string    `json:"class_id"`
	StartsAt        time.Time `json:"starts_at"`
	CheckInOpen     bool      `json:"check_in_open"`
	CheckInDeadline time.Time `json:"check_in_deadline"`
	BookingOpensAt  time.Time `json:"booking_opens_at"`
	BookingClosesAt time.Time `json:"booking_closes_at"`
	BookingState    string    `json:"booking_state"`
}

func ClassToResponse(class *entity.ClassSession, booked int) ClassResponse {
	sessions := class.Sessions
	if sessions == nil {
		sessions = []entity.WorkoutSegment{}
	}
	return ClassResponse{
		ID:        class.ID.String(),
		Title:     class.Title,
		CoachName: class.CoachName,
		Date:      class.Date,
		Time:      class.Time,
		Capacity:  class.Capacity,
		Booked:    booked,
		CreatedBy: class.CreatedBy.String(),
		Sessions:  sessions,
		UpdatedAt: class.UpdatedAt,
	}
}
