package response

import (
	"time"

	"gym-booking/internal/data/entity"
)

type ReservationResponse struct {
	ID          string                   `json:"id"`
	UserID      string                   `json:"user_id"`
	ClassID     string                   `json:"class_id"`
	Status      entity.ReservationStatus `json:"status"`
	ClassDate   *string                  `json:"class_date,omitempty"`
	ClassTime   *string                  `json:"class_time,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	CheckedInAt *time.Time               `json:"checked_in_at,omitempty"`
	NoShowAt    *time.Time               `json:"no_show_at,omitempty"`
}

type RosterEntryResponse struct {
	ReservationResponse
	MemberName  string `json:"member_name"`
	MemberEmail string `json:"member_email"`
}

type HistoryItem struct {
	ReservationResponse
	ClassTitle string  `json:"class_title"`
	CoachName  *string `json:"coach_name,omitempty"`
}

type HistoryPage struct {
	Items      []HistoryItem `json:"items"`
	NextCursor *string       `json:"next_cursor"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type SweepResponse struct {
	Scanned int `json:"scanned"`
	Marked  int `json:"marked"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func ReservationToResponse(res *entity.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:          res.ID.String(),
		UserID:      res.UserID.String(),
		ClassID:     res.ClassID.String(),
		Status:      res.Status,
		ClassDate:   res.ClassDate,
		ClassTime:   res.ClassTime,
		CreatedAt:   res.CreatedAt,
		CheckedInAt: res.CheckedInAt,
		NoShowAt:    res.NoShowAt,
	}
}
