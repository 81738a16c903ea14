package entity

import "github.com/google/uuid"

// WorkoutSegment is one named block of a class (warm-up, skill, WOD...)
type WorkoutSegment struct {
	Title   string `json:"title"`
	Details string `json:"details"`
}

type ClassSession struct {
	BaseNoDelete
	Title     string           `db:"title"`
	CoachName *string          `db:"coach_name"`
	Date      string           `db:"class_date"` // YYYY-MM-DD
	Time      string           `db:"class_time"` // HH:MM, gym wall clock
	Capacity  int              `db:"capacity"`
	CreatedBy uuid.UUID        `db:"created_by"`
	Sessions  []WorkoutSegment `db:"sessions"`
}

// ClassSummary is a class together with its current reservation count
type ClassSummary struct {
	ClassSession
	Booked int `db:"booked"`
}
