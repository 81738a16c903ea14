package entity

import "github.com/google/uuid"

type RecordUnit string

const (
	UnitKg   RecordUnit = "kg"
	UnitReps RecordUnit = "reps"
	UnitMin  RecordUnit = "min"
)

type PersonalRecord struct {
	BaseNoDelete
	UserID   uuid.UUID  `db:"user_id"`
	Movement string     `db:"movement"`
	Value    float64    `db:"value"`
	Unit     RecordUnit `db:"unit"`
}
