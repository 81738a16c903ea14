package response

import (
	"time"

	"gym-booking/internal/data/entity"
)

type PersonalRecordResponse struct {
	ID        string            `json:"id"`
	Movement  string            `json:"movement"`
	Value     float64           `json:"value"`
	Unit      entity.RecordUnit `json:"unit"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func PersonalRecordToResponse(record *entity.PersonalRecord) PersonalRecordResponse {
	return PersonalRecordResponse{
		ID:        record.ID.String(),
		Movement:  record.Movement,
		Value:     record.Value,
		Unit:      record.Unit,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
