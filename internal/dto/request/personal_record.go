package request

type CreatePersonalRecordRequest struct {
	Movement string  `json:"movement" validate:"required,min=1,max=120"`
	Value    float64 `json:"value" validate:"required,gt=0"`
	Unit     string  `json:"unit" validate:"required,oneof=kg reps min"`
}

type UpdatePersonalRecordRequest struct {
	Value float64 `json:"value" validate:"required,gt=0"`
	Unit  string  `json:"unit" validate:"required,oneof=kg reps min"`
}
