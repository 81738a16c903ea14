package request

type WorkoutSegmentRequest struct {
	Title   string `json:"title" validate:"required,max=120"`
	Details string `json:"details" validate:"max=4000"`
}

type CreateClassRequest struct {
	Title     string                  `json:"title" validate:"required,max=120"`
	CoachName *string                 `json:"coach_name,omitempty" validate:"omitempty,max=120"`
	Date      string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string                  `json:"time" validate:"required,datetime=15:04"`
	Capacity  int                     `json:"capacity" validate:"required,gt=0"`
	Sessions  []WorkoutSegmentRequest `json:"sessions,omitempty" validate:"omitempty,dive"`
}

// UpdateClassRequest is a partial update, nil fields are left untouched.
// Sessions replaces the whole list when present.
type UpdateClassRequest struct {
	Title     *string                  `json:"title,omitempty" validate:"omitempty,min=1,max=120"`
	CoachName *string                  `json:"coach_name,omitempty" validate:"omitempty,max=120"`
	Date      *string                  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time      *string                  `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Capacity  *int                     `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	Sessions  *[]WorkoutSegmentRequest `json:"sessions,omitempty" validate:"omitempty,dive"`
}

func (r UpdateClassRequest) ChangesSchedule() bool {
	return r.Date != nil || r.Time != nil
}
