package request

type CreateReservationRequest struct {
	ClassID string `json:"class_id" validate:"required,uuid"`
	// UserID books on behalf of another member, admin only
	UserID *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
}

type HistoryRequest struct {
	PageSize int    `json:"page_size" validate:"min=1,max=100"`
	Cursor   string `json:"cursor"`
}
