package request

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SetupRequest creates the box and its owner on a fresh deployment
type SetupRequest struct {
	BoxName  string  `json:"box_name" validate:"required,min=2,max=120"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Name     string  `json:"name" validate:"required,min=2,max=120"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
}
