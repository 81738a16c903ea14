package request

type CreateMemberRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=120"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	Role      string  `json:"role,omitempty"`
	Plan      *string `json:"plan,omitempty" validate:"omitempty,max=64"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,min=6,max=32"`
	BirthDate *string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateMemberRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Role             *string `json:"role,omitempty"`
	Plan             *string `json:"plan,omitempty" validate:"omitempty,max=64"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,min=6,max=32"`
	BirthDate        *string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EnrollmentActive *bool   `json:"enrollment_active,omitempty"`
}

type MemberFilterRequest struct {
	PaginatedRequest
	Role   string `json:"role" validate:"omitempty,oneof=admin coach student"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
	Plan   string `json:"plan" validate:"omitempty,max=64"`
}
