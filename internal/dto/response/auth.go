package response

import (
	"time"

	"gym-booking/internal/data/entity"
)

type AuthResponse struct {
	UserID    string          `json:"user_id"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      entity.UserRole `json:"role"`
}

type UserResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Role             entity.UserRole `json:"role"`
	Phone            *string         `json:"phone,omitempty"`
	BirthDate        *string         `json:"birth_date,omitempty"`
	Plan             *string         `json:"plan,omitempty"`
	EnrollmentActive bool            `json:"enrollment_active"`
	CreatedAt        time.Time       `json:"created_at"`
}

type BoxResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	OwnerID string  `json:"owner_id"`
}

type SetupResponse struct {
	Box  BoxResponse  `json:"box"`
	Auth AuthResponse `json:"auth"`
}

type StatsResponse struct {
	Students     int64  `json:"students"`
	Coaches      int64  `json:"coaches"`
	ClassesToday int64  `json:"classes_today"`
	Date         string `json:"date"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:               user.ID.String(),
		Name:             user.Name,
		Email:            user.Email,
		Role:             user.Role,
		Phone:            user.Phone,
		BirthDate:        user.BirthDate,
		Plan:             user.Plan,
		EnrollmentActive: user.EnrollmentActive,
		CreatedAt:        user.CreatedAt,
	}
}

func AuthToResponse(user *entity.User, token string, expiresAt time.Time) AuthResponse {
	return AuthResponse{
		UserID:    user.ID.String(),
		Token:     token,
		ExpiresAt: expiresAt,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
	}
}

func BoxToResponse(box *entity.Box) BoxResponse {
	return BoxResponse{
		ID:      box.ID.String(),
		Name:    box.Name,
		Address: box.Address,
		OwnerID: box.OwnerID.String(),
	}
}
