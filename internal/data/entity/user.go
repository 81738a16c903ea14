package entity

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleCoach   UserRole = "coach"
	RoleStudent UserRole = "student"
)

type User struct {
	BaseNoDelete
	Name             string   `db:"name"`
	Email            string   `db:"email"`
	PasswordHash     string   `db:"password"`
	Role             UserRole `db:"role"`
	Phone            *string  `db:"phone"`
	BirthDate        *string  `db:"birth_date"`
	Plan             *string  `db:"plan"`
	EnrollmentActive bool     `db:"enrollment_active"`
}

// MemberFilter narrows the admin member listing. Empty fields match everything.
type MemberFilter struct {
	Role   UserRole
	Active *bool
	Plan   string
	Limit  int
	Offset int
}
