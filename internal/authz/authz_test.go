package authz

import (
	"testing"

	"gym-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequireAdmin(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		p    Principal
		want error
	}{
		{"admin", Principal{UserID: id, Role: entity.RoleAdmin}, nil},
		{"coach", Principal{UserID: id, Role: entity.RoleCoach}, ErrForbidden},
		{"student", Principal{UserID: id, Role: entity.RoleStudent}, ErrForbidden},
		{"unknown role", Principal{UserID: id, Role: "superuser"}, ErrForbidden},
		{"empty role", Principal{UserID: id}, ErrForbidden},
		{"anonymous", Principal{Role: entity.RoleAdmin}, ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireAdmin(tt.p)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	owner := uuid.New()

	assert.NoError(t, RequireOwnerOrAdmin(Principal{UserID: owner, Role: entity.RoleStudent}, owner))
	assert.NoError(t, RequireOwnerOrAdmin(Principal{UserID: uuid.New(), Role: entity.RoleAdmin}, owner))
	assert.ErrorIs(t, RequireOwnerOrAdmin(Principal{UserID: uuid.New(), Role: entity.RoleCoach}, owner), ErrForbidden)
	assert.ErrorIs(t, RequireOwnerOrAdmin(Principal{}, owner), ErrUnauthenticated)
}

func TestRequireOwner(t *testing.T) {
	owner := uuid.New()

	assert.NoError(t, RequireOwner(Principal{UserID: owner, Role: entity.RoleStudent}, owner))
	assert.ErrorIs(t, RequireOwner(Principal{UserID: uuid.New(), Role: entity.RoleAdmin}, owner), ErrForbidden)
}

func TestClampAssignableRole(t *testing.T) {
	tests := map[string]entity.UserRole{
		"student": entity.RoleStudent,
		"coach":   entity.RoleCoach,
		" Coach ": entity.RoleCoach,
		"admin":   entity.RoleStudent,
		"ADMIN":   entity.RoleStudent,
		"":        entity.RoleStudent,
		"owner":   entity.RoleStudent,
	}

	for in, want := range tests {
		assert.Equal(t, want, ClampAssignableRole(in), "input %q", in)
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("Admin")
	assert.True(t, ok)
	assert.Equal(t, entity.RoleAdmin, r)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}
