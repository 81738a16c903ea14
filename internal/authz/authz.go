// Package authz is the single place role decisions are made.
// Every check is an exhaustive switch over entity.UserRole and fails closed.
package authz

import (
	"errors"
	"strings"

	"gym-booking/internal/data/entity"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
)

// Principal is the caller of an operation, with the role read from its profile
type Principal struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}

func IsAdmin(role entity.UserRole) bool {
	switch role {
	case entity.RoleAdmin:
		return true
	case entity.RoleCoach, entity.RoleStudent:
		return false
	default:
		return false
	}
}

func RequireAuthenticated(p Principal) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func RequireAdmin(p Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !IsAdmin(p.Role) {
		return ErrForbidden
	}
	return nil
}

// RequireOwnerOrAdmin passes for the resource owner or any admin
func RequireOwnerOrAdmin(p Principal, owner uuid.UUID) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if p.UserID == owner || IsAdmin(p.Role) {
		return nil
	}
	return ErrForbidden
}

func RequireOwner(p Principal, owner uuid.UUID) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if p.UserID != owner {
		return ErrForbidden
	}
	return nil
}

// ClampAssignableRole maps a requested role onto the roles a member may be given.
// Admin is never assignable here; unknown values become student.
func ClampAssignableRole(requested string) entity.UserRole {
	switch entity.UserRole(strings.ToLower(strings.TrimSpace(requested))) {
	case entity.RoleCoach:
		return entity.RoleCoach
	case entity.RoleStudent:
		return entity.RoleStudent
	case entity.RoleAdmin:
		return entity.RoleStudent
	default:
		return entity.RoleStudent
	}
}

// ParseRole accepts only known roles
func ParseRole(s string) (entity.UserRole, bool) {
	switch r := entity.UserRole(strings.ToLower(strings.TrimSpace(s))); r {
	case entity.RoleAdmin, entity.RoleCoach, entity.RoleStudent:
		return r, true
	default:
		return "", false
	}
}
