package usecase

import (
	"context"
	"errors"
	"fmt"

	"gym-booking/internal/authz"
	"gym-booking/internal/data/repository"

	"github.com/google/uuid"
)

// resolvePrincipal reads the caller's role from its profile record
func resolvePrincipal(ctx context.Context, users repository.UserRepository, callerID uuid.UUID) (authz.Principal, error) {
	if callerID == uuid.Nil {
		return authz.Principal{}, ErrUnauthenticated
	}

	user, err := users.FindByID(ctx, callerID)
	if err != nil {
		return authz.Principal{}, fmt.Errorf("load caller %s: %w", callerID.String(), err)
	}
	if user == nil {
		return authz.Principal{}, ErrUnauthenticated
	}

	return authz.Principal{UserID: user.ID, Role: user.Role}, nil
}

func requireAdmin(ctx context.Context, users repository.UserRepository, callerID uuid.UUID) (authz.Principal, error) {
	p, err := resolvePrincipal(ctx, users, callerID)
	if err != nil {
		return authz.Principal{}, err
	}
	if err := gate(authz.RequireAdmin(p)); err != nil {
		return authz.Principal{}, err
	}
	return p, nil
}

// gate turns authz errors into service errors
func gate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, authz.ErrUnauthenticated):
		return ErrUnauthenticated
	case errors.Is(err, authz.ErrForbidden):
		return ErrForbidden
	default:
		return err
	}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidField(field, "Must be a valid UUID")
	}
	return id, nil
}
