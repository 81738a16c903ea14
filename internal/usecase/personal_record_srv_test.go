package usecase

import (
	"context"
	"testing"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPersonalRecords(t *testing.T) {
	f := newFixture(t)
	s := NewPersonalRecordService(f.repo, zap.NewNop())
	ctx := context.Background()

	created, err := s.Create(ctx, f.student.ID, &request.CreatePersonalRecordRequest{Movement: "Back Squat", Value: 100, Unit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, entity.UnitKg, created.Unit)

	_, err = s.Create(ctx, f.student.ID, &request.CreatePersonalRecordRequest{Movement: "Fran", Value: 5, Unit: "seconds"})
	assert.Equal(t, KindValidation, KindOf(err))

	list, err := s.List(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	other := f.addUser(entity.RoleStudent, true)
	_, err = s.Update(ctx, other.ID, created.ID, &request.UpdatePersonalRecordRequest{Value: 200, Unit: "kg"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, s.Delete(ctx, other.ID, created.ID), ErrForbidden)

	updated, err := s.Update(ctx, f.student.ID, created.ID, &request.UpdatePersonalRecordRequest{Value: 105, Unit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, 105.0, updated.Value)

	require.NoError(t, s.Delete(ctx, f.student.ID, created.ID))
	assert.ErrorIs(t, s.Delete(ctx, f.student.ID, created.ID), ErrRecordNotFound)

	_, err = s.Update(ctx, f.student.ID, uuid.NewString(), &request.UpdatePersonalRecordRequest{Value: 1, Unit: "reps"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
