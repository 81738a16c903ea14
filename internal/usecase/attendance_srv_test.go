package usecase

import (
	"context"
	"testing"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/dto/request"
	"gym-booking/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIn_GracePeriod(t *testing.T) {
	tests := []struct {
		name    string
		now     string
		wantErr error
	}{
		{"before start", "08:40", nil},
		{"at start", "09:00", nil},
		{"within grace", "09:14", nil},
		{"at deadline", "09:15", nil},
		{"past deadline", "09:16", ErrCheckInWindowExpired},
		{"hours later", "13:00", ErrCheckInWindowExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			class := f.addClass("2026-03-10", "09:00", 10)
			res := f.addReservation(f.student, class, entity.ReservationBooked, strPtr(class.Date), strPtr(class.Time))
			f.now = at("2026-03-10", tt.now)

			resp, err := f.attendanceService().CheckIn(context.Background(), f.student.ID, res.ID.String())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, KindPrecondition, KindOf(err))
				assert.Equal(t, entity.ReservationBooked, f.reservation(res.ID).Status)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, entity.ReservationCheckedIn, resp.Status)
			stored := f.reservation(res.ID)
			assert.Equal(t, entity.ReservationCheckedIn, stored.Status)
			require.NotNil(t, stored.CheckedInAt)
			assert.Equal(t, f.now, *stored.CheckedInAt)
		})
	}
}

func TestCheckIn_ExpiredCode(t *testing.T) {
	f := newFixture(t)
	class := f.addClass("2026-03-10", "09:00", 10)
	res := f.addReservation(f.student, class, entity.ReservationBooked, strPtr(class.Date), strPtr(class.Time))
	f.now = at("2026-03-10", "09:16")

	_, err := f.attendanceService().CheckIn(context.Background(), f.student.ID, res.ID.String())
	assert.Equal(t, "check_in_window_expired", CodeOf(err))
}

func TestCheckIn_Preconditions(t *testing.T) {
	f := newFixture(t)
	s := f.attendanceService()
	ctx := context.Background()
	class := f.addClass("2026-03-10", "09:00", 10)

	_, err := s.CheckIn(ctx, f.student.ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrReservationNotFound)

	for _, status := range []entity.ReservationStatus{entity.ReservationCheckedIn, entity.ReservationNoShow} {
		member := f.addUser(entity.RoleStudent, true)
		res := f.addReservation(member, class, status, strPtr(class.Date), strPtr(class.Time))
		_, err := s.CheckIn(ctx, member.ID, res.ID.String())
		assert.ErrorIs(t, err, ErrNotBooked, string(status))
	}

	res := f.addReservation(f.student, class, entity.ReservationBooked, strPtr(class.Date), strPtr(class.Time))
	other := f.addUser(entity.RoleStudent, true)
	_, err = s.CheckIn(ctx, other.ID, res.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)

	// self check-in is for the member only; admins use the override
	_, err = s.CheckIn(ctx, f.admin.ID, res.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.CheckIn(ctx, f.student.ID, res.ID.String())
	require.NoError(t, err)
	_, err = s.CheckIn(ctx, f.student.ID, res.ID.String())
	assert.ErrorIs(t, err, ErrNotBooked)
}

func TestCheckIn_FollowsRescheduledClass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.addClass("2026-03-10", "09:00", 10)
	res := f.addReservation(f.student, class, entity.ReservationBooked, strPtr(class.Date), strPtr(class.Time))

	later := "11:00"
	_, err := f.classService().UpdateClass(ctx, f.admin.ID, class.ID.String(), &request.UpdateClassRequest{Time: &later})
	require.NoError(t, err)

	f.now = at("2026-03-10", "11:10")
	_, err = f.attendanceService().CheckIn(ctx, f.student.ID, res.ID.String())
	assert.NoError(t, err)
}

func TestCheckIn_UsesCopyWhenClassIsGone(t *testing.T) {
	f := newFixture(t)
	class := f.addClass("2026-03-10", "09:00", 10)
	res := f.addReservation(f.student, class, entity.ReservationBooked, strPtr(class.Date), strPtr(class.Time))
	delete(f.store.classes, class.ID)
	f.now = at("2026-03-10", "09:05")

	_, err := f.attendanceService().CheckIn(context.Background(), f.student.ID, res.ID.String())
	assert.NoError(t, err)
}

func TestAdminCheckIn(t *testing.T) {
	tests := []struct {
		name   string
		now    string
		status entity.ReservationStatus
	}{
		{"before start", "2026-03-10 07:00", entity.ReservationBooked},
		{"hours after deadline", "2026-03-10 20:00", entity.ReservationBooked},
		{"the next day", "2026-03-11 10:00", entity.ReservationBooked},
		{"after no-show", "2026-03-10 10:00", entity.ReservationNoShow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			class := f.addClass("2026-03-10", "09:00", 10)
			res := f.addReservation(f.student, class, tt.status, strPtr(class.Date), strPtr(class.Time))
			f.now = at(tt.now[:10], tt.now[11:])

			resp, err := f.attendanceService().AdminCheckIn(context.Background(), f.admin.ID, res.ID.String())
			require.NoError(t, err)
			assert.Equal(t, entity.ReservationCheckedIn, resp.Status)
			assert.Equal(t, entity.ReservationCheckedIn, f.reservation(res.ID).Status)
			assert.Equal(t, 1, f.events.count(rabbitmq.ReservationCheckedIn))
		})
	}
}

func TestAdminCheckIn_Rejections(t *testing.T) {
	f := newFixture(t)
	s := f.attendanceService()
	ctx := context.Background()
	class := f.addClass("2026-03-10", "09:00", 10)
	res := f.addReservation(f.student, class, entity.ReservationBooked, strPtr(class.Date), strPtr(class.Time))

	_, err := s.AdminCheckIn(ctx, f.student.ID, res.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, entity.ReservationBooked, f.reservation(res.ID).Status)

	_, err = s.AdminCheckIn(ctx, f.admin.ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
