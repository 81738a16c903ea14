package usecase

import (
	"context"
	"time"

	"gym-booking/internal/authz"
	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/dto/response"
	"gym-booking/internal/schedule"
	"gym-booking/pkg/metrics"
	"gym-booking/pkg/rabbitmq"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttendanceService moves reservations from BOOKED to CHECKED_IN.
// NO_SHOW is written only by the sweeper.
type AttendanceService interface {
	CheckIn(ctx context.Context, callerID uuid.UUID, reservationID string) (*response.ReservationResponse, error)
	AdminCheckIn(ctx context.Context, callerID uuid.UUID, reservationID string) (*response.ReservationResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	policy schedule.Policy
	events rabbitmq.EventPublisher
	now    func() time.Time
	log    *zap.Logger
}

func NewAttendanceService(repo *repository.Repository, policy schedule.Policy, events rabbitmq.EventPublisher, log *zap.Logger) AttendanceService {
	return &attendanceService{
		repo:   repo,
		policy: policy,
		events: events,
		now:    time.Now,
		log:    log.With(zap.String("service", "attendance")),
	}
}

// CheckIn is the member's own check-in: the reservation must be BOOKED and
// now must not be past class start plus the grace period.
func (s *attendanceService) CheckIn(ctx context.Context, callerID uuid.UUID, reservationID string) (*response.ReservationResponse, error) {
	id, err := parseID("id", reservationID)
	if err != nil {
		return nil, err
	}

	caller, err := resolvePrincipal(ctx, s.repo.User, callerID)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}

	if err := gate(authz.RequireOwner(caller, res.UserID)); err != nil {
		return nil, err
	}

	if res.Status != entity.ReservationBooked {
		return nil, ErrNotBooked
	}

	start, err := s.classStart(ctx, res)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !s.policy.CanSelfCheckIn(start, now) {
		s.log.Info("Check-in window expired",
			zap.String("reservation_id", id.String()),
			zap.Time("class_start", start),
		)
		return nil, ErrCheckInWindowExpired
	}

	ok, err := s.repo.Reservation.CheckIn(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost a race with cancel or the sweeper
		current, err := s.repo.Reservation.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrReservationNotFound
		}
		return nil, ErrNotBooked
	}

	res.Status = entity.ReservationCheckedIn
	res.CheckedInAt = &now

	metrics.CheckIns.WithLabelValues("self").Inc()
	s.log.Info("Checked in", zap.String("reservation_id", id.String()), zap.String("user_id", res.UserID.String()))
	publish(ctx, s.events, s.log, rabbitmq.ReservationCheckedIn, map[string]any{
		"reservation_id": res.ID,
		"user_id":        res.UserID,
		"class_id":       res.ClassID,
		"kind":           "self",
		"checked_in_at":  now,
	})

	resp := response.ReservationToResponse(res)
	return &resp, nil
}

// AdminCheckIn is the manual override: no time window and no status precondition
func (s *attendanceService) AdminCheckIn(ctx context.Context, callerID uuid.UUID, reservationID string) (*response.ReservationResponse, error) {
	if _, err := requireAdmin(ctx, s.repo.User, callerID); err != nil {
		return nil, err
	}

	id, err := parseID("id", reservationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ok, err := s.repo.Reservation.ForceCheckIn(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReservationNotFound
	}

	res, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}

	metrics.CheckIns.WithLabelValues("admin").Inc()
	s.log.Info("Admin check-in",
		zap.String("reservation_id", id.String()),
		zap.String("admin_id", callerID.String()),
	)
	publish(ctx, s.events, s.log, rabbitmq.ReservationCheckedIn, map[string]any{
		"reservation_id": res.ID,
		"user_id":        res.UserID,
		"class_id":       res.ClassID,
		"kind":           "admin",
		"checked_in_at":  now,
	})

	resp := response.ReservationToResponse(res)
	return &resp, nil
}

// classStart prefers the live class and falls back to the reservation's copy
func (s *attendanceService) classStart(ctx context.Context, res *entity.Reservation) (time.Time, error) {
	class, err := s.repo.Class.FindByID(ctx, res.ClassID)
	if err != nil {
		return time.Time{}, err
	}
	if class != nil {
		return s.policy.ClassStart(class.Date, class.Time)
	}

	start, err := s.policy.StartOf(res.ClassDate, res.ClassTime)
	if err != nil {
		return time.Time{}, ErrClassNotFound
	}
	return start, nil
}
