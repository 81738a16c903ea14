package usecase

import (
	"context"
	"errors"
	"time"

	"gym-booking/internal/authz"
	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/dto/request"
	"gym-booking/internal/dto/response"
	"gym-booking/internal/schedule"
	"gym-booking/pkg/metrics"
	"gym-booking/pkg/rabbitmq"
	"gym-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

type ReservationService interface {
	CreateReservation(ctx context.Context, callerID uuid.UUID, req *request.CreateReservationRequest) (*response.ReservationResponse, error)
	CancelReservation(ctx context.Context, callerID uuid.UUID, reservationID string) error
	CountReservations(ctx context.Context, classID string) (int, error)
	CountActiveReservations(ctx context.Context, userID uuid.UUID) (int, error)
	GetReservationForUserAndClass(ctx context.Context, callerID uuid.UUID, classID string, userID *string) (*response.ReservationResponse, error)
	ListPastReservations(ctx context.Context, userID uuid.UUID, req request.HistoryRequest) (*response.HistoryPage, error)
	ListClassRoster(ctx context.Context, callerID uuid.UUID, classID string) ([]response.RosterEntryResponse, error)
}

type reservationService struct {
	repo          *repository.Repository
	policy        schedule.Policy
	enforceWindow bool
	events        rabbitmq.EventPublisher
	now           func() time.Time
	log           *zap.Logger
}

func NewReservationService(
	repo *repository.Repository,
	policy schedule.Policy,
	enforceWindow bool,
	events rabbitmq.EventPublisher,
	log *zap.Logger,
) ReservationService {
	return &reservationService{
		repo:          repo,
		policy:        policy,
		enforceWindow: enforceWindow,
		events:        events,
		now:           time.Now,
		log:           log.With(zap.String("service", "reservation")),
	}
}

// CreateReservation books a class for the caller, or for another member when
// the caller is an admin. The duplicate, single-active-booking and capacity
// checks run inside one locking transaction in the repository.
func (s *reservationService) CreateReservation(ctx context.Context, callerID uuid.UUID, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	caller, err := resolvePrincipal(ctx, s.repo.User, callerID)
	if err != nil {
		return nil, err
	}

	// 2. Resolve who the booking is for
	userID := caller.UserID
	onBehalf := false
	if req.UserID != nil {
		target, err := parseID("user_id", *req.UserID)
		if err != nil {
			return nil, err
		}
		if target != caller.UserID {
			if err := gate(authz.RequireAdmin(caller)); err != nil {
				return nil, err
			}
			userID = target
			onBehalf = true
		}
	}

	classID, err := parseID("class_id", req.ClassID)
	if err != nil {
		return nil, err
	}

	// 3. Load class and member
	class, err := s.repo.Class.FindByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}

	member, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrUserNotFound
	}
	if !member.EnrollmentActive {
		return nil, s.reject(ErrEnrollmentInactive, userID, classID)
	}

	now := s.now()

	// 4. Booking window; an admin booking for someone else overrides it
	if s.enforceWindow && !onBehalf {
		start, err := s.policy.ClassStart(class.Date, class.Time)
		if err != nil {
			return nil, err
		}
		switch s.policy.BookingStateAt(start, now) {
		case schedule.BookingNotOpen:
			return nil, s.reject(ErrBookingNotOpen, userID, classID)
		case schedule.BookingClosed:
			return nil, s.reject(ErrBookingClosed, userID, classID)
		case schedule.BookingOpen:
		}
	}

	// 5. Check and write atomically
	res := &entity.Reservation{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:  userID,
		ClassID: classID,
		Status:  entity.ReservationBooked,
	}

	err = s.repo.Reservation.Reserve(ctx, res, func(r *entity.Reservation) bool {
		return s.policy.IsActiveBooking(r.ClassDate, r.ClassTime, now)
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicateReservation):
		return nil, s.reject(ErrAlreadyReserved, userID, classID)
	case errors.Is(err, repository.ErrActiveBookingExists):
		return nil, s.reject(ErrActiveBooking, userID, classID)
	case errors.Is(err, repository.ErrClassFull):
		return nil, s.reject(ErrClassFull, userID, classID)
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrClassNotFound
	default:
		return nil, err
	}

	metrics.ReservationsCreated.Inc()
	s.log.Info("Reservation created",
		zap.String("reservation_id", res.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("class_id", classID.String()),
		zap.Bool("on_behalf", onBehalf),
	)

	publish(ctx, s.events, s.log, rabbitmq.ReservationBooked, response.ReservationToResponse(res))

	resp := response.ReservationToResponse(res)
	return &resp, nil
}

func (s *reservationService) reject(err *Error, userID, classID uuid.UUID) error {
	metrics.ReservationsRejected.WithLabelValues(err.Code).Inc()
	s.log.Info("Reservation rejected",
		zap.String("reason", err.Code),
		zap.String("user_id", userID.String()),
		zap.String("class_id", classID.String()),
	)
	return err
}

// CancelReservation deletes the reservation in any status. Owner or admin only.
func (s *reservationService) CancelReservation(ctx context.Context, callerID uuid.UUID, reservationID string) error {
	caller, err := resolvePrincipal(ctx, s.repo.User, callerID)
	if err != nil {
		return err
	}

	id, err := parseID("id", reservationID)
	if err != nil {
		return err
	}

	res, err := s.repo.Reservation.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if res == nil {
		return ErrReservationNotFound
	}

	if err := gate(authz.RequireOwnerOrAdmin(caller, res.UserID)); err != nil {
		s.log.Warn("Cancel rejected",
			zap.String("reservation_id", id.String()),
			zap.String("caller_id", caller.UserID.String()),
		)
		return err
	}

	// a concurrent cancel may have removed it already; the outcome is the same
	deleted, err := s.repo.Reservation.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.log.Info("Reservation cancelled",
		zap.String("reservation_id", id.String()),
		zap.String("caller_id", caller.UserID.String()),
		zap.Bool("deleted", deleted),
	)

	if deleted {
		publish(ctx, s.events, s.log, rabbitmq.ReservationCancelled, response.ReservationToResponse(res))
	}
	return nil
}

func (s *reservationService) CountReservations(ctx context.Context, classID string) (int, error) {
	id, err := parseID("class_id", classID)
	if err != nil {
		return 0, err
	}
	return s.repo.Reservation.CountByClass(ctx, id)
}

// CountActiveReservations counts BOOKED reservations whose class has not ended
func (s *reservationService) CountActiveReservations(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, ErrUnauthenticated
	}

	booked, err := s.repo.Reservation.ListBookedByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	count := 0
	for _, r := range booked {
		if s.policy.IsActiveBooking(r.ClassDate, r.ClassTime, now) {
			count++
		}
	}
	return count, nil
}

// GetReservationForUserAndClass returns nil when the member has no reservation for the class.
// userID defaults to the caller; looking up someone else requires admin.
func (s *reservationService) GetReservationForUserAndClass(ctx context.Context, callerID uuid.UUID, classID string, userID *string) (*response.ReservationResponse, error) {
	cid, err := parseID("class_id", classID)
	if err != nil {
		return nil, err
	}

	target := callerID
	if userID != nil && *userID != "" {
		uid, err := parseID("user_id", *userID)
		if err != nil {
			return nil, err
		}
		if uid != callerID {
			if _, err := requireAdmin(ctx, s.repo.User, callerID); err != nil {
				return nil, err
			}
		}
		target = uid
	}
	if target == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	res, err := s.repo.Reservation.FindByUserAndClass(ctx, target, cid)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}

	resp := response.ReservationToResponse(res)
	return &resp, nil
}

// ListPastReservations pages the member's history newest first. The query only
// bounds by date; classes later today are dropped here. The next cursor comes
// from the raw page, so a page may hold fewer items than requested.
func (s *reservationService) ListPastReservations(ctx context.Context, userID uuid.UUID, req request.HistoryRequest) (*response.HistoryPage, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultHistoryPageSize
	}
	if pageSize > maxHistoryPageSize {
		pageSize = maxHistoryPageSize
	}

	after, err := decodeHistoryCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	now := s.now()
	raw, err := s.repo.Reservation.ListPastByUser(ctx, userID, s.policy.Today(now), pageSize, after)
	if err != nil {
		return nil, err
	}

	page := &response.HistoryPage{Items: make([]response.HistoryItem, 0, len(raw))}
	if len(raw) == pageSize {
		last := raw[len(raw)-1]
		if last.ClassDate != nil {
			next := encodeHistoryCursor(entity.HistoryCursor{ClassDate: *last.ClassDate, ID: last.ID})
			page.NextCursor = &next
		}
	}

	over := make([]*entity.Reservation, 0, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		if !s.policy.IsClassOver(r.ClassDate, r.ClassTime, now) {
			continue
		}
		over = append(over, r)
		ids = append(ids, r.ClassID)
	}

	classes, err := s.repo.Class.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, r := range over {
		class, ok := classes[r.ClassID]
		if !ok {
			continue
		}
		page.Items = append(page.Items, response.HistoryItem{
			ReservationResponse: response.ReservationToResponse(r),
			ClassTitle:          class.Title,
			CoachName:           class.CoachName,
		})
	}

	return page, nil
}

// ListClassRoster lists every reservation of a class with member names. Admin only.
func (s *reservationService) ListClassRoster(ctx context.Context, callerID uuid.UUID, classID string) ([]response.RosterEntryResponse, error) {
	if _, err := requireAdmin(ctx, s.repo.User, callerID); err != nil {
		return nil, err
	}

	cid, err := parseID("class_id", classID)
	if err != nil {
		return nil, err
	}

	class, err := s.repo.Class.FindByID(ctx, cid)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}

	entries, err := s.repo.Reservation.ListByClass(ctx, cid)
	if err != nil {
		return nil, err
	}

	result := make([]response.RosterEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, response.RosterEntryResponse{
			ReservationResponse: response.ReservationToResponse(&e.Reservation),
			MemberName:          e.MemberName,
			MemberEmail:         e.MemberEmail,
		})
	}
	return result, nil
}
