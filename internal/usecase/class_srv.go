package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/dto/request"
	"gym-booking/internal/dto/response"
	"gym-booking/internal/schedule"
	"gym-booking/pkg/rabbitmq"
	"gym-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ClassService interface {
	ListByDate(ctx context.Context, date string) ([]response.ClassResponse, error)
	GetClass(ctx context.Context, id string) (*response.ClassResponse, error)
	CreateClass(ctx context.Context, callerID uuid.UUID, req *request.CreateClassRequest) (*response.ClassResponse, error)
	UpdateClass(ctx context.Context, callerID uuid.UUID, id string, req *request.UpdateClassRequest) (*response.ClassUpdateResponse, error)
	DeleteClass(ctx context.Context, callerID uuid.UUID, id string) (*response.ClassDeleteResponse, error)
	CheckInWindow(ctx context.Context, id string) (*response.CheckInWindowResponse, error)
}

type classService struct {
	repo   *repository.Repository
	policy schedule.Policy
	events rabbitmq.EventPublisher
	now    func() time.Time
	log    *zap.Logger
}

func NewClassService(repo *repository.Repository, policy schedule.Policy, events rabbitmq.EventPublisher, log *zap.Logger) ClassService {
	return &classService{
		repo:   repo,
		policy: policy,
		events: events,
		now:    time.Now,
		log:    log.With(zap.String("service", "class")),
	}
}

func (s *classService) ListByDate(ctx context.Context, date string) ([]response.ClassResponse, error) {
	if !schedule.ValidDate(date) {
		return nil, invalidField("date", "Must match format 2006-01-02")
	}

	classes, err := s.repo.Class.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	result := make([]response.ClassResponse, 0, len(classes))
	for _, c := range classes {
		result = append(result, response.ClassToResponse(&c.ClassSession, c.Booked))
	}
	return result, nil
}

func (s *classService) GetClass(ctx context.Context, id string) (*response.ClassResponse, error) {
	classID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	class, err := s.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.Reservation.CountByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	resp := response.ClassToResponse(class, booked)
	return &resp, nil
}

func (s *classService) CreateClass(ctx context.Context, callerID uuid.UUID, req *request.CreateClassRequest) (*response.ClassResponse, error) {
	// 1. Admin only
	if _, err := requireAdmin(ctx, s.repo.User, callerID); err != nil {
		return nil, err
	}

	// 2. Validasi input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create class validation failed", zap.Any("errors", errs))
		return nil, NewValidationError(errs)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalidField("Title", "This field is required")
	}

	// 3. Build entity
	now := s.now()
	class := &entity.ClassSession{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:     strings.TrimSpace(req.Title),
		CoachName: req.CoachName,
		Date:      req.Date,
		Time:      req.Time,
		Capacity:  req.Capacity,
		CreatedBy: callerID,
		Sessions:  toSegments(req.Sessions),
	}

	// 4. Save
	if err := s.repo.Class.Create(ctx, class); err != nil {
		return nil, err
	}

	s.log.Info("Class created",
		zap.String("class_id", class.ID.String()),
		zap.String("date", class.Date),
		zap.String("time", class.Time),
		zap.Int("capacity", class.Capacity),
	)

	resp := response.ClassToResponse(class, 0)
	return &resp, nil
}

// UpdateClass applies a partial update. A payload carrying date or time also
// rewrites the schedule copy on the class's BOOKED reservations (see ClassRepository.Update).
func (s *classService) UpdateClass(ctx context.Context, callerID uuid.UUID, id string, req *request.UpdateClassRequest) (*response.ClassUpdateResponse, error) {
	if _, err := requireAdmin(ctx, s.repo.User, callerID); err != nil {
		return nil, err
	}

	classID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update class validation failed", zap.Any("errors", errs))
		return nil, NewValidationError(errs)
	}

	class, err := s.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalidField("Title", "This field is required")
		}
		class.Title = title
	}
	if req.CoachName != nil {
		class.CoachName = req.CoachName
	}
	if req.Date != nil {
		class.Date = *req.Date
	}
	if req.Time != nil {
		class.Time = *req.Time
	}
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	if req.Sessions != nil {
		class.Sessions = toSegments(*req.Sessions)
	}
	class.UpdatedAt = s.now()

	resynced, err := s.repo.Class.Update(ctx, class, req.ChangesSchedule())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.Reservation.CountByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Class updated",
		zap.String("class_id", class.ID.String()),
		zap.Bool("schedule_changed", req.ChangesSchedule()),
		zap.Int64("reservations_resynced", resynced),
	)

	publish(ctx, s.events, s.log, rabbitmq.ClassUpdated, map[string]any{
		"class_id":              class.ID,
		"date":                  class.Date,
		"time":                  class.Time,
		"reservations_resynced": resynced,
	})

	return &response.ClassUpdateResponse{
		Class:                response.ClassToResponse(class, booked),
		ReservationsResynced: resynced,
	}, nil
}

func (s *classService) DeleteClass(ctx context.Context, callerID uuid.UUID, id string) (*response.ClassDeleteResponse, error) {
	if _, err := requireAdmin(ctx, s.repo.User, callerID); err != nil {
		return nil, err
	}

	classID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.Class.DeleteCascade(ctx, classID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, s.log, rabbitmq.ClassDeleted, map[string]any{
		"class_id":             classID,
		"reservations_removed": removed,
	})

	return &response.ClassDeleteResponse{ReservationsRemoved: removed}, nil
}

// CheckInWindow reports advisory timing for display; booking and check-in enforce their own rules
func (s *classService) CheckInWindow(ctx context.Context, id string) (*response.CheckInWindowResponse, error) {
	classID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	class, err := s.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	start, err := s.policy.ClassStart(class.Date, class.Time)
	if err != nil {
		return nil, fmt.Errorf("class %s has an invalid schedule: %w", classID.String(), err)
	}

	now := s.now()
	opensAt, closesAt := s.policy.BookingWindow(start)

	return &response.CheckInWindowResponse{
		ClassID:         classID.String(),
		StartsAt:        start,
		CheckInOpen:     s.policy.IsCheckInOpen(start, now),
		CheckInDeadline: s.policy.CheckInDeadline(start),
		BookingOpensAt:  opensAt,
		BookingClosesAt: closesAt,
		BookingState:    string(s.policy.BookingStateAt(start, now)),
	}, nil
}

func (s *classService) loadClass(ctx context.Context, id uuid.UUID) (*entity.ClassSession, error) {
	class, err := s.repo.Class.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}
	return class, nil
}

func toSegments(in []request.WorkoutSegmentRequest) []entity.WorkoutSegment {
	out := make([]entity.WorkoutSegment, 0, len(in))
	for _, seg := range in {
		out = append(out, entity.WorkoutSegment{
			Title:   strings.TrimSpace(seg.Title),
			Details: seg.Details,
		})
	}
	return out
}
