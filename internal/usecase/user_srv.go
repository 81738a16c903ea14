package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym-booking/internal/authz"
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

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	ListMembers(ctx context.Context, callerID uuid.UUID, req *request.MemberFilterRequest) (*response.PaginatedResponse[response.UserResponse], error)
	ListCoaches(ctx context.Context) ([]response.UserResponse, error)
	CreateMember(ctx context.Context, callerID uuid.UUID, req *request.CreateMemberRequest) (*response.UserResponse, error)
	UpdateMember(ctx context.Context, callerID uuid.UUID, id string, req *request.UpdateMemberRequest) (*response.UserResponse, error)
	DeleteMember(ctx context.Context, callerID uuid.UUID, id string) error
	Stats(ctx context.Context, callerID uuid.UUID) (*response.StatsResponse, error)
}

type userService struct {
	repo   *repository.Repository
	policy schedule.Policy
	events rabbitmq.EventPublisher
	now    func() time.Time
	log    *zap.Logger
}

func NewUserService(repo *repository.Repository, policy schedule.Policy, events rabbitmq.EventPublisher, log *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		policy: policy,
		events: events,
		now:    time.Now,
		log:    log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) ListMembers(ctx context.Context, callerID uuid.UUID, req *request.MemberFilterRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	if _, err := requireAdmin(ctx, us.repo.User, callerID); err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	filter := entity.MemberFilter{
		Role:   entity.UserRole(req.Role),
		Plan:   req.Plan,
		Limit:  req.Limit(),
		Offset: req.Offset(),
	}
	switch req.Status {
	case "active":
		active := true
		filter.Active = &active
	case "inactive":
		active := false
		filter.Active = &active
	}

	total, err := us.repo.User.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	users, err := us.repo.User.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return response.NewPaginatedResponse(toUserResponses(users), req.Page, req.Limit(), total), nil
}

// ListCoaches feeds the coach picker of the class form
func (us *userService) ListCoaches(ctx context.Context) ([]response.UserResponse, error) {
	users, err := us.repo.User.List(ctx, entity.MemberFilter{Role: entity.RoleCoach, Limit: 100})
	if err != nil {
		return nil, err
	}
	return toUserResponses(users), nil
}

// CreateMember adds a student or coach. A requested admin role is downgraded to student.
func (us *userService) CreateMember(ctx context.Context, callerID uuid.UUID, req *request.CreateMemberRequest) (*response.UserResponse, error) {
	if _, err := requireAdmin(ctx, us.repo.User, callerID); err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		us.log.Warn("Create member validation failed", zap.Any("errors", errs))
		return nil, NewValidationError(errs)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := authz.ClampAssignableRole(req.Role)
	if req.Role != "" && string(role) != strings.ToLower(strings.TrimSpace(req.Role)) {
		us.log.Warn("Requested role clamped",
			zap.String("requested", req.Role),
			zap.String("assigned", string(role)),
			zap.String("admin_id", callerID.String()),
		)
	}

	now := us.now()
	user := &entity.User{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:     hashedPassword,
		Role:             role,
		Phone:            req.Phone,
		BirthDate:        req.BirthDate,
		Plan:             req.Plan,
		EnrollmentActive: true,
	}

	err = us.repo.User.Create(ctx, user)
	if errors.Is(err, repository.ErrEmailTaken) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	us.log.Info("Member created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateMember(ctx context.Context, callerID uuid.UUID, id string, req *request.UpdateMemberRequest) (*response.UserResponse, error) {
	if _, err := requireAdmin(ctx, us.repo.User, callerID); err != nil {
		return nil, err
	}

	userID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Role != nil {
		if user.Role == entity.RoleAdmin {
			return nil, ErrAdminRoleLocked
		}
		user.Role = authz.ClampAssignableRole(*req.Role)
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Plan != nil {
		user.Plan = req.Plan
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.BirthDate != nil {
		user.BirthDate = req.BirthDate
	}
	if req.EnrollmentActive != nil {
		user.EnrollmentActive = *req.EnrollmentActive
	}
	user.UpdatedAt = us.now()

	err = us.repo.User.Update(ctx, user)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// DeleteMember removes a member with all reservations, records and sessions at once
func (us *userService) DeleteMember(ctx context.Context, callerID uuid.UUID, id string) error {
	if _, err := requireAdmin(ctx, us.repo.User, callerID); err != nil {
		return err
	}

	userID, err := parseID("id", id)
	if err != nil {
		return err
	}
	if userID == callerID {
		return ErrCannotDeleteSelf
	}

	box, err := us.repo.Box.Find(ctx)
	if err != nil {
		return err
	}
	if box != nil && box.OwnerID == userID {
		return ErrOwnerProtected
	}

	err = us.repo.User.DeleteCascade(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	us.log.Info("Member deleted",
		zap.String("user_id", userID.String()),
		zap.String("admin_id", callerID.String()),
	)
	publish(ctx, us.events, us.log, rabbitmq.MemberDeleted, map[string]any{"user_id": userID})
	return nil
}

// Stats backs the admin dashboard
func (us *userService) Stats(ctx context.Context, callerID uuid.UUID) (*response.StatsResponse, error) {
	if _, err := requireAdmin(ctx, us.repo.User, callerID); err != nil {
		return nil, err
	}

	students, err := us.repo.User.CountByRole(ctx, entity.RoleStudent)
	if err != nil {
		return nil, err
	}
	coaches, err := us.repo.User.CountByRole(ctx, entity.RoleCoach)
	if err != nil {
		return nil, err
	}

	today := us.policy.Today(us.now())
	classes, err := us.repo.Class.CountByDate(ctx, today)
	if err != nil {
		return nil, err
	}

	return &response.StatsResponse{
		Students:     students,
		Coaches:      coaches,
		ClassesToday: classes,
		Date:         today,
	}, nil
}

func toUserResponses(users []*entity.User) []response.UserResponse {
	result := make([]response.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, response.UserToResponse(u))
	}
	return result
}
