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
	"gym-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token uuid.UUID) error
	Setup(ctx context.Context, req *request.SetupRequest) (*response.SetupResponse, error)
	GetBox(ctx context.Context) (*response.BoxResponse, error)
}

type authService struct {
	repo   *repository.Repository // grouping userRepo, sessionRepo, & boxRepo
	config *utils.Config
	now    func() time.Time
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		now:    time.Now,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, NewValidationError(errs)
	}

	// 2. Find user by email
	user, err := s.repo.User.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}

	// 3. User not found
	if user == nil {
		s.log.Warn("User not found for login", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	// 4. Check password
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	// 5. Create session + token
	resp, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return resp, nil
}

func (s *authService) Logout(ctx context.Context, token uuid.UUID) error {
	revoked, err := s.repo.Session.Revoke(ctx, token)
	if err != nil {
		return err
	}
	if !revoked {
		s.log.Debug("Logout on inactive session", zap.String("session", token.String()))
		return nil
	}

	s.log.Info("User logged out", zap.String("session", token.String()))
	return nil
}

// Setup creates the box and its owner admin. It is the only way an admin account comes to exist.
func (s *authService) Setup(ctx context.Context, req *request.SetupRequest) (*response.SetupResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	// 2. Fast path, the transaction re-checks
	existing, err := s.repo.Box.Find(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBoxExists
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	owner := &entity.User{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:     hashedPassword,
		Role:             entity.RoleAdmin,
		EnrollmentActive: true,
	}
	box := &entity.Box{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:    strings.TrimSpace(req.BoxName),
		Address: req.Address,
		OwnerID: owner.ID,
	}

	// 4. Save box + owner
	err = s.repo.Box.Bootstrap(ctx, box, owner)
	switch {
	case errors.Is(err, repository.ErrBoxExists):
		return nil, ErrBoxExists
	case errors.Is(err, repository.ErrEmailTaken):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, err
	}

	// 5. Auto login
	auth, err := s.issueToken(ctx, owner)
	if err != nil {
		return nil, err
	}

	return &response.SetupResponse{
		Box:  response.BoxToResponse(box),
		Auth: *auth,
	}, nil
}

func (s *authService) GetBox(ctx context.Context) (*response.BoxResponse, error) {
	box, err := s.repo.Box.Find(ctx)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, ErrBoxNotFound
	}

	resp := response.BoxToResponse(box)
	return &resp, nil
}

// issueToken stores a session and signs a JWT whose jti is the session token
func (s *authService) issueToken(ctx context.Context, user *entity.User) (*response.AuthResponse, error) {
	expiryHours := s.config.JWT.ExpiryHours
	if expiryHours <= 0 {
		expiryHours = 24
	}

	now := s.now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     utils.GenerateSessionToken(),
		ExpiresAt: now.Add(time.Duration(expiryHours) * time.Hour),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := utils.GenerateAccessToken(s.config.JWT.Secret, user.ID, string(user.Role), session.Token, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	resp := response.AuthToResponse(user, token, session.ExpiresAt)
	return &resp, nil
}
