package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"gym-booking/internal/authz"
	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/dto/request"
	"gym-booking/internal/dto/response"
	"gym-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PersonalRecordService interface {
	List(ctx context.Context, userID uuid.UUID) ([]response.PersonalRecordResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req *request.CreatePersonalRecordRequest) (*response.PersonalRecordResponse, error)
	Update(ctx context.Context, userID uuid.UUID, id string, req *request.UpdatePersonalRecordRequest) (*response.PersonalRecordResponse, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
}

type personalRecordService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewPersonalRecordService(repo *repository.Repository, log *zap.Logger) PersonalRecordService {
	return &personalRecordService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "personal_record")),
	}
}

func (s *personalRecordService) List(ctx context.Context, userID uuid.UUID) ([]response.PersonalRecordResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	records, err := s.repo.PersonalRecord.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]response.PersonalRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, response.PersonalRecordToResponse(r))
	}
	return result, nil
}

func (s *personalRecordService) Create(ctx context.Context, userID uuid.UUID, req *request.CreatePersonalRecordRequest) (*response.PersonalRecordResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	now := s.now()
	record := &entity.PersonalRecord{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:   userID,
		Movement: strings.TrimSpace(req.Movement),
		Value:    req.Value,
		Unit:     entity.RecordUnit(req.Unit),
	}

	if err := s.repo.PersonalRecord.Create(ctx, record); err != nil {
		return nil, err
	}

	resp := response.PersonalRecordToResponse(record)
	return &resp, nil
}

func (s *personalRecordService) Update(ctx context.Context, userID uuid.UUID, id string, req *request.UpdatePersonalRecordRequest) (*response.PersonalRecordResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	record, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	record.Value = req.Value
	record.Unit = entity.RecordUnit(req.Unit)
	record.UpdatedAt = s.now()

	err = s.repo.PersonalRecord.Update(ctx, record)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	resp := response.PersonalRecordToResponse(record)
	return &resp, nil
}

func (s *personalRecordService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	record, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.repo.PersonalRecord.Delete(ctx, record.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}

func (s *personalRecordService) loadOwned(ctx context.Context, userID uuid.UUID, id string) (*entity.PersonalRecord, error) {
	recordID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.PersonalRecord.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}

	if err := gate(authz.RequireOwner(authz.Principal{UserID: userID}, record.UserID)); err != nil {
		return nil, err
	}
	return record, nil
}
