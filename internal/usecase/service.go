package usecase

import (
	"context"
	"time"

	"gym-booking/internal/data/repository"
	"gym-booking/internal/schedule"
	"gym-booking/pkg/rabbitmq"
	"gym-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth           AuthService
	User           UserService
	Class          ClassService
	Reservation    ReservationService
	Attendance     AttendanceService
	NoShow         NoShowService
	PersonalRecord PersonalRecordService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	policy schedule.Policy,
	events rabbitmq.EventPublisher,
	log *zap.Logger,
) *Service {
	if events == nil {
		events = rabbitmq.Noop{}
	}

	return &Service{
		Auth:           NewAuthService(repo, config, log),
		User:           NewUserService(repo, policy, events, log),
		Class:          NewClassService(repo, policy, events, log),
		Reservation:    NewReservationService(repo, policy, config.Schedule.EnforceBookingWindow, events, log),
		Attendance:     NewAttendanceService(repo, policy, events, log),
		NoShow:         NewNoShowService(repo, policy, config.Sweeper.BatchSize, events, log),
		PersonalRecord: NewPersonalRecordService(repo, log),
	}
}

const eventPublishTimeout = 3 * time.Second

// publish sends a domain event. Failures are logged and never fail the operation.
func publish(ctx context.Context, events rabbitmq.EventPublisher, log *zap.Logger, key string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := events.Publish(ctx, key, payload); err != nil {
		log.Warn("Failed to publish event", zap.String("routing_key", key), zap.Error(err))
	}
}

// publishAll sends a batch of events under one shared deadline that also honours
// ctx, so a stalled broker costs at most eventPublishTimeout per batch.
// Events still pending at the deadline are dropped and counted in the log.
func publishAll(ctx context.Context, events rabbitmq.EventPublisher, log *zap.Logger, key string, payloads []any) {
	ctx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
	defer cancel()

	failed := 0
	for i, payload := range payloads {
		if ctx.Err() != nil {
			log.Warn("Dropping unpublished events",
				zap.String("routing_key", key),
				zap.Int("dropped", len(payloads)-i),
				zap.Error(ctx.Err()),
			)
			break
		}
		if err := events.Publish(ctx, key, payload); err != nil {
			failed++
			log.Debug("Failed to publish event", zap.String("routing_key", key), zap.Error(err))
		}
	}

	if failed > 0 {
		log.Warn("Failed to publish events", zap.String("routing_key", key), zap.Int("failed", failed))
	}
}
