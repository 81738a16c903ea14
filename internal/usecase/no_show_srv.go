package usecase

import (
	"context"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/dto/response"
	"gym-booking/internal/schedule"
	"gym-booking/pkg/metrics"
	"gym-booking/pkg/rabbitmq"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSweepBatchSize = 500

type SweepResult struct {
	Scanned int
	Marked  int
	Skipped int
	Failed  int
}

func (r SweepResult) ToResponse() response.SweepResponse {
	return response.SweepResponse{
		Scanned: r.Scanned,
		Marked:  r.Marked,
		Skipped: r.Skipped,
		Failed:  r.Failed,
	}
}

// NoShowService marks BOOKED reservations past their check-in deadline as NO_SHOW.
// A run handles at most one batch; the rest waits for the next run. Runs may
// overlap safely because the transition only applies to rows still BOOKED.
type NoShowService interface {
	Sweep(ctx context.Context) (SweepResult, error)
	TriggerSweep(ctx context.Context, callerID uuid.UUID) (SweepResult, error)
}

type noShowService struct {
	repo      *repository.Repository
	policy    schedule.Policy
	batchSize int
	events    rabbitmq.EventPublisher
	now       func() time.Time
	log       *zap.Logger
}

func NewNoShowService(repo *repository.Repository, policy schedule.Policy, batchSize int, events rabbitmq.EventPublisher, log *zap.Logger) NoShowService {
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &noShowService{
		repo:      repo,
		policy:    policy,
		batchSize: batchSize,
		events:    events,
		now:       time.Now,
		log:       log.With(zap.String("service", "no_show")),
	}
}

func (s *noShowService) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := s.now()

	// 1. Candidates bounded by date; without it every old BOOKED row is rescanned forever
	candidates, err := s.repo.Reservation.ListNoShowCandidates(ctx, s.policy.Today(now), s.batchSize)
	if err != nil {
		return result, err
	}
	result.Scanned = len(candidates)

	// 2. Recompute the deadline per record
	byID := make(map[uuid.UUID]*entity.Reservation, len(candidates))
	expired := make([]uuid.UUID, 0, len(candidates))
	for _, res := range candidates {
		noShow, err := s.policy.IsNoShow(res.ClassDate, res.ClassTime, now)
		if err != nil {
			result.Skipped++
			s.log.Warn("Skipping malformed reservation",
				zap.String("reservation_id", res.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if noShow {
			expired = append(expired, res.ID)
			byID[res.ID] = res
		}
	}

	if len(expired) == 0 {
		return result, nil
	}

	// 3. Bulk write, falling back to one by one so a bad row cannot block the rest
	marked, err := s.repo.Reservation.MarkNoShow(ctx, expired, now)
	if err != nil {
		s.log.Warn("Bulk no-show update failed, retrying per record", zap.Error(err), zap.Int("count", len(expired)))
		marked = marked[:0]
		for _, id := range expired {
			ok, err := s.repo.Reservation.MarkNoShowOne(ctx, id, now)
			if err != nil {
				result.Failed++
				s.log.Error("Failed to mark no-show", zap.String("reservation_id", id.String()), zap.Error(err))
				continue
			}
			if ok {
				marked = append(marked, id)
			}
		}
	}
	result.Marked = len(marked)
	metrics.NoShowsMarked.Add(float64(result.Marked))

	payloads := make([]any, 0, len(marked))
	for _, id := range marked {
		res := byID[id]
		payloads = append(payloads, map[string]any{
			"reservation_id": id,
			"user_id":        res.UserID,
			"class_id":       res.ClassID,
			"class_date":     res.ClassDate,
			"class_time":     res.ClassTime,
			"no_show_at":     now,
		})
	}
	// 4. Events share the run's deadline; the rows are already committed
	publishAll(ctx, s.events, s.log, rabbitmq.ReservationNoShow, payloads)

	return result, nil
}

// TriggerSweep runs a sweep on demand for an admin
func (s *noShowService) TriggerSweep(ctx context.Context, callerID uuid.UUID) (SweepResult, error) {
	if _, err := requireAdmin(ctx, s.repo.User, callerID); err != nil {
		return SweepResult{}, err
	}

	result, err := s.Sweep(ctx)
	if err != nil {
		return result, err
	}

	s.log.Info("Manual no-show sweep",
		zap.String("admin_id", callerID.String()),
		zap.Int("scanned", result.Scanned),
		zap.Int("marked", result.Marked),
	)
	return result, nil
}
