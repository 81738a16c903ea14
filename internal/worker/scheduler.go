package worker

import (
	"context"
	"fmt"
	"time"

	"gym-booking/internal/usecase"
	"gym-booking/pkg/metrics"
	"gym-booking/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultRunTimeout  = 2 * time.Minute
	sessionCleanupSpec = "@hourly"
)

// Sweeper is the part of the no-show service the scheduler drives
type Sweeper interface {
	Sweep(ctx context.Context) (usecase.SweepResult, error)
}

// SessionCleaner drops expired and revoked sessions
type SessionCleaner interface {
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

// Scheduler runs the background jobs: the no-show sweep and session cleanup.
// Each job is skipped while its previous run is still going.
type Scheduler struct {
	cron       *cron.Cron
	sweeper    Sweeper
	sessions   SessionCleaner
	runTimeout time.Duration
	log        *zap.Logger
}

func NewScheduler(cfg utils.SweeperConfig, sweeper Sweeper, sessions SessionCleaner, log *zap.Logger) (*Scheduler, error) {
	log = log.With(zap.String("component", "scheduler"))
	cl := cronLogger{log: log}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sweeper:    sweeper,
		sessions:   sessions,
		runTimeout: cfg.RunTimeout,
		log:        log,
	}
	if s.runTimeout <= 0 {
		s.runTimeout = defaultRunTimeout
	}

	if cfg.Enabled {
		if _, err := s.cron.AddFunc(cfg.Spec, s.RunSweep); err != nil {
			return nil, fmt.Errorf("schedule no-show sweep %q: %w", cfg.Spec, err)
		}
		log.Info("No-show sweep scheduled", zap.String("spec", cfg.Spec), zap.Int("batch_size", cfg.BatchSize))
	} else {
		log.Info("No-show sweep disabled")
	}

	if sessions != nil {
		if _, err := s.cron.AddFunc(sessionCleanupSpec, s.RunSessionCleanup); err != nil {
			return nil, fmt.Errorf("schedule session cleanup: %w", err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunSweep performs one bounded sweep run
func (s *Scheduler) RunSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.sweeper.Sweep(ctx)
	metrics.SweeperDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SweeperRuns.WithLabelValues("error").Inc()
		s.log.Error("No-show sweep failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}

	metrics.SweeperRuns.WithLabelValues("ok").Inc()
	s.log.Info("No-show sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("marked", result.Marked),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *Scheduler) RunSessionCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	n, err := s.sessions.CleanExpiredSessions(ctx)
	if err != nil {
		s.log.Error("Session cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("Expired sessions removed", zap.Int64("count", n))
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
