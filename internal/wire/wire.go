// internal/wire/wire.go
package wire

import (
	"context"
	"net/http"
	"time"

	"gym-booking/internal/adaptor"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/schedule"
	"gym-booking/internal/usecase"
	"gym-booking/pkg/database"
	"gym-booking/pkg/metrics"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/rabbitmq"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring menginisialisasi semua dependencies
func Wiring(
	db database.PgxIface,
	repo *repository.Repository,
	config *utils.Config,
	policy schedule.Policy,
	events rabbitmq.EventPublisher,
	logger *zap.Logger,
) *App {
	// Initialize services dan handlers
	service := usecase.NewService(repo, config, policy, events, logger)
	handler := adaptor.NewHandler(service, logger)

	// Setup router
	router := setupRouter(handler, db, repo, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	db database.PgxIface,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))
	if config.Metrics.Enabled {
		r.Use(metrics.Middleware)
	}

	// Apply routes
	wireAuth(r, handler.Auth, repo, config, logger)
	wireUser(r, handler.User, repo, config, logger)
	wireClass(r, handler.Class, handler.Reservation, repo, config, logger)
	wireReservation(r, handler.Reservation, handler.Attendance, repo, config, logger)
	wirePersonalRecord(r, handler.PersonalRecord, repo, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "database unavailable", nil, nil)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if config.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler())
	}

	return r
}
