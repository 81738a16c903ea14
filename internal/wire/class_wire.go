package wire

import (
	"gym-booking/internal/adaptor"
	"gym-booking/internal/data/repository"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireClass(
	r chi.Router,
	classHandler *adaptor.ClassHandler,
	reservationHandler *adaptor.ReservationHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/classes?date=2026-03-10 - Classes of a day with booked counts
	r.Get("/api/classes", classHandler.ListClasses)
	r.Get("/api/classes/{id}", classHandler.GetClass)
	r.Get("/api/classes/{id}/check-in-window", classHandler.CheckInWindow)
	r.Get("/api/classes/{id}/reservations/count", reservationHandler.CountReservations)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/classes", func(r chi.Router) {
		// Apply middleware chain: AuthSession → Admin
		r.Use(middleware.AuthSession(repo.Session, config.JWT.Secret, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Post("/", classHandler.CreateClass)
		r.Patch("/{id}", classHandler.UpdateClass) // date/time changes re-sync BOOKED reservations
		r.Delete("/{id}", classHandler.DeleteClass)
		r.Get("/{id}/reservations", reservationHandler.Roster)
	})
}
