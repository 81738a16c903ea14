package wire

import (
	"gym-booking/internal/adaptor"
	"gym-booking/internal/data/repository"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReservation(
	r chi.Router,
	reservationHandler *adaptor.ReservationHandler,
	attendanceHandler *adaptor.AttendanceHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, config.JWT.Secret, log))

		r.Post("/api/reservations", reservationHandler.CreateReservation)
		r.Delete("/api/reservations/{id}", reservationHandler.CancelReservation)
		r.Post("/api/reservations/{id}/check-in", attendanceHandler.CheckIn)

		r.Get("/api/classes/{id}/my-reservation", reservationHandler.MyReservation)
		r.Get("/api/user/reservations/active-count", reservationHandler.CountActive)
		r.Get("/api/user/reservations/history", reservationHandler.History)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, config.JWT.Secret, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Post("/api/admin/reservations/{id}/check-in", attendanceHandler.AdminCheckIn)
		r.Post("/api/admin/sweeps/no-show", attendanceHandler.TriggerNoShowSweep)
	})
}
