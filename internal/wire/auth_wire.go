package wire

import (
	"gym-booking/internal/adaptor"
	"gym-booking/internal/data/repository"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/setup", authHandler.Setup) // only while no box exists
	r.Get("/api/box", authHandler.GetBox)

	// ==================== PROTECTED ROUTES ====================
	r.With(middleware.AuthSession(repo.Session, config.JWT.Secret, log)).Post("/api/logout", authHandler.Logout)
}
