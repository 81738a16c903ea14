package wire

import (
	"gym-booking/internal/adaptor"
	"gym-booking/internal/data/repository"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures profile and member management routes
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED USER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, config.JWT.Secret, log))

		r.Get("/api/user/profile", userHandler.GetProfile)
		r.Get("/api/coaches", userHandler.ListCoaches)
	})

	// ==================== ADMIN ROUTES ====================
	r.With(
		middleware.AuthSession(repo.Session, config.JWT.Secret, log),
		middleware.Admin(repo.User, log),
	).Route("/api/admin/members", func(r chi.Router) {
		r.Get("/", userHandler.ListMembers)         // GET /api/admin/members?role=&status=&plan=
		r.Post("/", userHandler.CreateMember)       // POST /api/admin/members
		r.Patch("/{id}", userHandler.UpdateMember)  // PATCH /api/admin/members/{id}
		r.Delete("/{id}", userHandler.DeleteMember) // DELETE /api/admin/members/{id}
	})

	r.With(
		middleware.AuthSession(repo.Session, config.JWT.Secret, log),
		middleware.Admin(repo.User, log),
	).Get("/api/admin/stats", userHandler.Stats)
}
