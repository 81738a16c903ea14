package wire

import (
	"gym-booking/internal/adaptor"
	"gym-booking/internal/data/repository"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePersonalRecord(
	r chi.Router,
	recordHandler *adaptor.PersonalRecordHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/user/records", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, config.JWT.Secret, log))

		r.Get("/", recordHandler.List)
		r.Post("/", recordHandler.Create)
		r.Patch("/{id}", recordHandler.Update) // owner only
		r.Delete("/{id}", recordHandler.Delete)
	})
}
