package repository

import (
	"gym-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User           UserRepository
	Session        SessionRepository
	Box            BoxRepository
	Class          ClassRepository
	Reservation    ReservationRepository
	PersonalRecord PersonalRecordRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:           NewUserRepository(db, log),
		Session:        NewSessionRepository(db, log),
		Box:            NewBoxRepository(db, log),
		Class:          NewClassRepository(db, log),
		Reservation:    NewReservationRepository(db, log),
		PersonalRecord: NewPersonalRecordRepository(db, log),
	}
}
