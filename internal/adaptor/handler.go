package adaptor

import (
	"errors"
	"net/http"

	"gym-booking/internal/usecase"
	"gym-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Auth           *AuthHandler
	User           *UserHandler
	Class          *ClassHandler
	Reservation    *ReservationHandler
	Attendance     *AttendanceHandler
	PersonalRecord *PersonalRecordHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(service.Auth, log),
		User:           NewUserHandler(service.User, log),
		Class:          NewClassHandler(service.Class, log),
		Reservation:    NewReservationHandler(service.Reservation, log),
		Attendance:     NewAttendanceHandler(service.Attendance, service.NoShow, log),
		PersonalRecord: NewPersonalRecordHandler(service.PersonalRecord, log),
	}
}

// writeServiceError maps a service error kind to its HTTP status.
// Untyped errors are internal and their text never reaches the client.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var svcErr *usecase.Error
	if !errors.As(err, &svcErr) {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	switch svcErr.Kind {
	case usecase.KindValidation:
		log.Warn(operation+" validation failed", zap.Any("fields", svcErr.Fields))
		utils.ResponseErrorWithFields(w, http.StatusBadRequest, svcErr.Code, svcErr.Message, svcErr.Fields)

	case usecase.KindUnauthenticated:
		log.Warn(operation+" failed - unauthenticated", zap.String("code", svcErr.Code))
		utils.ResponseError(w, http.StatusUnauthorized, svcErr.Code, svcErr.Message)

	case usecase.KindForbidden:
		log.Warn(operation+" failed - forbidden", zap.String("code", svcErr.Code))
		utils.ResponseError(w, http.StatusForbidden, svcErr.Code, svcErr.Message)

	case usecase.KindNotFound:
		log.Info(operation+" failed - not found", zap.String("code", svcErr.Code))
		utils.ResponseNotFound(w, svcErr.Code, svcErr.Message)

	case usecase.KindConflict:
		log.Info(operation+" failed - conflict", zap.String("code", svcErr.Code))
		utils.ResponseConflict(w, svcErr.Code, svcErr.Message)

	case usecase.KindPrecondition:
		log.Info(operation+" failed - precondition", zap.String("code", svcErr.Code))
		utils.ResponsePreconditionFailed(w, svcErr.Code, svcErr.Message)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// callerID reads the authenticated user; it writes 401 and returns false when missing
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return userID, false
	}
	return userID, true
}
