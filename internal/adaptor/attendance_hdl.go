package adaptor

import (
	"net/http"

	"gym-booking/internal/usecase"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AttendanceHandler struct {
	service usecase.AttendanceService
	noShow  usecase.NoShowService
	log     *zap.Logger
}

func NewAttendanceHandler(service usecase.AttendanceService, noShow usecase.NoShowService, log *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		noShow:  noShow,
		log:     log.With(zap.String("handler", "attendance")),
	}
}

// CheckIn handles POST /api/reservations/{id}/check-in
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	reservation, err := h.service.CheckIn(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "check in")
		return
	}

	utils.ResponseSuccess(w, "Checked in", reservation)
}

// AdminCheckIn handles POST /api/admin/reservations/{id}/check-in
func (h *AttendanceHandler) AdminCheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	reservation, err := h.service.AdminCheckIn(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "admin check in")
		return
	}

	utils.ResponseSuccess(w, "Checked in", reservation)
}

// TriggerNoShowSweep handles POST /api/admin/sweeps/no-show
func (h *AttendanceHandler) TriggerNoShowSweep(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	result, err := h.noShow.TriggerSweep(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "no-show sweep")
		return
	}

	utils.ResponseSuccess(w, "Sweep finished", result.ToResponse())
}
