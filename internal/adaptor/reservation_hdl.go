package adaptor

import (
	"encoding/json"
	"net/http"

	"gym-booking/internal/dto/request"
	"gym-booking/internal/dto/response"
	"gym-booking/internal/usecase"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// CreateReservation handles POST /api/reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req request.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create reservation")
		return
	}

	utils.ResponseCreated(w, "Reservation created", reservation)
}

// CancelReservation handles DELETE /api/reservations/{id}
func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.service.CancelReservation(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "cancel reservation")
		return
	}

	utils.ResponseSuccess(w, "Reservation cancelled", nil)
}

// CountReservations handles GET /api/classes/{id}/reservations/count (public)
func (h *ReservationHandler) CountReservations(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountReservations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "count reservations")
		return
	}

	utils.ResponseSuccess(w, "success", response.CountResponse{Count: count})
}

// CountActive handles GET /api/user/reservations/active-count
func (h *ReservationHandler) CountActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	count, err := h.service.CountActiveReservations(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "count active reservations")
		return
	}

	utils.ResponseSuccess(w, "success", response.CountResponse{Count: count})
}

// MyReservation handles GET /api/classes/{id}/my-reservation[?user_id=]
// Data is null when there is no reservation.
func (h *ReservationHandler) MyReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var target *string
	if v := r.URL.Query().Get("user_id"); v != "" {
		target = &v
	}

	reservation, err := h.service.GetReservationForUserAndClass(r.Context(), userID, chi.URLParam(r, "id"), target)
	if err != nil {
		writeServiceError(w, h.log, err, "get reservation")
		return
	}

	if reservation == nil {
		utils.ResponseSuccess(w, "No reservation", nil)
		return
	}
	utils.ResponseSuccess(w, "success", reservation)
}

// History handles GET /api/user/reservations/history?page_size=&cursor=
func (h *ReservationHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := request.HistoryRequest{
		PageSize: utils.ParseInt(query.Get("page_size"), 0),
		Cursor:   query.Get("cursor"),
	}

	page, err := h.service.ListPastReservations(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.log, err, "list reservation history")
		return
	}

	utils.ResponseSuccess(w, "success", page)
}

// Roster handles GET /api/admin/classes/{id}/reservations
func (h *ReservationHandler) Roster(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	roster, err := h.service.ListClassRoster(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "list class roster")
		return
	}

	utils.ResponseSuccess(w, "success", roster)
}
