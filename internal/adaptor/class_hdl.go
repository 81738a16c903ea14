package adaptor

import (
	"encoding/json"
	"net/http"

	"gym-booking/internal/dto/request"
	"gym-booking/internal/usecase"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ClassHandler struct {
	service usecase.ClassService
	log     *zap.Logger
}

func NewClassHandler(service usecase.ClassService, log *zap.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		log:     log.With(zap.String("handler", "class")),
	}
}

// ListClasses handles GET /api/classes?date=2026-03-10 (public)
func (h *ClassHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		utils.ResponseBadRequest(w, "date query parameter is required", nil)
		return
	}

	classes, err := h.service.ListByDate(r.Context(), date)
	if err != nil {
		writeServiceError(w, h.log, err, "list classes")
		return
	}

	utils.ResponseSuccess(w, "success", classes)
}

// GetClass handles GET /api/classes/{id} (public)
func (h *ClassHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	class, err := h.service.GetClass(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get class")
		return
	}

	utils.ResponseSuccess(w, "success", class)
}

// CheckInWindow handles GET /api/classes/{id}/check-in-window (public)
func (h *ClassHandler) CheckInWindow(w http.ResponseWriter, r *http.Request) {
	window, err := h.service.CheckInWindow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get check-in window")
		return
	}

	utils.ResponseSuccess(w, "success", window)
}

// ==================== ADMIN METHODS ====================

// CreateClass handles POST /api/admin/classes
func (h *ClassHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req request.CreateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	class, err := h.service.CreateClass(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create class")
		return
	}

	utils.ResponseCreated(w, "Class created", class)
}

// UpdateClass handles PATCH /api/admin/classes/{id}
func (h *ClassHandler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req request.UpdateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.UpdateClass(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update class")
		return
	}

	utils.ResponseSuccess(w, "Class updated", result)
}

// DeleteClass handles DELETE /api/admin/classes/{id}
func (h *ClassHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	result, err := h.service.DeleteClass(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "delete class")
		return
	}

	utils.ResponseSuccess(w, "Class deleted", result)
}
