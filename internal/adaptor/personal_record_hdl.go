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

type PersonalRecordHandler struct {
	service usecase.PersonalRecordService
	log     *zap.Logger
}

func NewPersonalRecordHandler(service usecase.PersonalRecordService, log *zap.Logger) *PersonalRecordHandler {
	return &PersonalRecordHandler{
		service: service,
		log:     log.With(zap.String("handler", "personal_record")),
	}
}

// List handles GET /api/user/records
func (h *PersonalRecordHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	records, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "list records")
		return
	}

	utils.ResponseSuccess(w, "success", records)
}

// Create handles POST /api/user/records
func (h *PersonalRecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req request.CreatePersonalRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	record, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create record")
		return
	}

	utils.ResponseCreated(w, "Record created", record)
}

// Update handles PATCH /api/user/records/{id}
func (h *PersonalRecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req request.UpdatePersonalRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	record, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update record")
		return
	}

	utils.ResponseSuccess(w, "Record updated", record)
}

// Delete handles DELETE /api/user/records/{id}
func (h *PersonalRecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete record")
		return
	}

	utils.ResponseSuccess(w, "Record deleted", nil)
}
