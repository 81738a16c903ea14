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

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/user/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}

// ListMembers handles GET /api/admin/members?role=&status=&plan=&page=&per_page=
func (h *UserHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.MemberFilterRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 20),
		},
		Role:   query.Get("role"),
		Status: query.Get("status"),
		Plan:   query.Get("plan"),
	}

	members, err := h.service.ListMembers(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.log, err, "list members")
		return
	}

	utils.ResponseSuccess(w, "success", members)
}

// ListCoaches handles GET /api/coaches
func (h *UserHandler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.service.ListCoaches(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "list coaches")
		return
	}

	utils.ResponseSuccess(w, "success", coaches)
}

// CreateMember handles POST /api/admin/members
func (h *UserHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req request.CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	member, err := h.service.CreateMember(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create member")
		return
	}

	utils.ResponseCreated(w, "Member created", member)
}

// UpdateMember handles PATCH /api/admin/members/{id}
func (h *UserHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req request.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	member, err := h.service.UpdateMember(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update member")
		return
	}

	utils.ResponseSuccess(w, "Member updated", member)
}

// DeleteMember handles DELETE /api/admin/members/{id}
func (h *UserHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMember(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete member")
		return
	}

	utils.ResponseSuccess(w, "Member deleted", nil)
}

// Stats handles GET /api/admin/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "get stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}
