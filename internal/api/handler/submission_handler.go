package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gradebox/internal/api/middleware"
	"gradebox/internal/app/service"
	"gradebox/internal/common"
	"gradebox/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator) // All submission routes require auth
	r.Post("/", h.create)
	r.Get("/mine", h.listMine)
	r.Get("/{submissionID}", h.get)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Post("/{submissionID}/rerun", h.rerun)
	})
}

func (h *SubmissionHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	sub, err := h.submissionService.Enqueue(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	// 202: the row is queued, judging happens asynchronously.
	common.RespondWithJSON(w, http.StatusAccepted, sub)
}

func (h *SubmissionHandler) get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.submissionService.Get(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	if sub.UserID != userID && role != model.RoleAdmin {
		common.RespondWithError(w, http.StatusForbidden, "Not your submission")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) listMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	subs, err := h.submissionService.ListMine(r.Context(), userID, limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) rerun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "submissionID")
	if err := h.submissionService.RequestRerun(r.Context(), id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, map[string]string{"submission_id": id, "status": "queued"})
}
