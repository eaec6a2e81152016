package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gradebox/internal/api/middleware"
	"gradebox/internal/app/service"
	"gradebox/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(ps *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: ps}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{slug}", h.getBySlug)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator, middleware.AdminOnly)
		admin.Post("/", h.create)
		admin.Put("/{problemID}", h.update)
		admin.Put("/{problemID}/testcases", h.replaceTestCases)
	})
}

func (h *ProblemHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	problems, err := h.problemService.List(r.Context(), limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	problem, err := h.problemService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.CreateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	problem, err := h.problemService.CreateProblem(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	problem, err := h.problemService.UpdateProblem(r.Context(), chi.URLParam(r, "problemID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) replaceTestCases(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TestCases []service.TestCaseUpload `json:"test_cases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	problem, err := h.problemService.ReplaceTestCases(r.Context(), chi.URLParam(r, "problemID"), req.TestCases)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}
