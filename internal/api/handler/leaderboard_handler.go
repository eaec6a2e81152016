package handler

import (
	"net/http"

	"gradebox/internal/app/service"
	"gradebox/internal/common"
	"gradebox/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(ls *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.top)
}

func (h *LeaderboardHandler) top(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboardService.Top(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
