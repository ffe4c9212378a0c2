package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pyventure/internal/app/service"
	"pyventure/internal/common"
	"pyventure/internal/leaderboard"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(ls *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

// RegisterRoutes expects to be mounted behind the authenticator.
func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.getLeaderboard) // GET /api/v1/leaderboard?limit=10&sort=score&dir=desc
}

func (h *LeaderboardHandler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	field, err := leaderboard.ParseField(q.Get("sort"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := leaderboard.ParseDirection(q.Get("dir"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	resp, err := h.leaderboardService.Get(r.Context(), sess, service.LeaderboardQuery{
		Limit: limit,
		State: leaderboard.State{Field: field, Direction: dir},
	})
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
