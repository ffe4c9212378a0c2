package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pyventure/internal/api/middleware"
	"pyventure/internal/app/service"
	"pyventure/internal/common"
)

type PlaygroundHandler struct {
	playgroundService *service.PlaygroundService
}

func NewPlaygroundHandler(ps *service.PlaygroundService) *PlaygroundHandler {
	return &PlaygroundHandler{playgroundService: ps}
}

// RegisterRoutes expects to be mounted behind the authenticator.
func (h *PlaygroundHandler) RegisterRoutes(r chi.Router) {
	r.Post("/run", h.run)          // POST /api/v1/playground/run
	r.Get("/attempts", h.attempts) // GET /api/v1/playground/attempts?level_id=1
}

func (h *PlaygroundHandler) run(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req service.RunRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.playgroundService.Run(r.Context(), sess, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *PlaygroundHandler) attempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var levelID int64
	if raw := r.URL.Query().Get("level_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid level_id")
			return
		}
		levelID = id
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	attempts, err := h.playgroundService.Attempts(r.Context(), userID, levelID, limit)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempts)
}
