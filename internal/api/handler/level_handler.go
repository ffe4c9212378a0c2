package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pyventure/internal/app/service"
	"pyventure/internal/common"
)

type LevelHandler struct {
	levelService *service.LevelService
	mapService   *service.MapService
	auth         func(http.Handler) http.Handler
}

func NewLevelHandler(ls *service.LevelService, ms *service.MapService, auth func(http.Handler) http.Handler) *LevelHandler {
	return &LevelHandler{levelService: ls, mapService: ms, auth: auth}
}

func (h *LevelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{levelID}/map", h.getMap) // GET /api/v1/levels/1/map

	r.Group(func(private chi.Router) {
		private.Use(h.auth)
		private.Get("/", h.listLevels)
		private.Get("/{levelID}", h.getLevel)
		private.Get("/{levelID}/content", h.getContent) // ?difficulty=beginner
		private.Post("/{levelID}/prepare", h.prepare)
	})
}

func (h *LevelHandler) listLevels(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	levels, err := h.levelService.Levels(r.Context(), sess)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, levels)
}

func (h *LevelHandler) getLevel(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	id, ok := levelIDParam(w, r)
	if !ok {
		return
	}
	level, err := h.levelService.Level(r.Context(), sess, id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, level)
}

func (h *LevelHandler) getContent(w http.ResponseWriter, r *http.Request) {
	id, ok := levelIDParam(w, r)
	if !ok {
		return
	}
	res, err := h.levelService.Content(r.Context(), id, r.URL.Query().Get("difficulty"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, res)
}

type prepareRequest struct {
	Difficulty string `json:"difficulty"`
}

func (h *LevelHandler) prepare(w http.ResponseWriter, r *http.Request) {
	id, ok := levelIDParam(w, r)
	if !ok {
		return
	}
	var req prepareRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	job, err := h.levelService.Prepare(r.Context(), id, req.Difficulty)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, job)
}

func (h *LevelHandler) getMap(w http.ResponseWriter, r *http.Request) {
	id, ok := levelIDParam(w, r)
	if !ok {
		return
	}
	m, err := h.mapService.Map(r.Context(), id)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, m)
}
