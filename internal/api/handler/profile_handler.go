package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pyventure/internal/app/service"
	"pyventure/internal/common"
)

// ProfileHandler serves progress, profile and achievements.
type ProfileHandler struct {
	profileService  *service.ProfileService
	progressService *service.ProgressService
}

func NewProfileHandler(ps *service.ProfileService, prs *service.ProgressService) *ProfileHandler {
	return &ProfileHandler{profileService: ps, progressService: prs}
}

// RegisterRoutes expects to be mounted behind the authenticator.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/progress", h.getProgress)
	r.Post("/progress", h.updateProgress)
	r.Get("/profile", h.getProfile)
	r.Get("/profile/dashboard", h.getDashboard)
	r.Get("/achievements", h.getAchievements)
}

func (h *ProfileHandler) getProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	progress, err := h.progressService.Get(r.Context(), sess)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, progress)
}

func (h *ProfileHandler) updateProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req service.UpdateProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	progress, err := h.progressService.Update(r.Context(), sess, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, progress)
}

func (h *ProfileHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	profile, err := h.profileService.Profile(r.Context(), sess)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) getDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	d, err := h.profileService.Dashboard(r.Context(), sess)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, d)
}

func (h *ProfileHandler) getAchievements(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	achievements, err := h.profileService.Achievements(r.Context(), sess)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, achievements)
}
