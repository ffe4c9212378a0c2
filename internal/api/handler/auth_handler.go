package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pyventure/internal/app/service"
	"pyventure/internal/common"
)

type AuthHandler struct {
	authService *service.AuthService
	auth        func(http.Handler) http.Handler
}

func NewAuthHandler(authService *service.AuthService, auth func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{authService: authService, auth: auth}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/verify-2fa", h.verifyTwoFactor)

	r.Group(func(private chi.Router) {
		private.Use(h.auth)
		private.Post("/auth/logout", h.logout)
		private.Get("/me", h.me)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) verifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyTwoFactorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.VerifyTwoFactor(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	h.authService.Logout(r.Context(), sess)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	user, err := h.authService.CurrentUser(r.Context(), sess)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
