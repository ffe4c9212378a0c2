package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"pyventure/internal/clients/backend"
	"pyventure/internal/common"
	"pyventure/internal/common/security"
	"pyventure/internal/domain/model"
	"pyventure/internal/session"
)

type AuthService struct {
	backend  Backend
	sessions Sessions
	tokens   *security.Tokens
	logger   *zap.Logger
}

func NewAuthService(b Backend, sessions Sessions, tokens *security.Tokens, logger *zap.Logger) *AuthService {
	return &AuthService{backend: b, sessions: sessions, tokens: tokens, logger: logger}
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyTwoFactorRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type MessageResponse struct {
	Message string `json:"message"`
	// TwoFactorRequired tells the browser to show the code form next.
	TwoFactorRequired bool `json:"two_factor_required,omitempty"`
}

type AuthResponse struct {
	User      model.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("name, username, email and password are required: %w", common.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("invalid email address: %w", common.ErrValidation)
	}
	if req.Password != req.PasswordConfirmation {
		return nil, fmt.Errorf("password confirmation does not match: %w", common.ErrValidation)
	}

	msg, err := s.backend.Register(ctx, backend.RegisterRequest(req))
	if err != nil {
		return nil, err
	}
	return &MessageResponse{Message: msg}, nil
}

// Login starts the backend's 2FA flow. No session exists until the code is
// verified.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*MessageResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", common.ErrValidation)
	}
	msg, err := s.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return &MessageResponse{Message: msg, TwoFactorRequired: true}, nil
}

// VerifyTwoFactor completes login: the backend token is kept server-side in
// a session and the browser gets a gateway token naming that session.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, req VerifyTwoFactorRequest) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		return nil, fmt.Errorf("email and code are required: %w", common.ErrValidation)
	}

	res, err := s.backend.VerifyTwoFactor(ctx, req.Email, req.Code)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, res.Token, res.User)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.GenerateToken(sess.ID(), res.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	s.logger.Info("User signed in", zap.Int64("user_id", res.User.ID), zap.String("session_id", sess.ID()))

	return &AuthResponse{
		User:      res.User,
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokens.Lifetime()).UTC(),
	}, nil
}

func (s *AuthService) Logout(_ context.Context, sess *session.Session) {
	if s.sessions.Logout(sess) {
		s.logger.Info("User signed out", zap.String("session_id", sess.ID()))
	}
}

func (s *AuthService) CurrentUser(ctx context.Context, sess *session.Session) (*model.User, error) {
	return s.backend.CurrentUser(ctx, sess)
}
