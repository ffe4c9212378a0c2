package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"

	"pyventure/internal/common"
	"pyventure/internal/common/security"
	"pyventure/internal/session"
)

type contextKey string

const (
	UserIDCtxKey  contextKey = "userID"
	SessionCtxKey contextKey = "session"
)

// SessionLoader resolves a session id from the gateway token.
type SessionLoader interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Authenticator requires a valid gateway token whose session still holds
// backend credentials. A missing or invalidated session answers 401 with
// reauth set, so the browser returns to the login view.
func Authenticator(sessions SessionLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				if errors.Is(err, jwtauth.ErrNoTokenFound) || token == nil {
					common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				} else {
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
				}
				return
			}

			sid, err := security.GetSessionIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}
			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}

			sess, err := sessions.Get(r.Context(), sid)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					logger.Error("Failed to load session", zap.String("session_id", sid), zap.Error(err))
					common.RespondWithError(w, http.StatusServiceUnavailable, "session store unavailable")
					return
				}
				common.RespondWithDomainError(w, common.ErrSessionExpired)
				return
			}
			if !sess.Valid() {
				common.RespondWithDomainError(w, common.ErrSessionExpired)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
			ctx = context.WithValue(ctx, SessionCtxKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

func GetSessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(SessionCtxKey).(*session.Session)
	return sess, ok && sess != nil
}
