package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Tokens issues and verifies the gateway's own session tokens. The backend's
// bearer token never leaves the gateway; the browser holds this one instead.
type Tokens struct {
	Auth *jwtauth.JWTAuth
	exp  time.Duration
	now  func() time.Time
}

func NewTokens(key []byte, exp time.Duration) *Tokens {
	return &Tokens{
		Auth: jwtauth.New("HS256", key, nil),
		exp:  exp,
		now:  time.Now,
	}
}

func (t *Tokens) Lifetime() time.Duration { return t.exp }

func (t *Tokens) GenerateToken(sessionID string, userID int64) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sid":     sessionID,
		"user_id": strconv.FormatInt(userID, 10),
		"exp":     now.Add(t.exp).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := t.Auth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, can be used in middleware or services
func GetSessionIDFromClaims(claims map[string]interface{}) (string, error) {
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("sid claim is missing or not a string")
	}
	return sid, nil
}

func GetUserIDFromClaims(claims map[string]interface{}) (int64, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return 0, errors.New("user_id claim is missing or not a string")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("user_id claim is not numeric")
	}
	return id, nil
}
