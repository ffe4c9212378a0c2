package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"pyventure/internal/domain/model"
)

type RegisterRequest struct {
	Name                 string `json:"name"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// AuthResult is what the backend issues once the 2FA code is accepted.
type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp messageResponse
	err := c.do(ctx, call{method: http.MethodPost, path: "/register", body: req, fallback: "Registration failed"}, &resp)
	return resp.Message, err
}

// Login starts the 2FA flow; it never returns a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp messageResponse
	err := c.do(ctx, call{method: http.MethodPost, path: "/login", body: body, fallback: "Login failed"}, &resp)
	return resp.Message, err
}

func (c *Client) VerifyTwoFactor(ctx context.Context, email, code string) (*AuthResult, error) {
	body := map[string]string{"email": email, "code": code}
	var resp AuthResult
	if err := c.do(ctx, call{method: http.MethodPost, path: "/verify-2fa", body: body, fallback: "2FA verification failed"}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{Status: http.StatusBadGateway, Message: "2FA verification failed"}
	}
	return &resp, nil
}

func (c *Client) CurrentUser(ctx context.Context, creds Credentials) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user", creds: creds, fallback: "Failed to fetch user profile"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Levels(ctx context.Context, creds Credentials) ([]model.Level, error) {
	var env envelope[[]model.Level]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/levels", creds: creds}, &env); err != nil {
		return nil, err
	}
	return env.unwrap("Failed to fetch levels")
}

func (c *Client) Level(ctx context.Context, creds Credentials, id int64) (*model.Level, error) {
	var env envelope[model.Level]
	path := "/levels/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, call{method: http.MethodGet, path: path, creds: creds}, &env); err != nil {
		return nil, err
	}
	level, err := env.unwrap(fmt.Sprintf("Failed to fetch level %d", id))
	if err != nil {
		return nil, err
	}
	return &level, nil
}

type submitRequest struct {
	LevelID   int64  `json:"level_id"`
	Code      string `json:"code"`
	IsCorrect bool   `json:"is_correct"`
}

func (c *Client) SubmitCode(ctx context.Context, creds Credentials, levelID int64, code string, isCorrect bool) (*model.SubmissionResult, error) {
	body := submitRequest{LevelID: levelID, Code: code, IsCorrect: isCorrect}
	var res model.SubmissionResult
	if err := c.do(ctx, call{method: http.MethodPost, path: "/submissions", body: body, creds: creds}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Submissions(ctx context.Context, creds Credentials, levelID int64) ([]model.Submission, error) {
	q := url.Values{"level_id": {strconv.FormatInt(levelID, 10)}}
	var subs []model.Submission
	if err := c.do(ctx, call{method: http.MethodGet, path: "/submissions?" + q.Encode(), creds: creds}, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) Progress(ctx context.Context, creds Credentials) ([]model.UserProgress, error) {
	var progress []model.UserProgress
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user/progress", creds: creds}, &progress); err != nil {
		return nil, err
	}
	return progress, nil
}

type ProgressUpdate struct {
	LevelID     int64 `json:"level_id"`
	Score       int   `json:"score"`
	IsCompleted bool  `json:"is_completed"`
}

func (c *Client) UpdateProgress(ctx context.Context, creds Credentials, upd ProgressUpdate) (*model.UserProgress, error) {
	var progress model.UserProgress
	if err := c.do(ctx, call{method: http.MethodPost, path: "/user/progress", body: upd, creds: creds}, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (c *Client) Profile(ctx context.Context, creds Credentials) (*model.Profile, error) {
	var profile model.Profile
	if err := c.do(ctx, call{method: http.MethodGet, path: "/profile", creds: creds, fallback: "Failed to load profile data. Please try again later."}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) Achievements(ctx context.Context, creds Credentials) ([]model.Achievement, error) {
	var achievements []model.Achievement
	if err := c.do(ctx, call{method: http.MethodGet, path: "/achievements", creds: creds}, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

func (c *Client) Leaderboard(ctx context.Context, creds Credentials, limit int) ([]model.LeaderboardEntry, error) {
	path := "/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var entries []model.LeaderboardEntry
	if err := c.do(ctx, call{method: http.MethodGet, path: path, creds: creds}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
