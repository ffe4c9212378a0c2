package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pyventure/internal/clients/backend"
	"pyventure/internal/clients/llm"
	"pyventure/internal/domain/model"
	"pyventure/internal/domain/repository"
	"pyventure/internal/platform/database"
	"pyventure/internal/session"
)

// recorder keeps the order of outbound calls across fakes.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeBackend struct {
	rec *recorder

	levels       []model.Level
	progress     []model.UserProgress
	profile      *model.Profile
	achievements []model.Achievement
	leaderboard  []model.LeaderboardEntry
	auth         *backend.AuthResult
	submitted    []bool
	err          error
}

func (f *fakeBackend) Register(context.Context, backend.RegisterRequest) (string, error) {
	return "Registered", f.err
}

func (f *fakeBackend) Login(context.Context, string, string) (string, error) {
	return "Verification code sent", f.err
}

func (f *fakeBackend) VerifyTwoFactor(context.Context, string, string) (*backend.AuthResult, error) {
	return f.auth, f.err
}

func (f *fakeBackend) CurrentUser(context.Context, backend.Credentials) (*model.User, error) {
	return &f.auth.User, f.err
}

func (f *fakeBackend) Levels(context.Context, backend.Credentials) ([]model.Level, error) {
	return f.levels, f.err
}

func (f *fakeBackend) Level(_ context.Context, _ backend.Credentials, id int64) (*model.Level, error) {
	for _, l := range f.levels {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, &backend.APIError{Status: 404, Message: "Level not found"}
}

func (f *fakeBackend) SubmitCode(_ context.Context, _ backend.Credentials, _ int64, _ string, isCorrect bool) (*model.SubmissionResult, error) {
	if f.rec != nil {
		f.rec.add("submit")
	}
	f.submitted = append(f.submitted, isCorrect)
	return &model.SubmissionResult{LevelCompleted: isCorrect}, f.err
}

func (f *fakeBackend) Submissions(context.Context, backend.Credentials, int64) ([]model.Submission, error) {
	return nil, f.err
}

func (f *fakeBackend) Progress(context.Context, backend.Credentials) ([]model.UserProgress, error) {
	return f.progress, f.err
}

func (f *fakeBackend) UpdateProgress(_ context.Context, _ backend.Credentials, upd backend.ProgressUpdate) (*model.UserProgress, error) {
	return &model.UserProgress{LevelID: upd.LevelID, Score: upd.Score, IsCompleted: upd.IsCompleted}, f.err
}

func (f *fakeBackend) Profile(context.Context, backend.Credentials) (*model.Profile, error) {
	return f.profile, f.err
}

func (f *fakeBackend) Achievements(context.Context, backend.Credentials) ([]model.Achievement, error) {
	return f.achievements, f.err
}

func (f *fakeBackend) Leaderboard(context.Context, backend.Credentials, int) ([]model.LeaderboardEntry, error) {
	return f.leaderboard, f.err
}

// fakeLLM answers content prompts and hint prompts separately.
type fakeLLM struct {
	rec *recorder

	mu           sync.Mutex
	contentCalls int
	hintCalls    int
	content      string
	hint         string
	contentErr   error
	hintErr      error
	block        chan struct{}
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ llm.Options) (string, error) {
	isHint := strings.Contains(prompt, "Python tutor")
	f.mu.Lock()
	if isHint {
		f.hintCalls++
	} else {
		f.contentCalls++
	}
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if isHint {
		if f.rec != nil {
			f.rec.add("hint")
		}
		return f.hint, f.hintErr
	}
	if f.rec != nil {
		f.rec.add("content")
	}
	return f.content, f.contentErr
}

func (f *fakeLLM) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contentCalls, f.hintCalls
}

type fakeSandbox struct {
	rec    *recorder
	result model.ExecutionResult
	err    error
}

func (f *fakeSandbox) Execute(context.Context, string) (*model.ExecutionResult, error) {
	if f.rec != nil {
		f.rec.add("execute")
	}
	if f.err != nil {
		return nil, f.err
	}
	res := f.result
	return &res, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets []string
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = append(c.sets, key)
	c.data[key] = b
	return nil
}

// setCount counts writes to keys with the given prefix.
func (c *memCache) setCount(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, k := range c.sets {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

type fakeQueue struct {
	mu    sync.Mutex
	items []string
}

func (q *fakeQueue) Push(_ context.Context, payload string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, payload)
	return nil
}

type fakeSessions struct {
	created []*session.Session
}

func (f *fakeSessions) Create(_ context.Context, token string, user model.User) (*session.Session, error) {
	s := session.New("sid-1", token, &user)
	f.created = append(f.created, s)
	return s, nil
}

func (f *fakeSessions) Logout(s *session.Session) bool {
	_, gen := s.Token()
	return s.Invalidate(gen, session.ReasonLogout)
}

func newAttemptRepo(t *testing.T) repository.AttemptRepository {
	t.Helper()
	db, dialect, err := database.Connect(t.Context(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(t.Context(), db))
	return repository.NewSQLAttemptRepository(db, dialect)
}

const validContentJSON = "```json\n" + `{
  "title": "Counting",
  "objective": "Use a for loop",
  "description": "Print numbers",
  "starter_code": "# TODO",
  "solution": "for i in range(3): print(i)",
  "hints": ["use range"],
  "test_cases": [{"input": "", "expected_output": "Hello"}],
  "key_concepts": ["loops"]
}` + "\n```"
