package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyventure/internal/common"
)

func TestGenerateRequestShape(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "  {\"hint\": \"x\"}\n"})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL+"/api", "qwen2.5-coder:7b", 5*time.Second)
	out, err := c.Generate(t.Context(), "prompt text", Options{Temperature: 0.7, TopP: 0.9})
	require.NoError(t, err)
	assert.Equal(t, `{"hint": "x"}`, out)

	assert.Equal(t, "qwen2.5-coder:7b", raw["model"])
	assert.Equal(t, "prompt text", raw["prompt"])
	assert.Equal(t, false, raw["stream"])
	assert.Equal(t, map[string]any{"temperature": 0.7, "top_p": 0.9}, raw["options"])
}

func TestGenerateOmitsZeroTopP(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "ok"})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "m", 5*time.Second)
	_, err := c.Generate(t.Context(), "p", Options{Temperature: 0.5})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"temperature": 0.5}, raw["options"])
}

func TestGenerateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "m", 5*time.Second)
	_, err := c.Generate(t.Context(), "p", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model not found")
}
