package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OFFIS-RIT/kgview/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCompletion(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"<think>plan</think>\n### Graph\nA set of vertices.","done":true,"prompt_eval_count":10,"eval_count":5,"total_duration":2000000000}` + "\n"))
	}))
	defer srv.Close()

	client, err := NewGraphOllamaClient(NewGraphOllamaClientParams{BaseURL: srv.URL, ApiKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL, client.BaseURL())

	out, err := client.GenerateCompletion(context.Background(), "Explain Graph",
		ai.WithMaxTokens(ai.ExplainMaxTokens), ai.WithKeepAlive(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "### Graph\nA set of vertices.", out)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, DefaultModel, got["model"])
	assert.Equal(t, "Explain Graph", got["prompt"])
	assert.Equal(t, false, got["stream"])
	options, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, ai.ExplainTemperature, options["temperature"], 1e-9)
	assert.EqualValues(t, ai.ExplainMaxTokens, options["num_predict"])
	assert.NotContains(t, options, "num_ctx")

	m := client.GetMetrics()
	assert.Equal(t, 1, m.Requests)
	assert.Equal(t, 15, m.TotalTokens)
	assert.EqualValues(t, 2000, m.DurationMs)
	assert.InDelta(t, 7.5, m.TokenPerSecond, 0.01)

	client.ResetMetrics()
	assert.Equal(t, ai.ModelMetrics{}, client.GetMetrics())
}

func TestGenerateCompletion_NoKey(t *testing.T) {
	auth := "unset"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"response":"ok","done":true}` + "\n"))
	}))
	defer srv.Close()

	client, err := NewGraphOllamaClient(NewGraphOllamaClientParams{BaseURL: srv.URL, Model: "qwen3"})
	require.NoError(t, err)
	out, err := client.GenerateCompletion(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Empty(t, auth)
}

func TestGenerateCompletion_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model crashed"}` + "\n"))
	}))
	defer srv.Close()

	client, err := NewGraphOllamaClient(NewGraphOllamaClientParams{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = client.GenerateCompletion(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, ai.StatusCode(err))
	assert.Zero(t, client.GetMetrics().Requests)
}

func TestEstimateContext(t *testing.T) {
	small, err := estimateContext("short", ai.GenerateOptions{MaxTokens: 900})
	require.NoError(t, err)
	assert.Less(t, small, contextFloor)

	big, err := estimateContext("x", ai.GenerateOptions{MaxTokens: 8000, SystemPrompts: []string{"be brief"}})
	require.NoError(t, err)
	assert.Greater(t, big, contextFloor)
}
