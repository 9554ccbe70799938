package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/OFFIS-RIT/kgview/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCompletion(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"### DAG\nNo cycles."}}],
"usage":{"prompt_tokens":12,"completion_tokens":4,"total_tokens":16}}`))
	}))
	defer srv.Close()

	client := NewGraphOpenAIClient(NewGraphOpenAIClientParams{
		Model:   "gpt-4o-mini",
		ChatURL: srv.URL + "/v1",
		ChatKey: "key",
	})
	out, err := client.GenerateCompletion(context.Background(), "Explain DAG",
		ai.WithSystemPrompts("You are terse."), ai.WithMaxTokens(100))
	require.NoError(t, err)
	assert.Equal(t, "### DAG\nNo cycles.", out)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 100, got["max_completion_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])

	m := client.GetMetrics()
	assert.Equal(t, 1, m.Requests)
	assert.Equal(t, 16, m.TotalTokens)
}

func TestGenerateCompletion_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"unknown model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewGraphOpenAIClient(NewGraphOpenAIClientParams{Model: "nope", ChatURL: srv.URL, ChatKey: "key"})
	_, err := client.GenerateCompletion(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, ai.StatusCode(err))
}

func TestGenerateCompletion_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	client := NewGraphOpenAIClient(NewGraphOpenAIClientParams{Model: "m", ChatURL: srv.URL, ChatKey: "key"})
	_, err := client.GenerateCompletion(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
