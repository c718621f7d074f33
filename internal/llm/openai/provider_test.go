package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Hello!"}}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	p := NewProvider("sk-test", "", WithBaseURL(srv.URL))
	resp, err := p.Complete(context.Background(), llm.Request{System: "be nice", Prompt: "hi"}, "")
	require.NoError(t, err)

	assert.Equal(t, "Hello!", resp.Content)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Equal(t, 12, resp.TokensUsed)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[1].Content)
	assert.Equal(t, 2048, got.MaxTokens)
}

func TestComplete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewProvider("sk-test", "gpt-4o", WithBaseURL(srv.URL))
	_, err := p.Complete(context.Background(), llm.Request{Prompt: "hi"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
